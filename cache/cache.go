// Package cache holds large read-only objects that are expensive to build,
// such as match equity tables, so that a long-running worker builds them
// once and shares them between analyses.
package cache

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/domino14/bgstats/config"
)

type cache struct {
	sync.Mutex
	objects map[string]any
}

type LoadFunc func(cfg *config.Config, key string) (any, error)

var globalObjectCache = &cache{objects: make(map[string]any)}

func (c *cache) get(cfg *config.Config, key string, loadFunc LoadFunc) (any, error) {
	c.Lock()
	defer c.Unlock()
	if obj, ok := c.objects[key]; ok {
		log.Debug().Str("key", key).Msg("getting obj from cache")
		return obj, nil
	}
	log.Debug().Str("key", key).Msg("loading into cache")
	obj, err := loadFunc(cfg, key)
	if err != nil {
		return nil, err
	}
	c.objects[key] = obj
	return obj, nil
}

// Load returns the object stored under key, calling loadFunc to build it
// the first time.
func Load(cfg *config.Config, key string, loadFunc LoadFunc) (any, error) {
	return globalObjectCache.get(cfg, key, loadFunc)
}

// LoadTyped is Load with the type assertion done for the caller.
func LoadTyped[T any](cfg *config.Config, key string, loadFunc func(*config.Config, string) (T, error)) (T, error) {
	obj, err := Load(cfg, key, func(cfg *config.Config, key string) (any, error) {
		return loadFunc(cfg, key)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	t, ok := obj.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cached object %v has type %T", key, obj)
	}
	return t, nil
}

// Evict drops a key so that the next Load rebuilds it.
func Evict(key string) {
	globalObjectCache.Lock()
	defer globalObjectCache.Unlock()
	delete(globalObjectCache.objects, key)
}
