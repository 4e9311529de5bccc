package pipcount

import (
	"github.com/domino14/bgstats/config"
	"github.com/domino14/bgstats/evaluator"
)

// FromConfig returns a pipcount evaluator behind an evaluation cache
// sized by the eval-cache-fraction setting.
func FromConfig(cfg *config.Config) (*evaluator.Cached, error) {
	return evaluator.NewCached(New(), cfg.GetFloat64(config.ConfigEvalCacheFraction))
}
