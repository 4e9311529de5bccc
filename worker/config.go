package worker

import (
	"os"
	"time"

	"github.com/domino14/bgstats/config"
)

// WorkerConfig holds configuration for the analysis worker
type WorkerConfig struct {
	// NATS server to connect to
	NatsURL string

	// Subject jobs arrive on, and the queue group workers share it in
	Subject string
	Queue   string

	// Longest time a single job may take
	JobTimeout time.Duration

	// Database for jobs that ask to be stored; empty disables storing
	DBPath string

	// Config for the analyzer
	Config *config.Config
}

// DefaultWorkerConfig creates a WorkerConfig from cfg, with durations
// overridable from the environment.
func DefaultWorkerConfig(cfg *config.Config) *WorkerConfig {
	return &WorkerConfig{
		NatsURL:    cfg.GetString(config.ConfigNatsURL),
		Subject:    cfg.GetString(config.ConfigWorkerSubject),
		Queue:      cfg.GetString(config.ConfigWorkerQueue),
		JobTimeout: getEnvDuration("BGSTATS_WORKER_JOB_TIMEOUT", 5*time.Minute),
		DBPath:     getEnv("BGSTATS_WORKER_DB_PATH", ""),
		Config:     cfg,
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration gets a duration from an environment variable or returns a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
