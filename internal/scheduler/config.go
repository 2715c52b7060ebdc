package scheduler

import (
	"time"
)

// Config controls sweep cadence and retention.
type Config struct {
	RunInterval   time.Duration
	RetentionDays int
	JobTimeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval:   24 * time.Hour,
		RetentionDays: 60,
		JobTimeout:    5 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = defaults.RetentionDays
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}
