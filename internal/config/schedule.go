package config

import "time"

// ScheduleConfig holds internal/schedule.Scheduler's tick cadence.
type ScheduleConfig struct {
	Interval         time.Duration `env:"BULKSCROLL_SCHEDULE_INTERVAL"`
	MaxStartupJitter time.Duration `env:"BULKSCROLL_SCHEDULE_STARTUP_JITTER"`
	RateLimitDelay   time.Duration `env:"BULKSCROLL_SCHEDULE_RATE_LIMIT_DELAY"`
}

func (c *ScheduleConfig) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}
	if c.MaxStartupJitter <= 0 {
		c.MaxStartupJitter = 30 * time.Second
	}
	if c.RateLimitDelay <= 0 {
		c.RateLimitDelay = 100 * time.Millisecond
	}
}
