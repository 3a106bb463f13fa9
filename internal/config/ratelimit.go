package config

import "time"

// RateLimitConfig tunes the Redis fixed-window rate limiter applied to the
// public API.  Limit requests per Window, keyed per client (and per route
// when KeyStrategy is "ip_route").
type RateLimitConfig struct {
	Enabled     bool
	Limit       int
	Window      time.Duration
	KeyStrategy string
	Prefix      string
}

// LoadRateLimitConfig builds a RateLimitConfig from environment variables,
// falling back to sane defaults and clamping nonsense values.
func LoadRateLimitConfig() RateLimitConfig {
	c := RateLimitConfig{
		Enabled:     envBool("RATE_LIMIT_ENABLED", true),
		Limit:       envInt("RATE_LIMIT_LIMIT", 60),
		Window:      envDur("RATE_LIMIT_WINDOW", time.Minute),
		KeyStrategy: getenv("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
		Prefix:      getenv("RATE_LIMIT_PREFIX", "rl"),
	}
	if c.Limit < 1 {
		c.Limit = 1
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	return c
}
