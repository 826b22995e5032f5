package config

import (
	"strings"
	"time"
)

// Rate limit key strategies.  Booking clients are anonymous, so a bucket
// is keyed by caller IP, by route, or by both.
const (
	RateKeyIP      = "ip"
	RateKeyRoute   = "route"
	RateKeyIPRoute = "ip_route"
)

// RateLimitConfig tunes the token bucket guarding the public booking
// endpoint.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.  The defaults allow a
// burst of 10 submissions refilled at one per 30s.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 10),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 30*time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    strings.ToLower(envStr("RATE_LIMIT_KEY_STRATEGY", RateKeyIPRoute)),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl:reservations"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	switch cfg.KeyStrategy {
	case RateKeyIP, RateKeyRoute, RateKeyIPRoute:
	default:
		cfg.KeyStrategy = RateKeyIPRoute
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval < time.Millisecond {
		cfg.RefillInterval = time.Second
	}
	// the bucket must outlive a full refill cycle
	if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
		cfg.TTL = minTTL
	}
	return cfg
}
