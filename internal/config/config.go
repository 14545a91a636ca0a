// Package config loads CLI configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Concurrency  int           // DEPFENCE_CONCURRENCY
	FetchTimeout time.Duration // DEPFENCE_TIMEOUT
	ValkeyAddr   string        // DEPFENCE_VALKEY_ADDR, empty disables the store
	CacheTTL     time.Duration // DEPFENCE_CACHE_TTL
	TrendTTL     time.Duration // DEPFENCE_TREND_TTL
}

func Load() Config {
	return Config{
		Concurrency:  getenvInt("DEPFENCE_CONCURRENCY", 8),
		FetchTimeout: getenvDuration("DEPFENCE_TIMEOUT", 10*time.Second),
		ValkeyAddr:   os.Getenv("DEPFENCE_VALKEY_ADDR"),
		CacheTTL:     getenvDuration("DEPFENCE_CACHE_TTL", time.Hour),
		TrendTTL:     getenvDuration("DEPFENCE_TREND_TTL", 90*24*time.Hour),
	}
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var out int
		if _, err := fmt.Sscanf(v, "%d", &out); err == nil && out > 0 {
			return out
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
