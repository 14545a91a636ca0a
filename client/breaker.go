package client

import (
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// hostBreakers holds one circuit breaker per registry host.
type hostBreakers struct {
	breakers map[string]*circuit.Breaker
	mu       sync.RWMutex
}

func newHostBreakers() *hostBreakers {
	return &hostBreakers{breakers: make(map[string]*circuit.Breaker)}
}

// forURL returns the breaker guarding the URL's host, creating it on first use.
func (hb *hostBreakers) forURL(rawURL string) *circuit.Breaker {
	if hb == nil {
		return nil
	}
	host := hostOf(rawURL)

	hb.mu.RLock()
	breaker, exists := hb.breakers[host]
	hb.mu.RUnlock()
	if exists {
		return breaker
	}

	hb.mu.Lock()
	defer hb.mu.Unlock()

	// Double-check after acquiring write lock
	if breaker, exists := hb.breakers[host]; exists {
		return breaker
	}

	// Trips after 5 consecutive failures, reopens on an exponential schedule
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	breaker = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	})
	hb.breakers[host] = breaker
	return breaker
}

// BreakerStates returns the current state of all host breakers (for health checks).
func (c *Client) BreakerStates() map[string]string {
	if c.breakers == nil {
		return nil
	}
	c.breakers.mu.RLock()
	defer c.breakers.mu.RUnlock()

	states := make(map[string]string, len(c.breakers.breakers))
	for host, breaker := range c.breakers.breakers {
		if breaker.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}

// hostOf extracts the host from a URL for breaker grouping.
func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}
