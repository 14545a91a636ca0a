package core

import (
	"github.com/depfence/depfence/client"
)

// Type aliases so ecosystem adapters only import core.
type (
	Client         = client.Client
	Option         = client.Option
	HTTPError      = client.HTTPError
	RateLimitError = client.RateLimitError
)

// Function aliases.
var (
	DefaultClient  = client.DefaultClient
	NewClient      = client.NewClient
	WithTimeout    = client.WithTimeout
	WithMaxRetries = client.WithMaxRetries
)

// ErrUpstreamDown mirrors the client-level sentinel.
var ErrUpstreamDown = client.ErrUpstreamDown
