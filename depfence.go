// Package depfence scores dependency manifests for maintainer abandonment
// risk. Each package identifier is resolved against its ecosystem registry,
// reduced to three signals (staleness, release cadence, bus factor), and
// scored 0-100 with a verdict tier. Unresolvable packages are never dropped:
// they score a fail-safe UNKNOWN/100.
//
// Basic usage:
//
//	import (
//		"context"
//		"github.com/depfence/depfence"
//		_ "github.com/depfence/depfence/all"
//	)
//
//	ids := []depfence.Identifier{
//		{Ecosystem: depfence.EcosystemPyPI, Name: "requests"},
//	}
//	report, err := depfence.Scan(context.Background(), ids)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(report.HighestScore, report.GateTriggered)
package depfence

import (
	"context"

	"github.com/depfence/depfence/client"
	"github.com/depfence/depfence/internal/core"
	"github.com/depfence/depfence/internal/risk"
	"github.com/depfence/depfence/scan"
)

// Re-export types from internal/core
type (
	// Ecosystem identifies a package ecosystem.
	Ecosystem = core.Ecosystem

	// Identifier names one package to be assessed.
	Identifier = core.Identifier

	// Metadata is the normalized registry view of one package.
	Metadata = core.Metadata

	// Outcome classifies the result of a metadata fetch.
	Outcome = core.Outcome

	// Signals are the three scoring inputs derived from Metadata.
	Signals = core.Signals

	// Verdict is the qualitative risk tier for a score.
	Verdict = core.Verdict

	// Assessment is the scored result for one identifier.
	Assessment = core.Assessment

	// Report is the result of one scan run.
	Report = core.Report

	// Registry is the interface implemented by all ecosystem registry clients.
	Registry = core.Registry
)

// Re-export types from client and scan
type (
	// Client is an HTTP client with retry logic for registry APIs.
	Client = client.Client

	// Runner orchestrates scan runs.
	Runner = scan.Runner

	// Bands holds the tunable scoring constants.
	Bands = risk.Bands
)

// Re-export constants
const (
	EcosystemPyPI   = core.EcosystemPyPI
	EcosystemNPM    = core.EcosystemNPM
	EcosystemCargo  = core.EcosystemCargo
	EcosystemGo     = core.EcosystemGo
	EcosystemGitHub = core.EcosystemGitHub

	OutcomeOK             = core.OutcomeOK
	OutcomeNotFound       = core.OutcomeNotFound
	OutcomeRateLimited    = core.OutcomeRateLimited
	OutcomeTransportError = core.OutcomeTransportError
	OutcomeUnsupported    = core.OutcomeUnsupported
	OutcomeInvalid        = core.OutcomeInvalid

	VerdictLow      = core.VerdictLow
	VerdictMedium   = core.VerdictMedium
	VerdictHigh     = core.VerdictHigh
	VerdictCritical = core.VerdictCritical
	VerdictUnknown  = core.VerdictUnknown
)

// Re-export errors
var (
	ErrNotFound    = core.ErrNotFound
	ErrUnsupported = core.ErrUnsupported
)

// Error types
type (
	HTTPError       = client.HTTPError
	RateLimitError  = client.RateLimitError
	NotFoundError   = core.NotFoundError
	ValidationError = core.ValidationError
)

// DefaultBands are the documented default scoring constants.
var DefaultBands = risk.DefaultBands

// DefaultClient returns a client with sensible defaults:
// - 30s timeout
// - 5 retries with exponential backoff
// - Retry on 429 and 5xx responses
func DefaultClient() *Client {
	return client.DefaultClient()
}

// NewClient creates a new client with the given options.
func NewClient(opts ...client.Option) *Client {
	return client.NewClient(opts...)
}

// NewRunner creates a scan Runner with the given options.
func NewRunner(opts ...scan.Option) *Runner {
	return scan.NewRunner(opts...)
}

// Scan resolves and scores the identifiers with a default Runner.
// Ecosystem adapters must be registered first (import the all package).
func Scan(ctx context.Context, ids []Identifier, opts ...scan.Option) (*Report, error) {
	return scan.NewRunner(opts...).Run(ctx, ids)
}

// SupportedEcosystems returns all registered ecosystem types.
// Note: ecosystems must be imported to be registered.
func SupportedEcosystems() []Ecosystem {
	return core.SupportedEcosystems()
}

// NewRegistry creates a registry for the given ecosystem.
// If baseURL is empty, the default registry URL is used.
// If c is nil, DefaultClient() is used.
func NewRegistry(ecosystem Ecosystem, baseURL string, c *Client) (Registry, error) {
	return core.New(ecosystem, baseURL, c)
}

// ParsePURL converts a Package URL string into an Identifier.
func ParsePURL(purl string) (Identifier, error) {
	return core.ParsePURL(purl)
}

// Validate checks an identifier's name against its ecosystem's naming rules.
func Validate(id Identifier) error {
	return core.Validate(id)
}
