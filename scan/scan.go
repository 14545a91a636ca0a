// Package scan drives the concurrent resolution and scoring of a manifest's
// identifiers into a single report.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/depfence/depfence/client"
	"github.com/depfence/depfence/internal/cache"
	"github.com/depfence/depfence/internal/core"
	"github.com/depfence/depfence/internal/risk"
)

const defaultConcurrency = 8

// Runner orchestrates scan runs. A Runner is safe for concurrent use; each
// Run gets its own cache unless a shared backend was configured.
type Runner struct {
	client      *client.Client
	backend     cache.Backend
	backendTTL  time.Duration
	concurrency int
	threshold   int
	bands       risk.Bands
	now         func() time.Time
	log         *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithClient sets the registry HTTP client.
func WithClient(c *client.Client) Option {
	return func(r *Runner) {
		r.client = c
	}
}

// WithConcurrency bounds the number of in-flight fetches.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithThreshold sets the CI gate threshold. A threshold of 0 or below
// disables the gate.
func WithThreshold(score int) Option {
	return func(r *Runner) {
		r.threshold = score
	}
}

// WithBands overrides the scoring constants.
func WithBands(b risk.Bands) Option {
	return func(r *Runner) {
		r.bands = b
	}
}

// WithCacheBackend attaches a cross-run metadata cache backend.
func WithCacheBackend(b cache.Backend, ttl time.Duration) Option {
	return func(r *Runner) {
		r.backend = b
		r.backendTTL = ttl
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(r *Runner) {
		r.log = log
	}
}

// WithClock overrides the run clock. Used by tests to pin staleness math.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a Runner with the given options.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		concurrency: defaultConcurrency,
		bands:       risk.DefaultBands,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = client.DefaultClient()
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	return r
}

// Run resolves and scores every identifier, preserving input order. Every
// identifier yields exactly one assessment: validation failures and fetch
// failures degrade to UNKNOWN/100, they never drop an entry or abort the run.
// Cancellation is all-or-nothing: a cancelled context returns no report.
func (r *Runner) Run(ctx context.Context, ids []core.Identifier) (*core.Report, error) {
	now := r.now().UTC() // one staleness snapshot per run
	mdCache := cache.New(r.cacheOptions()...)

	assessments := make([]core.Assessment, len(ids))
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for i, id := range ids {
		wg.Add(1)
		go func(i int, id core.Identifier) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			assessments[i] = r.assess(ctx, id, mdCache, now)
		}(i, id)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &core.Report{
		Assessments: assessments,
		GeneratedAt: now,
	}
	for _, a := range assessments {
		if a.Score < 0 || a.Score > 100 {
			// Unreachable given the scorer's clamp; a violation is a
			// programming defect and must fail the whole run loudly.
			return nil, fmt.Errorf("internal scoring error: %s/%s scored %d",
				a.Identifier.Ecosystem, a.Identifier.Name, a.Score)
		}
		if a.Score > report.HighestScore {
			report.HighestScore = a.Score
		}
	}
	report.GateTriggered = r.threshold > 0 && report.HighestScore >= r.threshold

	return report, nil
}

func (r *Runner) assess(ctx context.Context, id core.Identifier, mdCache *cache.Cache, now time.Time) core.Assessment {
	if err := core.Validate(id); err != nil {
		r.log.Warn("rejected identifier", "ecosystem", id.Ecosystem, "name", id.Name, "err", err)
		return risk.Assess(id, core.Metadata{Outcome: core.OutcomeInvalid}, now, r.bands)
	}

	md := mdCache.GetOrFetch(ctx, id, func(ctx context.Context, id core.Identifier) core.Metadata {
		return core.FetchMetadata(ctx, id, r.client)
	})
	if md.Outcome != core.OutcomeOK {
		r.log.Debug("degraded fetch", "ecosystem", id.Ecosystem, "name", id.Name, "outcome", md.Outcome)
	}

	return risk.Assess(id, md, now, r.bands)
}

func (r *Runner) cacheOptions() []cache.Option {
	if r.backend == nil {
		return nil
	}
	return []cache.Option{cache.WithBackend(r.backend, r.backendTTL)}
}
