package scan

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depfence/depfence/internal/core"
)

var fixedNow = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

// fakeEco is a controllable registry wired into the global dispatch table.
type fakeEco struct {
	mu      sync.Mutex
	entries map[string]core.Metadata
	errs    map[string]error
	delays  map[string]time.Duration
	block   chan struct{} // when set, Fetch blocks until closed or ctx done
	fetches atomic.Int32
}

var fake = &fakeEco{}

func init() {
	core.Register("faketest", "", func(baseURL string, client *core.Client) core.Registry {
		return fake
	})
}

func (f *fakeEco) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = make(map[string]core.Metadata)
	f.errs = make(map[string]error)
	f.delays = make(map[string]time.Duration)
	f.block = nil
	f.fetches.Store(0)
}

func (f *fakeEco) Ecosystem() core.Ecosystem {
	return "faketest"
}

func (f *fakeEco) Fetch(ctx context.Context, name string) (*core.Metadata, error) {
	f.fetches.Add(1)

	f.mu.Lock()
	md, ok := f.entries[name]
	err := f.errs[name]
	delay := f.delays[name]
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &core.NotFoundError{Ecosystem: "faketest", Name: name}
	}
	return &md, nil
}

func fid(name string) core.Identifier {
	return core.Identifier{Ecosystem: "faketest", Name: name}
}

func healthy() core.Metadata {
	return core.Metadata{
		LatestReleaseAt: fixedNow.AddDate(0, 0, -10),
		ReleaseCount:    20,
		Maintainers:     []string{"alice", "bob", "carol"},
	}
}

func risky() core.Metadata {
	// recent but release-sparse with a single maintainer: scores 60
	return core.Metadata{
		LatestReleaseAt: fixedNow.AddDate(0, 0, -10),
		ReleaseCount:    0,
		Maintainers:     []string{"solo"},
	}
}

func newTestRunner(opts ...Option) *Runner {
	base := []Option{WithClock(func() time.Time { return fixedNow })}
	return NewRunner(append(base, opts...)...)
}

func TestRunPreservesManifestOrder(t *testing.T) {
	fake.reset()
	fake.entries["a"] = healthy()
	fake.entries["b"] = healthy()
	fake.entries["c"] = healthy()
	// a is the slowest, so completion order is reversed from input order
	fake.delays["a"] = 60 * time.Millisecond
	fake.delays["b"] = 30 * time.Millisecond

	report, err := newTestRunner().Run(context.Background(), []core.Identifier{fid("a"), fid("b"), fid("c")})
	require.NoError(t, err)
	require.Len(t, report.Assessments, 3)

	assert.Equal(t, "a", report.Assessments[0].Identifier.Name)
	assert.Equal(t, "b", report.Assessments[1].Identifier.Name)
	assert.Equal(t, "c", report.Assessments[2].Identifier.Name)
}

func TestRunCollapsesDuplicateIdentifiers(t *testing.T) {
	fake.reset()
	fake.entries["dup"] = risky()

	ids := []core.Identifier{fid("dup"), fid("dup"), fid("dup"), fid("dup")}
	report, err := newTestRunner().Run(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, report.Assessments, 4)

	assert.Equal(t, int32(1), fake.fetches.Load(), "duplicates must share one fetch")
	for _, a := range report.Assessments {
		assert.Equal(t, report.Assessments[0], a)
	}
}

func TestRunNotFoundYieldsUnknownEntry(t *testing.T) {
	fake.reset()
	fake.entries["present"] = healthy()

	report, err := newTestRunner().Run(context.Background(), []core.Identifier{fid("present"), fid("missing")})
	require.NoError(t, err)
	require.Len(t, report.Assessments, 2, "no package may be dropped")

	missing := report.Assessments[1]
	assert.Equal(t, 100, missing.Score)
	assert.Equal(t, core.VerdictUnknown, missing.Verdict)
	assert.Equal(t, core.OutcomeNotFound, missing.Outcome)
}

func TestRunUnsupportedEcosystem(t *testing.T) {
	fake.reset()

	id := core.Identifier{Ecosystem: "gem", Name: "rails"}
	report, err := newTestRunner().Run(context.Background(), []core.Identifier{id})
	require.NoError(t, err)

	a := report.Assessments[0]
	assert.Equal(t, 100, a.Score)
	assert.Equal(t, core.VerdictUnknown, a.Verdict)
	assert.Equal(t, core.OutcomeUnsupported, a.Outcome)
}

func TestRunInvalidNameSkipsNetwork(t *testing.T) {
	fake.reset()

	id := core.Identifier{Ecosystem: core.EcosystemPyPI, Name: "../../../etc/passwd"}
	report, err := newTestRunner().Run(context.Background(), []core.Identifier{id})
	require.NoError(t, err)

	a := report.Assessments[0]
	assert.Equal(t, 100, a.Score)
	assert.Equal(t, core.VerdictUnknown, a.Verdict)
	assert.Equal(t, core.OutcomeInvalid, a.Outcome)
	assert.Equal(t, int32(0), fake.fetches.Load())
}

func TestRunGateTriggered(t *testing.T) {
	fake.reset()
	fake.entries["ok"] = healthy()
	fake.entries["bad"] = risky()

	report, err := newTestRunner(WithThreshold(50)).Run(context.Background(),
		[]core.Identifier{fid("ok"), fid("bad")})
	require.NoError(t, err)

	assert.Equal(t, 60, report.HighestScore)
	assert.True(t, report.GateTriggered)
}

func TestRunGateNotTriggeredBelowThreshold(t *testing.T) {
	fake.reset()
	fake.entries["ok1"] = healthy()
	fake.entries["ok2"] = healthy()

	report, err := newTestRunner(WithThreshold(50)).Run(context.Background(),
		[]core.Identifier{fid("ok1"), fid("ok2")})
	require.NoError(t, err)

	assert.Less(t, report.HighestScore, 50)
	assert.False(t, report.GateTriggered)
}

func TestRunGateDisabledByDefault(t *testing.T) {
	fake.reset()
	fake.entries["bad"] = risky()

	report, err := newTestRunner().Run(context.Background(), []core.Identifier{fid("bad")})
	require.NoError(t, err)
	assert.False(t, report.GateTriggered, "threshold 0 disables the gate")
}

func TestRunCancellationReturnsNoReport(t *testing.T) {
	fake.reset()
	fake.entries["slow"] = healthy()
	fake.block = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	var report *core.Report
	var err error
	go func() {
		report, err = newTestRunner().Run(ctx, []core.Identifier{fid("slow")})
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, report, "cancellation is all-or-nothing, no partial report")
}

func TestRunBoundedConcurrency(t *testing.T) {
	var inflight, peak atomic.Int32

	core.Register("bounded", "", func(baseURL string, client *core.Client) core.Registry {
		return registryFunc(func(ctx context.Context, name string) (*core.Metadata, error) {
			cur := inflight.Add(1)
			for {
				p := peak.Load()
				if cur <= p || peak.CompareAndSwap(p, cur) {
					break
				}
			}
			defer inflight.Add(-1)
			time.Sleep(10 * time.Millisecond)
			md := healthy()
			return &md, nil
		})
	})

	ids := make([]core.Identifier, 12)
	for i := range ids {
		ids[i] = core.Identifier{Ecosystem: "bounded", Name: string(rune('a'+i)) + "-pkg"}
	}

	_, err := newTestRunner(WithConcurrency(3)).Run(context.Background(), ids)
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

type registryFunc func(ctx context.Context, name string) (*core.Metadata, error)

func (f registryFunc) Ecosystem() core.Ecosystem {
	return "bounded"
}

func (f registryFunc) Fetch(ctx context.Context, name string) (*core.Metadata, error) {
	return f(ctx, name)
}
