package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/depfence/depfence/internal/core"
)

// fakeKV is an in-memory KVStore. TTLs are recorded, not enforced.
type fakeKV struct {
	values map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		values: make(map[string]string),
		ttls:   make(map[string]time.Duration),
	}
}

func (f *fakeKV) SetValueWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) GetValue(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	value, ok := f.values[key]
	if !ok {
		return "", errors.New("key not found")
	}
	return value, nil
}

func (f *fakeKV) Close() error { return nil }

func TestMetadataCacheRoundTrip(t *testing.T) {
	kv := newFakeKV()
	mc := NewMetadataCache(kv)
	ctx := context.Background()

	md := core.Metadata{
		LatestReleaseAt: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		ReleaseCount:    12,
		Maintainers:     []string{"alice", "bob"},
		Outcome:         core.OutcomeOK,
	}
	mc.Put(ctx, "pypi\x00requests\x00", md, time.Hour)

	got, ok := mc.Get(ctx, "pypi\x00requests\x00")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !got.LatestReleaseAt.Equal(md.LatestReleaseAt) || got.ReleaseCount != 12 ||
		len(got.Maintainers) != 2 || got.Outcome != core.OutcomeOK {
		t.Errorf("got %+v, want %+v", got, md)
	}

	if ttl := kv.ttls[metadataKeyPrefix+"pypi\x00requests\x00"]; ttl != time.Hour {
		t.Errorf("stored ttl = %v, want 1h", ttl)
	}
}

func TestMetadataCacheMiss(t *testing.T) {
	mc := NewMetadataCache(newFakeKV())

	if _, ok := mc.Get(context.Background(), "npm\x00absent\x00"); ok {
		t.Error("expected cache miss")
	}
}

func TestMetadataCacheSwallowsStoreErrors(t *testing.T) {
	kv := newFakeKV()
	kv.getErr = errors.New("connection refused")
	kv.setErr = errors.New("connection refused")
	mc := NewMetadataCache(kv)
	ctx := context.Background()

	mc.Put(ctx, "k", core.Metadata{Outcome: core.OutcomeOK}, time.Hour)
	if _, ok := mc.Get(ctx, "k"); ok {
		t.Error("store errors must read as misses")
	}
}

func TestMetadataCacheCorruptEntry(t *testing.T) {
	kv := newFakeKV()
	kv.values[metadataKeyPrefix+"k"] = "{not json"
	mc := NewMetadataCache(kv)

	if _, ok := mc.Get(context.Background(), "k"); ok {
		t.Error("corrupt entries must read as misses")
	}
}

func reportWith(scores map[string]int) *core.Report {
	report := &core.Report{}
	for _, name := range []string{"a", "b", "c", "d"} {
		score, ok := scores[name]
		if !ok {
			continue
		}
		report.Assessments = append(report.Assessments, core.Assessment{
			Identifier: core.Identifier{Ecosystem: core.EcosystemPyPI, Name: name},
			Score:      score,
		})
	}
	return report
}

func TestSnapshotRoundTrip(t *testing.T) {
	kv := newFakeKV()
	ss := NewSnapshotStore(kv, 24*time.Hour)
	ctx := context.Background()

	report := reportWith(map[string]int{"a": 10, "b": 96})
	report.HighestScore = 96
	if err := ss.Save(ctx, "requirements.txt", report); err != nil {
		t.Fatal(err)
	}

	got, err := ss.Latest(ctx, "requirements.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got.Assessments) != 2 || got.HighestScore != 96 {
		t.Errorf("got %+v", got)
	}
}

func TestSnapshotLatestMissing(t *testing.T) {
	ss := NewSnapshotStore(newFakeKV(), time.Hour)

	got, err := ss.Latest(context.Background(), "requirements.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected nil for missing snapshot, got %+v", got)
	}
}

func TestDiff(t *testing.T) {
	prev := reportWith(map[string]int{"a": 10, "b": 50, "c": 30})
	cur := reportWith(map[string]int{"a": 10, "b": 70, "d": 5})

	deltas := Diff(prev, cur)
	if len(deltas) != 1 {
		t.Fatalf("got %d deltas, want 1: %+v", len(deltas), deltas)
	}
	d := deltas[0]
	if d.Identifier.Name != "b" || d.Previous != 50 || d.Current != 70 || d.Change != 20 {
		t.Errorf("delta = %+v", d)
	}
}

func TestDiffNilReports(t *testing.T) {
	cur := reportWith(map[string]int{"a": 10})
	if Diff(nil, cur) != nil || Diff(cur, nil) != nil {
		t.Error("nil reports must diff to nil")
	}
}
