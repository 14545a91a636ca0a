package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/depfence/depfence/internal/core"
)

// SnapshotStore persists scan reports keyed by manifest label so successive
// runs can be diffed. Assessments are comparable across runs because the
// scoring function and signal definitions do not change between them.
type SnapshotStore struct {
	kv  KVStore
	ttl time.Duration
}

// NewSnapshotStore creates a snapshot store with the given retention.
func NewSnapshotStore(kv KVStore, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{kv: kv, ttl: ttl}
}

// Save persists the report as the latest snapshot for the manifest label.
func (s *SnapshotStore) Save(ctx context.Context, manifest string, report *core.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report snapshot: %w", err)
	}
	return s.kv.SetValueWithTTL(ctx, trendKeyPrefix+manifest, string(data), s.ttl)
}

// Latest returns the most recent snapshot for the manifest label, or nil if
// none is stored.
func (s *SnapshotStore) Latest(ctx context.Context, manifest string) (*core.Report, error) {
	value, err := s.kv.GetValue(ctx, trendKeyPrefix+manifest)
	if err != nil {
		return nil, nil
	}
	var report core.Report
	if err := json.Unmarshal([]byte(value), &report); err != nil {
		return nil, fmt.Errorf("decoding report snapshot: %w", err)
	}
	return &report, nil
}

// Delta describes the score movement of one package between two runs.
type Delta struct {
	Identifier core.Identifier `json:"identifier"`
	Previous   int             `json:"previous"`
	Current    int             `json:"current"`
	Change     int             `json:"change"`
}

// Diff compares two reports by identifier and returns the packages whose
// score changed, in the current report's order. Packages absent from the
// previous report are skipped: there is nothing to trend against.
func Diff(prev, cur *core.Report) []Delta {
	if prev == nil || cur == nil {
		return nil
	}

	prevScores := make(map[string]int, len(prev.Assessments))
	for _, a := range prev.Assessments {
		prevScores[a.Identifier.Key()] = a.Score
	}

	var deltas []Delta
	for _, a := range cur.Assessments {
		before, ok := prevScores[a.Identifier.Key()]
		if !ok || before == a.Score {
			continue
		}
		deltas = append(deltas, Delta{
			Identifier: a.Identifier,
			Previous:   before,
			Current:    a.Score,
			Change:     a.Score - before,
		})
	}
	return deltas
}
