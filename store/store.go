// Package store provides optional Valkey-backed persistence: a cross-run
// metadata cache backend and a trend snapshot store for comparing successive
// scan reports.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	valkey "github.com/valkey-io/valkey-go"

	"github.com/depfence/depfence/internal/core"
)

const (
	metadataKeyPrefix = "depfence:metadata:"
	trendKeyPrefix    = "depfence:trend:"
)

// KVStore defines the key/value operations the store needs.
type KVStore interface {
	// SetValueWithTTL sets the given key to the specified value with a TTL.
	SetValueWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	// GetValue retrieves the value associated with the given key.
	// A missing key returns valkey's nil error.
	GetValue(ctx context.Context, key string) (string, error)
	// Close shuts down the underlying connection.
	Close() error
}

// valkeyStore is a concrete implementation of KVStore using the valkey-go client.
type valkeyStore struct {
	client valkey.Client
}

// NewValkeyStore creates a store connected to the given address, e.g. "localhost:6379".
func NewValkeyStore(addr string) (KVStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, err
	}
	return &valkeyStore{client: client}, nil
}

func (s *valkeyStore) SetValueWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	cmd := s.client.B().Set().Key(key).Value(value).Ex(ttl).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *valkeyStore) GetValue(ctx context.Context, key string) (string, error) {
	cmd := s.client.B().Get().Key(key).Build()
	resp := s.client.Do(ctx, cmd)
	if err := resp.Error(); err != nil {
		return "", err
	}
	value, err := resp.ToString()
	if err != nil {
		return "", fmt.Errorf("converting valkey reply for key %q: %w", key, err)
	}
	return value, nil
}

func (s *valkeyStore) Close() error {
	s.client.Close()
	return nil
}

// MetadataCache adapts a KVStore into the scan cache's cross-run backend.
// Store errors are swallowed: a broken cache degrades to plain network
// fetches, it never fails a scan.
type MetadataCache struct {
	kv KVStore
}

// NewMetadataCache wraps a KVStore as a metadata cache backend.
func NewMetadataCache(kv KVStore) *MetadataCache {
	return &MetadataCache{kv: kv}
}

func (m *MetadataCache) Get(ctx context.Context, key string) (core.Metadata, bool) {
	value, err := m.kv.GetValue(ctx, metadataKeyPrefix+key)
	if err != nil {
		return core.Metadata{}, false
	}
	var md core.Metadata
	if err := json.Unmarshal([]byte(value), &md); err != nil {
		return core.Metadata{}, false
	}
	return md, true
}

func (m *MetadataCache) Put(ctx context.Context, key string, md core.Metadata, ttl time.Duration) {
	data, err := json.Marshal(md)
	if err != nil {
		return
	}
	_ = m.kv.SetValueWithTTL(ctx, metadataKeyPrefix+key, string(data), ttl)
}
