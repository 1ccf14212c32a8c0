// Package redis provides a Redis implementation of the entitlement.Store
// interface. Records are stored as JSON under prefixed keys; a single SET is
// atomic, which is all the idempotent premium overwrite needs.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/startupprice/billingd/pkg/entitlement"
)

// Store implements entitlement.Store using Redis.
type Store struct {
	client redis.UniversalClient
	config Config
}

// Config holds Redis store configuration.
type Config struct {
	// KeyPrefix is prepended to all Redis keys (default: "billing:premium:")
	KeyPrefix string

	// RecordTTL is the TTL for entitlement keys (0 = no expiration).
	// Premium is terminal in this system, so the default is no expiration.
	RecordTTL time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		KeyPrefix: "billing:premium:",
		RecordTTL: 0,
	}
}

// New creates a new Redis store.
// The client can be *redis.Client, *redis.ClusterClient, or *redis.Ring.
func New(client redis.UniversalClient, config Config) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "billing:premium:"
	}
	return &Store{client: client, config: config}, nil
}

func (s *Store) key(userID string) string {
	return s.config.KeyPrefix + userID
}

// UpsertPremium implements entitlement.Store.
func (s *Store) UpsertPremium(ctx context.Context, userID, email string) error {
	rec := entitlement.Record{
		UserID:    userID,
		Email:     email,
		IsPremium: true,
	}
	data, err := json.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := s.client.Set(ctx, s.key(userID), data, s.config.RecordTTL).Err(); err != nil {
		return fmt.Errorf("failed to set record: %w", err)
	}
	return nil
}

// Get implements entitlement.Store.
func (s *Store) Get(ctx context.Context, userID string) (*entitlement.Record, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, entitlement.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	var rec entitlement.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, nil
}

// Delete implements entitlement.Store.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Clear implements entitlement.Store. Test-only: scans the prefix and
// deletes in batches.
func (s *Store) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.config.KeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to clear records: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan records: %w", err)
	}
	if len(keys) > 0 {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to clear records: %w", err)
		}
	}
	return nil
}
