// Package memory provides an in-memory implementation of the
// entitlement.Store interface. This implementation is primarily intended for
// testing and development; production deployments should use one of the
// durable adapters.
package memory

import (
	"context"
	"sync"

	"github.com/startupprice/billingd/pkg/entitlement"
)

// Store implements entitlement.Store using an in-memory map keyed by userID.
type Store struct {
	mu      sync.RWMutex
	records map[string]*entitlement.Record
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		records: make(map[string]*entitlement.Record),
	}
}

// UpsertPremium implements entitlement.Store.
func (s *Store) UpsertPremium(ctx context.Context, userID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[userID] = &entitlement.Record{
		UserID:    userID,
		Email:     email,
		IsPremium: true,
	}
	return nil
}

// Get implements entitlement.Store.
func (s *Store) Get(ctx context.Context, userID string) (*entitlement.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[userID]
	if !ok {
		return nil, entitlement.ErrNotFound
	}

	// Return a copy to prevent external mutations
	recCopy := *rec
	return &recCopy, nil
}

// Delete implements entitlement.Store.
func (s *Store) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, userID)
	return nil
}

// Clear implements entitlement.Store.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*entitlement.Record)
	return nil
}
