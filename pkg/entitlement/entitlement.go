// Package entitlement defines the premium entitlement record and the
// storage contract it lives behind. The in-memory adapter in storage/memory
// is the reference implementation; postgres, redis and firestore adapters
// back the same interface for durable deployments.
package entitlement

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no record exists for a user.
var ErrNotFound = errors.New("entitlement not found")

// Record is the per-user premium entitlement.
// A record only ever comes into existence through a confirmed purchase, so
// IsPremium is effectively terminal: nothing in this service downgrades it.
type Record struct {
	// UserID is the opaque, caller-supplied identifier (unique key).
	UserID string `json:"userId"`

	// Email is the last-known-good contact address, overwritten on each
	// successful purchase confirmation.
	Email string `json:"email"`

	// IsPremium reports whether the user has paid access.
	IsPremium bool `json:"isPremium"`
}

// Store is the keyed store behind the entitlement pipeline.
// Implementations must tolerate concurrent readers and writers; a
// single-record write is atomic, cross-record consistency is not required.
type Store interface {
	// UpsertPremium marks userID as premium, overwriting the stored email.
	// The write is an idempotent overwrite to a fixed target state, so
	// at-least-once webhook delivery needs no extra deduplication.
	UpsertPremium(ctx context.Context, userID, email string) error

	// Get returns the record for userID, or ErrNotFound.
	Get(ctx context.Context, userID string) (*Record, error)

	// Delete removes the record for userID. Missing records are not an error.
	Delete(ctx context.Context, userID string) error

	// Clear removes all records. Test-only escape hatch.
	Clear(ctx context.Context) error
}

// IsPremium reports whether userID holds a premium entitlement.
// An absent record means the user never purchased.
func IsPremium(ctx context.Context, store Store, userID string) (bool, error) {
	rec, err := store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return rec.IsPremium, nil
}
