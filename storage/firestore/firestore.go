// Package firestore provides a Firestore implementation of the
// entitlement.Store interface for deployments already on Google Cloud.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/startupprice/billingd/pkg/entitlement"
)

// Store implements entitlement.Store using Google Cloud Firestore.
type Store struct {
	client     *firestore.Client
	collection string
}

// Config holds Firestore store configuration.
type Config struct {
	// Collection is the Firestore collection for premium users.
	// Default: "premium_users"
	Collection string
}

// New creates a new Firestore store.
func New(client *firestore.Client, config Config) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client is required")
	}
	if config.Collection == "" {
		config.Collection = "premium_users"
	}
	return &Store{
		client:     client,
		collection: config.Collection,
	}, nil
}

// UpsertPremium implements entitlement.Store.
func (s *Store) UpsertPremium(ctx context.Context, userID, email string) error {
	doc := s.client.Collection(s.collection).Doc(userID)
	_, err := doc.Set(ctx, map[string]interface{}{
		"email":     email,
		"isPremium": true,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert premium user: %w", err)
	}
	return nil
}

// Get implements entitlement.Store.
func (s *Store) Get(ctx context.Context, userID string) (*entitlement.Record, error) {
	doc := s.client.Collection(s.collection).Doc(userID)
	snap, err := doc.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, entitlement.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get premium user: %w", err)
	}
	if !snap.Exists() {
		return nil, entitlement.ErrNotFound
	}

	data := snap.Data()
	rec := &entitlement.Record{UserID: userID}
	if email, ok := data["email"].(string); ok {
		rec.Email = email
	}
	if premium, ok := data["isPremium"].(bool); ok {
		rec.IsPremium = premium
	}
	return rec, nil
}

// Delete implements entitlement.Store.
func (s *Store) Delete(ctx context.Context, userID string) error {
	_, err := s.client.Collection(s.collection).Doc(userID).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to delete premium user: %w", err)
	}
	return nil
}

// Clear implements entitlement.Store. Test-only: deletes documents in
// batches of 100.
func (s *Store) Clear(ctx context.Context) error {
	iter := s.client.Collection(s.collection).Documents(ctx)
	defer iter.Stop()

	writer := s.client.BulkWriter(ctx)
	for {
		snap, err := iter.Next()
		if err != nil {
			break
		}
		if _, err := writer.Delete(snap.Ref); err != nil {
			return fmt.Errorf("failed to clear premium users: %w", err)
		}
	}
	writer.End()
	return nil
}
