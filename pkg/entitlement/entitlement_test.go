package entitlement

import (
	"context"
	"errors"
	"testing"
)

// stubStore returns a canned record or error from Get.
type stubStore struct {
	rec *Record
	err error
}

func (s *stubStore) UpsertPremium(context.Context, string, string) error { return nil }
func (s *stubStore) Get(context.Context, string) (*Record, error)        { return s.rec, s.err }
func (s *stubStore) Delete(context.Context, string) error                { return nil }
func (s *stubStore) Clear(context.Context) error                         { return nil }

func TestIsPremium(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		store   *stubStore
		want    bool
		wantErr bool
	}{
		{
			name:  "premium record",
			store: &stubStore{rec: &Record{UserID: "u1", Email: "a@b.com", IsPremium: true}},
			want:  true,
		},
		{
			name:  "absent record means never purchased",
			store: &stubStore{err: ErrNotFound},
			want:  false,
		},
		{
			name:  "wrapped not found",
			store: &stubStore{err: errors.Join(errors.New("lookup failed"), ErrNotFound)},
			want:  false,
		},
		{
			name:    "store failure propagates",
			store:   &stubStore{err: errors.New("connection refused")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsPremium(ctx, tt.store, "u1")
			if (err != nil) != tt.wantErr {
				t.Fatalf("IsPremium() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("IsPremium() = %v, want %v", got, tt.want)
			}
		})
	}
}
