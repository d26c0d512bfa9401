// Package credentials defines the credential store the API client consumes.
//
// The client never persists tokens itself. It reads the access credential for
// every request and only the refresh coordinator, sign-in and sign-out write to
// the store. Writes are single atomic operations with last-write-wins semantics.
package credentials

import (
	"context"
	"errors"
	"fmt"
)

// Fixed key names used by keyed (key/value) backends.
const (
	KeyAccess  = "access_token"
	KeyRefresh = "refresh_token"
)

// Pair is the access/refresh credential pair issued at sign-in.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Store holds the active credential pair.
// Getters return "" with a nil error when a credential is absent. Any returned
// error is a storage failure and is fatal for the calling operation.
type Store interface {
	GetAccess(ctx context.Context) (string, error)
	SetAccess(ctx context.Context, token string) error
	ClearAccess(ctx context.Context) error
	GetRefresh(ctx context.Context) (string, error)
	SetRefresh(ctx context.Context, token string) error
	ClearRefresh(ctx context.Context) error
}

// SavePair stores both credentials, access first.
func SavePair(ctx context.Context, s Store, p Pair) error {
	if err := s.SetAccess(ctx, p.Access); err != nil {
		return fmt.Errorf("credentials: set access: %w", err)
	}
	if err := s.SetRefresh(ctx, p.Refresh); err != nil {
		return fmt.Errorf("credentials: set refresh: %w", err)
	}
	return nil
}

// LoadPair reads both credentials. Missing values come back empty.
func LoadPair(ctx context.Context, s Store) (Pair, error) {
	access, err := s.GetAccess(ctx)
	if err != nil {
		return Pair{}, fmt.Errorf("credentials: get access: %w", err)
	}
	refresh, err := s.GetRefresh(ctx)
	if err != nil {
		return Pair{}, fmt.Errorf("credentials: get refresh: %w", err)
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// ClearPair clears both credentials. Both clears are attempted even if the
// first one fails.
func ClearPair(ctx context.Context, s Store) error {
	var errs []error
	if err := s.ClearAccess(ctx); err != nil {
		errs = append(errs, fmt.Errorf("credentials: clear access: %w", err))
	}
	if err := s.ClearRefresh(ctx); err != nil {
		errs = append(errs, fmt.Errorf("credentials: clear refresh: %w", err))
	}
	return errors.Join(errs...)
}
