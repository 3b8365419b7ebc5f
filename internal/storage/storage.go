// Package storage holds the durable key/value state that survives restarts:
// tokens, the selected condominium and UI preferences.
package storage

import (
	"context"
	"errors"
)

// Persisted keys. All values are strings.
const (
	KeyAccessToken      = "access_token"
	KeyRefreshToken     = "refresh_token"
	KeyCurrentCondoID   = "current_condo_id"
	KeySidebarCollapsed = "sidebar_collapsed"
	KeyTheme            = "theme"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// KV is a string key/value store. Writes are last-write-wins.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Lookup returns the value stored under key, treating ErrNotFound as absent.
func Lookup(ctx context.Context, kv KV, key string) (string, bool, error) {
	v, err := kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}
