package storage

import (
	"context"
	"errors"
	"sync"
)

// Credentials mirrors the token pair in memory and writes changes through to
// the backing KV. An empty access token means unauthenticated.
type Credentials struct {
	kv KV

	mu      sync.RWMutex
	access  string
	refresh string
}

func NewCredentials(kv KV) *Credentials {
	return &Credentials{kv: kv}
}

// Hydrate loads persisted tokens into memory and reports whether an access
// token was found.
func (c *Credentials) Hydrate(ctx context.Context) (bool, error) {
	access, _, err := Lookup(ctx, c.kv, KeyAccessToken)
	if err != nil {
		return false, err
	}
	refresh, _, err := Lookup(ctx, c.kv, KeyRefreshToken)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	c.access, c.refresh = access, refresh
	c.mu.Unlock()
	return access != "", nil
}

func (c *Credentials) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.access
}

func (c *Credentials) RefreshToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refresh
}

// SetTokens replaces both tokens. The in-memory pair is updated even when
// persisting fails.
func (c *Credentials) SetTokens(ctx context.Context, access, refresh string) error {
	c.mu.Lock()
	c.access, c.refresh = access, refresh
	c.mu.Unlock()
	return errors.Join(
		c.persist(ctx, KeyAccessToken, access),
		c.persist(ctx, KeyRefreshToken, refresh),
	)
}

// Clear forgets both tokens in memory and in the store.
func (c *Credentials) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.access, c.refresh = "", ""
	c.mu.Unlock()
	return errors.Join(
		c.kv.Delete(ctx, KeyAccessToken),
		c.kv.Delete(ctx, KeyRefreshToken),
	)
}

func (c *Credentials) persist(ctx context.Context, key, value string) error {
	if value == "" {
		return c.kv.Delete(ctx, key)
	}
	return c.kv.Set(ctx, key, value)
}
