// Package ui holds client-side presentation state: layout preferences,
// toast messages and the single confirmation dialog.
package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/CjlConsultoria/convivium2/internal/storage"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

var ErrInvalidTheme = errors.New("ui: theme must be light or dark")

// Center is the shared UI state. Layout preferences are persisted; toasts
// and the confirmation slot live in memory.
type Center struct {
	kv storage.KV

	mu               sync.RWMutex
	sidebarCollapsed bool
	mobileOpen       bool
	theme            Theme

	*Toaster
	*Confirmer
}

// NewCenter restores persisted preferences. Unknown stored themes fall back
// to light.
func NewCenter(ctx context.Context, kv storage.KV) (*Center, error) {
	c := &Center{kv: kv, theme: ThemeLight, Toaster: NewToaster(), Confirmer: &Confirmer{}}
	collapsed, _, err := storage.Lookup(ctx, kv, storage.KeySidebarCollapsed)
	if err != nil {
		return nil, fmt.Errorf("ui: load sidebar: %w", err)
	}
	c.sidebarCollapsed = collapsed == "true"
	theme, _, err := storage.Lookup(ctx, kv, storage.KeyTheme)
	if err != nil {
		return nil, fmt.Errorf("ui: load theme: %w", err)
	}
	if Theme(theme) == ThemeDark {
		c.theme = ThemeDark
	}
	return c, nil
}

// ToggleSidebar flips and persists the collapsed state.
func (c *Center) ToggleSidebar(ctx context.Context) (bool, error) {
	c.mu.Lock()
	c.sidebarCollapsed = !c.sidebarCollapsed
	v := c.sidebarCollapsed
	c.mu.Unlock()
	value := "false"
	if v {
		value = "true"
	}
	return v, c.kv.Set(ctx, storage.KeySidebarCollapsed, value)
}

func (c *Center) SidebarCollapsed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sidebarCollapsed
}

// SetMobileOpen is not persisted.
func (c *Center) SetMobileOpen(open bool) {
	c.mu.Lock()
	c.mobileOpen = open
	c.mu.Unlock()
}

func (c *Center) MobileOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mobileOpen
}

func (c *Center) SetTheme(ctx context.Context, t Theme) error {
	if t != ThemeLight && t != ThemeDark {
		return ErrInvalidTheme
	}
	c.mu.Lock()
	c.theme = t
	c.mu.Unlock()
	return c.kv.Set(ctx, storage.KeyTheme, string(t))
}

func (c *Center) Theme() Theme {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.theme
}

// Notice shows msg as a warning toast so the center can serve as the
// gateway's notifier.
func (c *Center) Notice(_ context.Context, msg string) {
	c.Warning(msg, DefaultDuration)
}

// Reset clears transient state when the session ends: toasts are dropped
// and a pending confirmation is declined.
func (c *Center) Reset() {
	c.Toaster.Clear()
	c.Confirmer.Reject()
	c.SetMobileOpen(false)
}
