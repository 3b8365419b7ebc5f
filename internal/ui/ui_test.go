package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/CjlConsultoria/convivium2/internal/storage"
)

func TestPreferencesPersist(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()

	c, err := NewCenter(ctx, kv)
	require.NoError(t, err)
	require.Equal(t, ThemeLight, c.Theme())
	require.False(t, c.SidebarCollapsed())

	collapsed, err := c.ToggleSidebar(ctx)
	require.NoError(t, err)
	require.True(t, collapsed)
	require.NoError(t, c.SetTheme(ctx, ThemeDark))
	require.ErrorIs(t, c.SetTheme(ctx, Theme("sepia")), ErrInvalidTheme)

	restored, err := NewCenter(ctx, kv)
	require.NoError(t, err)
	require.True(t, restored.SidebarCollapsed())
	require.Equal(t, ThemeDark, restored.Theme())
}

func TestUnknownStoredThemeFallsBack(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, storage.KeyTheme, "neon"))
	c, err := NewCenter(ctx, kv)
	require.NoError(t, err)
	require.Equal(t, ThemeLight, c.Theme())
}

func TestToastsOrderAndExpiry(t *testing.T) {
	toaster := NewToaster()
	a := toaster.Success("saved", 0)
	b := toaster.Error("failed", 20*time.Millisecond)
	c := toaster.Info("fyi", 0)

	ids := func() []int64 {
		var out []int64
		for _, item := range toaster.Toasts() {
			out = append(out, item.ID)
		}
		return out
	}
	require.Equal(t, []int64{a, b, c}, ids())

	require.Eventually(t, func() bool { return len(toaster.Toasts()) == 2 }, time.Second, 5*time.Millisecond)
	require.Equal(t, []int64{a, c}, ids())

	toaster.Remove(a)
	toaster.Remove(999)
	require.Equal(t, []int64{c}, ids())
}

func TestConfirmSingleSlot(t *testing.T) {
	var conf Confirmer
	var g errgroup.Group
	result := make(chan bool, 1)
	g.Go(func() error {
		ok, err := conf.Confirm(context.Background(), "Excluir", "Deseja realmente excluir?")
		result <- ok
		return err
	})

	require.Eventually(t, func() bool { _, ok := conf.Pending(); return ok }, time.Second, time.Millisecond)
	prompt, _ := conf.Pending()
	require.Equal(t, "Excluir", prompt.Title)

	_, err := conf.Confirm(context.Background(), "again", "")
	require.ErrorIs(t, err, ErrConfirmPending)

	conf.Resolve()
	require.NoError(t, g.Wait())
	require.True(t, <-result)

	conf.Reject()
	_, pending := conf.Pending()
	require.False(t, pending)
}

func TestConfirmCancelledFreesSlot(t *testing.T) {
	var conf Confirmer
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	ok, err := conf.Confirm(ctx, "t", "m")
	require.False(t, ok)
	require.True(t, errors.Is(err, context.DeadlineExceeded))

	_, pending := conf.Pending()
	require.False(t, pending)
}

func TestResetDeclinesPendingConfirmation(t *testing.T) {
	ctx := context.Background()
	c, err := NewCenter(ctx, storage.NewMemoryKV())
	require.NoError(t, err)
	c.Notice(ctx, "Condomínio suspenso")
	require.Len(t, c.Toasts(), 1)
	require.Equal(t, ToastWarning, c.Toasts()[0].Kind)

	done := make(chan bool, 1)
	go func() {
		ok, _ := c.Confirm(ctx, "t", "m")
		done <- ok
	}()
	require.Eventually(t, func() bool { _, ok := c.Pending(); return ok }, time.Second, time.Millisecond)

	c.Reset()
	require.False(t, <-done)
	require.Empty(t, c.Toasts())
}
