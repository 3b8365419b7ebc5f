// Package notification keeps the in-app notification list and unread count.
package notification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/CjlConsultoria/convivium2/internal/api"
	"github.com/CjlConsultoria/convivium2/internal/obs"
)

const fetchSize = 50

// API is the notifications endpoint group. *api.NotificationService
// implements it.
type API interface {
	List(ctx context.Context, p api.PageRequest) (api.Page[api.Notification], error)
	MarkAsRead(ctx context.Context, id int64) error
	MarkAllAsRead(ctx context.Context) error
	UnreadCount(ctx context.Context) (int, error)
}

type Store struct {
	api API
	now func() time.Time

	mu      sync.RWMutex
	items   []api.Notification
	unread  int
	loading bool
}

func New(a API) *Store {
	return &Store{api: a, now: time.Now}
}

// Fetch replaces the list with the first page of notifications.
func (s *Store) Fetch(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	page, err := s.api.List(ctx, api.PageRequest{Page: 0, Size: fetchSize})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items = page.Content
	s.mu.Unlock()
	return nil
}

// FetchUnreadCount refreshes the counter. Failures leave the previous count.
func (s *Store) FetchUnreadCount(ctx context.Context) {
	n, err := s.api.UnreadCount(ctx)
	if err != nil {
		obs.Logger().Debug("unread count", zap.Error(err))
		return
	}
	s.mu.Lock()
	s.unread = n
	s.mu.Unlock()
}

func (s *Store) MarkAsRead(ctx context.Context, id int64) error {
	if err := s.api.MarkAsRead(ctx, id); err != nil {
		return err
	}
	stamp := s.stamp()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		n := &s.items[i]
		if n.ID != id || n.IsRead {
			continue
		}
		n.IsRead = true
		n.ReadAt = &stamp
		if s.unread > 0 {
			s.unread--
		}
		break
	}
	return nil
}

func (s *Store) MarkAllAsRead(ctx context.Context) error {
	if err := s.api.MarkAllAsRead(ctx); err != nil {
		return err
	}
	stamp := s.stamp()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if !s.items[i].IsRead {
			s.items[i].IsRead = true
			s.items[i].ReadAt = &stamp
		}
	}
	s.unread = 0
	return nil
}

// Add prepends a pushed notification and counts it if unread.
func (s *Store) Add(n api.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]api.Notification{n}, s.items...)
	if !n.IsRead {
		s.unread++
	}
}

// Reset drops all state, used when the session ends.
func (s *Store) Reset() {
	s.mu.Lock()
	s.items = nil
	s.unread = 0
	s.mu.Unlock()
}

// Items returns a copy of the list, newest first.
func (s *Store) Items() []api.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]api.Notification(nil), s.items...)
}

func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Store) stamp() string { return s.now().UTC().Format(time.RFC3339) }
