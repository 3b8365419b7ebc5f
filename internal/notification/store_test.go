package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CjlConsultoria/convivium2/internal/api"
)

type fakeAPI struct {
	page     api.Page[api.Notification]
	listReq  api.PageRequest
	count    int
	countErr error
	markErr  error
	marked   []int64
	markAll  int
}

func (f *fakeAPI) List(_ context.Context, p api.PageRequest) (api.Page[api.Notification], error) {
	f.listReq = p
	return f.page, nil
}

func (f *fakeAPI) MarkAsRead(_ context.Context, id int64) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, id)
	return nil
}

func (f *fakeAPI) MarkAllAsRead(context.Context) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.markAll++
	return nil
}

func (f *fakeAPI) UnreadCount(context.Context) (int, error) { return f.count, f.countErr }

func fixedStore(a API) *Store {
	s := New(a)
	s.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestFetchRequestsFirstPage(t *testing.T) {
	fake := &fakeAPI{page: api.Page[api.Notification]{Content: []api.Notification{{ID: 1}, {ID: 2, IsRead: true}}}}
	s := fixedStore(fake)

	require.NoError(t, s.Fetch(context.Background()))
	require.Equal(t, api.PageRequest{Page: 0, Size: 50}, fake.listReq)
	require.Len(t, s.Items(), 2)
	require.False(t, s.Loading())
}

func TestUnreadCountFailureKeepsPrevious(t *testing.T) {
	fake := &fakeAPI{count: 4}
	s := fixedStore(fake)
	s.FetchUnreadCount(context.Background())
	require.Equal(t, 4, s.UnreadCount())

	fake.countErr = errors.New("offline")
	fake.count = 0
	s.FetchUnreadCount(context.Background())
	require.Equal(t, 4, s.UnreadCount())
}

func TestMarkAsRead(t *testing.T) {
	fake := &fakeAPI{
		page:  api.Page[api.Notification]{Content: []api.Notification{{ID: 1}, {ID: 2, IsRead: true}}},
		count: 1,
	}
	s := fixedStore(fake)
	require.NoError(t, s.Fetch(context.Background()))
	s.FetchUnreadCount(context.Background())

	require.NoError(t, s.MarkAsRead(context.Background(), 1))
	items := s.Items()
	require.True(t, items[0].IsRead)
	require.Equal(t, "2025-03-01T12:00:00Z", *items[0].ReadAt)
	require.Equal(t, 0, s.UnreadCount())

	require.NoError(t, s.MarkAsRead(context.Background(), 2))
	require.Equal(t, 0, s.UnreadCount(), "count never goes negative")
	require.Equal(t, []int64{1, 2}, fake.marked)
}

func TestMarkAsReadFailureLeavesState(t *testing.T) {
	fake := &fakeAPI{page: api.Page[api.Notification]{Content: []api.Notification{{ID: 1}}}, markErr: errors.New("500")}
	s := fixedStore(fake)
	require.NoError(t, s.Fetch(context.Background()))
	require.Error(t, s.MarkAsRead(context.Background(), 1))
	require.False(t, s.Items()[0].IsRead)
	require.Error(t, s.MarkAllAsRead(context.Background()))
}

func TestMarkAllAndAdd(t *testing.T) {
	fake := &fakeAPI{page: api.Page[api.Notification]{Content: []api.Notification{{ID: 1}, {ID: 2}}}, count: 2}
	s := fixedStore(fake)
	require.NoError(t, s.Fetch(context.Background()))
	s.FetchUnreadCount(context.Background())

	require.NoError(t, s.MarkAllAsRead(context.Background()))
	require.Equal(t, 0, s.UnreadCount())
	for _, n := range s.Items() {
		require.True(t, n.IsRead)
	}

	s.Add(api.Notification{ID: 3})
	s.Add(api.Notification{ID: 4, IsRead: true})
	require.Equal(t, 1, s.UnreadCount())
	require.Equal(t, int64(4), s.Items()[0].ID)
	require.Equal(t, int64(3), s.Items()[1].ID)

	s.Reset()
	require.Empty(t, s.Items())
	require.Equal(t, 0, s.UnreadCount())
}
