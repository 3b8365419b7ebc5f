// Package tenant tracks the selected condominium.
package tenant

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/CjlConsultoria/convivium2/internal/api"
	"github.com/CjlConsultoria/convivium2/internal/obs"
	"github.com/CjlConsultoria/convivium2/internal/storage"
)

var ErrInvalidID = errors.New("tenant: condominium id must be positive")

// SummaryFetcher loads the tenant-facing condominium view.
// *api.CondominiumService implements it.
type SummaryFetcher interface {
	Summary(ctx context.Context, condoID int64) (*api.Condominium, error)
}

// Selection is a snapshot of the current tenant. CondominiumID 0 means none.
type Selection struct {
	CondominiumID int64
	Summary       *api.Condominium
}

type Store struct {
	kv      storage.KV
	fetcher SummaryFetcher

	mu      sync.RWMutex
	id      int64
	summary *api.Condominium
}

// New restores the persisted selection. Stored values that are not positive
// integers are ignored.
func New(ctx context.Context, kv storage.KV, fetcher SummaryFetcher) (*Store, error) {
	s := &Store{kv: kv, fetcher: fetcher}
	raw, ok, err := storage.Lookup(ctx, kv, storage.KeyCurrentCondoID)
	if err != nil {
		return nil, err
	}
	if ok {
		if id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil && id > 0 {
			s.id = id
		}
	}
	return s, nil
}

// SetCondominium selects and persists id, then refreshes the cached summary.
// A failed summary fetch leaves the selection in place with a nil summary.
func (s *Store) SetCondominium(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidID
	}
	s.mu.Lock()
	s.id = id
	s.mu.Unlock()
	if err := s.kv.Set(ctx, storage.KeyCurrentCondoID, strconv.FormatInt(id, 10)); err != nil {
		return err
	}

	summary, err := s.fetcher.Summary(ctx, id)
	if err != nil {
		obs.Logger().Debug("condominium summary unavailable", zap.Int64("condominium_id", id), zap.Error(err))
		summary = nil
	}
	s.mu.Lock()
	// A later selection wins over this fetch.
	if s.id == id {
		s.summary = summary
	}
	s.mu.Unlock()
	return nil
}

// ClearCondominium drops the selection, summary and persisted id.
func (s *Store) ClearCondominium(ctx context.Context) error {
	s.mu.Lock()
	s.id = 0
	s.summary = nil
	s.mu.Unlock()
	return s.kv.Delete(ctx, storage.KeyCurrentCondoID)
}

func (s *Store) CurrentCondominiumID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

func (s *Store) Current() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Selection{CondominiumID: s.id, Summary: s.summary}
}

func (s *Store) HasSelection() bool { return s.CurrentCondominiumID() != 0 }
