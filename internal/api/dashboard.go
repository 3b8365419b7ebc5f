package api

import (
	"context"
	"net/http"
)

type DashboardStats struct {
	TotalMoradores      int `json:"totalMoradores"`
	DenunciasAbertas    int `json:"denunciasAbertas"`
	EncomendasPendentes int `json:"encomendasPendentes"`
	ReservasHoje        int `json:"reservasHoje"`
}

type UnitActivity struct {
	Type        string `json:"type"`
	EntityID    int64  `json:"entityId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	BadgeLabel  string `json:"badgeLabel"`
}

type DashboardService struct{ d Doer }

func (s *DashboardService) Stats(ctx context.Context, condoID int64) (DashboardStats, error) {
	var out DashboardStats
	err := s.d.Do(ctx, http.MethodGet, condoPath(condoID, "/dashboard/stats"), nil, &out)
	return out, err
}

// Activity defaults to the first page of ten items.
func (s *DashboardService) Activity(ctx context.Context, condoID int64, p PageRequest) (Page[UnitActivity], error) {
	if p.Size == 0 {
		p.Size = 10
	}
	var out Page[UnitActivity]
	err := s.d.Do(ctx, http.MethodGet, withQuery(condoPath(condoID, "/dashboard/activity"), p.values()), nil, &out)
	return out, err
}
