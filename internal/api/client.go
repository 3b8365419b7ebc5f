// Package api provides typed calls for the platform's REST endpoints.
package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/CjlConsultoria/convivium2/internal/gateway"
)

// Doer sends one call and decodes the envelope data. *gateway.Gateway
// implements it.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out any, opts ...gateway.CallOption) error
}

// Client groups the per-resource services.
type Client struct {
	Auth          *AuthService
	Condominiums  *CondominiumService
	Complaints    *ComplaintService
	Parcels       *ParcelService
	Users         *UserService
	Notifications *NotificationService
	Dashboard     *DashboardService
	Payments      *PaymentService
}

func New(d Doer) *Client {
	return &Client{
		Auth:          &AuthService{d: d},
		Condominiums:  &CondominiumService{d: d},
		Complaints:    &ComplaintService{d: d},
		Parcels:       &ParcelService{d: d},
		Users:         &UserService{d: d},
		Notifications: &NotificationService{d: d},
		Dashboard:     &DashboardService{d: d},
		Payments:      &PaymentService{d: d},
	}
}

// Page is the paginated response body.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Last          bool  `json:"last"`
}

// PageRequest selects a page. Zero Size leaves the server default.
type PageRequest struct {
	Page   int
	Size   int
	Sort   string
	Status string
}

func (p PageRequest) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	if p.Size > 0 {
		v.Set("size", strconv.Itoa(p.Size))
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
	}
	if p.Status != "" {
		v.Set("status", p.Status)
	}
	return v
}

func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

func condoPath(condoID int64, format string, args ...any) string {
	return fmt.Sprintf("/condos/%d", condoID) + fmt.Sprintf(format, args...)
}

// Pagination tracks a cursor over a paginated listing.
type Pagination struct {
	Page          int
	Size          int
	TotalElements int64
	TotalPages    int
}

func NewPagination(size int) *Pagination {
	if size <= 0 {
		size = 20
	}
	return &Pagination{Size: size}
}

// Update copies the server's view of the listing.
func Update[T any](p *Pagination, page Page[T]) {
	p.Page = page.Page
	p.Size = page.Size
	p.TotalElements = page.TotalElements
	p.TotalPages = page.TotalPages
}

func (p *Pagination) HasPrev() bool { return p.Page > 0 }
func (p *Pagination) HasNext() bool { return p.Page < p.TotalPages-1 }

func (p *Pagination) Next() {
	if p.HasNext() {
		p.Page++
	}
}

func (p *Pagination) Prev() {
	if p.HasPrev() {
		p.Page--
	}
}

// GoTo moves to n when it is within range.
func (p *Pagination) GoTo(n int) {
	if n >= 0 && n < p.TotalPages {
		p.Page = n
	}
}

func (p *Pagination) Request() PageRequest {
	return PageRequest{Page: p.Page, Size: p.Size}
}
