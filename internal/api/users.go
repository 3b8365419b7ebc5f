package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/CjlConsultoria/convivium2/internal/auth"
)

type User struct {
	ID              int64     `json:"id"`
	UUID            uuid.UUID `json:"uuid"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	CPF             *string   `json:"cpf"`
	Phone           *string   `json:"phone"`
	PhotoURL        *string   `json:"photoUrl"`
	IsPlatformAdmin bool      `json:"isPlatformAdmin"`
	IsActive        bool      `json:"isActive"`
	EmailVerified   bool      `json:"emailVerified"`
	CreatedAt       string    `json:"createdAt"`
}

type UserMembership struct {
	ID              int64     `json:"id"`
	CondominiumID   int64     `json:"condominiumId"`
	CondominiumName string    `json:"condominiumName"`
	Role            auth.Role `json:"role"`
	UnitID          *int64    `json:"unitId"`
	UnitIdentifier  *string   `json:"unitIdentifier"`
	Status          string    `json:"status"`
	ApprovedAt      *string   `json:"approvedAt"`
}

type UserDetail struct {
	User
	CondominiumRoles []UserMembership `json:"condominiumRoles"`
}

type UserCreateRequest struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	CPF      *string   `json:"cpf"`
	Phone    *string   `json:"phone"`
	Role     auth.Role `json:"role"`
	UnitID   *int64    `json:"unitId"`
}

type UserUpdateRequest struct {
	Name     string  `json:"name"`
	Phone    *string `json:"phone"`
	PhotoURL *string `json:"photoUrl"`
	UnitID   *int64  `json:"unitId,omitempty"`
}

type UserService struct{ d Doer }

func (s *UserService) List(ctx context.Context, condoID int64, p PageRequest) (Page[User], error) {
	var out Page[User]
	err := s.d.Do(ctx, http.MethodGet, withQuery(condoPath(condoID, "/users"), p.values()), nil, &out)
	return out, err
}

func (s *UserService) Create(ctx context.Context, condoID int64, req UserCreateRequest) (*User, error) {
	var out User
	if err := s.d.Do(ctx, http.MethodPost, condoPath(condoID, "/users"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *UserService) Get(ctx context.Context, condoID, userID int64) (*UserDetail, error) {
	var out UserDetail
	if err := s.d.Do(ctx, http.MethodGet, condoPath(condoID, "/users/%d", userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *UserService) Update(ctx context.Context, condoID, userID int64, req UserUpdateRequest) (*User, error) {
	var out User
	if err := s.d.Do(ctx, http.MethodPut, condoPath(condoID, "/users/%d", userID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *UserService) Delete(ctx context.Context, condoID, userID int64) error {
	return s.d.Do(ctx, http.MethodDelete, condoPath(condoID, "/users/%d", userID), nil, nil)
}

func (s *UserService) PendingApprovals(ctx context.Context, condoID int64) ([]User, error) {
	var out []User
	err := s.d.Do(ctx, http.MethodGet, condoPath(condoID, "/users/pending"), nil, &out)
	return out, err
}

// Approve activates a pending membership, optionally binding a unit.
func (s *UserService) Approve(ctx context.Context, condoID, userID int64, unitID *int64) error {
	body := map[string]any{}
	if unitID != nil {
		body["unitId"] = *unitID
	}
	return s.d.Do(ctx, http.MethodPatch, condoPath(condoID, "/users/%d/approve", userID), body, nil)
}

func (s *UserService) Reject(ctx context.Context, condoID, userID int64) error {
	return s.d.Do(ctx, http.MethodPost, condoPath(condoID, "/users/%d/reject", userID), nil, nil)
}

// ListAll lists every platform user. Platform admins only.
func (s *UserService) ListAll(ctx context.Context, p PageRequest) (Page[User], error) {
	var out Page[User]
	err := s.d.Do(ctx, http.MethodGet, withQuery("/admin/users", p.values()), nil, &out)
	return out, err
}
