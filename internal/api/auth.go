package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/CjlConsultoria/convivium2/internal/auth"
	"github.com/CjlConsultoria/convivium2/internal/gateway"
)

type LoginResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	ExpiresIn    int64         `json:"expiresIn"`
	User         auth.UserInfo `json:"user"`
}

type GoogleAuthResponse struct {
	NeedsRegistration bool           `json:"needsRegistration"`
	Email             string         `json:"email,omitempty"`
	Name              string         `json:"name,omitempty"`
	Picture           string         `json:"picture,omitempty"`
	AccessToken       string         `json:"accessToken,omitempty"`
	RefreshToken      string         `json:"refreshToken,omitempty"`
	ExpiresIn         int64          `json:"expiresIn,omitempty"`
	User              *auth.UserInfo `json:"user,omitempty"`
}

type RegisterGoogleRequest struct {
	IDToken       string `json:"idToken"`
	CondominiumID int64  `json:"condominiumId"`
	UnitID        int64  `json:"unitId"`
	Phone         string `json:"phone,omitempty"`
}

type RegisterGoogleResponse struct {
	NeedsApproval bool           `json:"needsApproval"`
	Message       string         `json:"message,omitempty"`
	Login         *LoginResponse `json:"login,omitempty"`
}

type RegisterRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	CPF           string `json:"cpf"`
	Phone         string `json:"phone"`
	CondominiumID int64  `json:"condominiumId"`
	UnitID        int64  `json:"unitId"`
}

// ProfileUpdate changes the caller's own profile. Nil fields are left as is.
type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type CondominiumOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type UnitOption struct {
	ID           int64   `json:"id"`
	Identifier   string  `json:"identifier"`
	BuildingName *string `json:"buildingName"`
}

type PendingRegistrationStatus struct {
	HasPendingApproval bool   `json:"hasPendingApproval"`
	Message            string `json:"message,omitempty"`
	CondominiumName    string `json:"condominiumName,omitempty"`
}

type AuthService struct{ d Doer }

func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var out LoginResponse
	err := s.d.Do(ctx, http.MethodPost, "/auth/login",
		map[string]string{"email": email, "password": password}, &out, gateway.SkipRenewal())
	return out, err
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) error {
	return s.d.Do(ctx, http.MethodPost, "/auth/register", req, nil, gateway.SkipRenewal())
}

func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (GoogleAuthResponse, error) {
	var out GoogleAuthResponse
	err := s.d.Do(ctx, http.MethodPost, "/auth/google",
		map[string]string{"idToken": idToken}, &out, gateway.SkipRenewal())
	return out, err
}

func (s *AuthService) RegisterGoogle(ctx context.Context, req RegisterGoogleRequest) (RegisterGoogleResponse, error) {
	var out RegisterGoogleResponse
	err := s.d.Do(ctx, http.MethodPost, "/auth/register-google", req, &out, gateway.SkipRenewal())
	return out, err
}

func (s *AuthService) CheckPendingRegistration(ctx context.Context, idToken string) (PendingRegistrationStatus, error) {
	var out PendingRegistrationStatus
	err := s.d.Do(ctx, http.MethodPost, "/auth/check-pending-registration",
		map[string]string{"idToken": idToken}, &out, gateway.SkipRenewal())
	return out, err
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	return s.d.Do(ctx, http.MethodPost, "/auth/forgot-password",
		map[string]string{"email": email}, nil, gateway.SkipRenewal())
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return s.d.Do(ctx, http.MethodPost, "/auth/reset-password",
		map[string]string{"token": token, "newPassword": newPassword}, nil, gateway.SkipRenewal())
}

func (s *AuthService) Me(ctx context.Context) (*auth.UserInfo, error) {
	var out auth.UserInfo
	if err := s.d.Do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AuthService) UpdateMe(ctx context.Context, upd ProfileUpdate) (*auth.UserInfo, error) {
	var out *auth.UserInfo
	if err := s.d.Do(ctx, http.MethodPatch, "/auth/me", upd, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AuthService) CondominiumsForRegistration(ctx context.Context) ([]CondominiumOption, error) {
	var out []CondominiumOption
	err := s.d.Do(ctx, http.MethodGet, "/auth/condominiums", nil, &out, gateway.SkipRenewal())
	return out, err
}

func (s *AuthService) UnitsForRegistration(ctx context.Context, condoID int64) ([]UnitOption, error) {
	var out []UnitOption
	err := s.d.Do(ctx, http.MethodGet, fmt.Sprintf("/auth/condominiums/%d/units", condoID), nil, &out, gateway.SkipRenewal())
	return out, err
}
