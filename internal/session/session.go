// Package session owns the signed-in identity: login flows, logout, token
// renewal, identity loading and the role and permission checks scoped to
// the selected condominium.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/CjlConsultoria/convivium2/internal/api"
	"github.com/CjlConsultoria/convivium2/internal/audit"
	"github.com/CjlConsultoria/convivium2/internal/auth"
	"github.com/CjlConsultoria/convivium2/internal/gateway"
	"github.com/CjlConsultoria/convivium2/internal/obs"
)

const defaultApprovalMessage = "Aguardando aprovação do síndico."

var ErrNotAuthenticated = errors.New("session: not authenticated")

// AuthAPI is the subset of the auth endpoints the session drives.
// *api.AuthService implements it.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (api.LoginResponse, error)
	GoogleLogin(ctx context.Context, idToken string) (api.GoogleAuthResponse, error)
	RegisterGoogle(ctx context.Context, req api.RegisterGoogleRequest) (api.RegisterGoogleResponse, error)
	Me(ctx context.Context) (*auth.UserInfo, error)
	UpdateMe(ctx context.Context, upd api.ProfileUpdate) (*auth.UserInfo, error)
}

// Refresher runs the single-flight token refresh. *gateway.Gateway
// implements it.
type Refresher interface {
	Refresh(ctx context.Context) (gateway.RefreshResult, error)
	OnSessionEnd(fn func(context.Context))
}

// Credentials is the persisted token pair. *storage.Credentials implements it.
type Credentials interface {
	gateway.TokenStore
	Hydrate(ctx context.Context) (bool, error)
}

// Tenants exposes the selected condominium. *tenant.Store implements it.
type Tenants interface {
	CurrentCondominiumID() int64
	ClearCondominium(ctx context.Context) error
}

type Option func(*Store)

// WithLogoutHook runs fn whenever the session ends, after state is cleared.
func WithLogoutHook(fn func(context.Context)) Option {
	return func(s *Store) {
		if fn != nil {
			s.hooks = append(s.hooks, fn)
		}
	}
}

// GoogleResult reports whether a Google sign-in still needs registration.
// Profile hints are set only when it does.
type GoogleResult struct {
	NeedsRegistration bool
	Email             string
	Name              string
	Picture           string
}

// RegistrationResult reports whether a Google registration awaits approval.
type RegistrationResult struct {
	NeedsApproval bool
	Message       string
}

// Store is safe for concurrent use.
type Store struct {
	refresher Refresher
	authAPI   AuthAPI
	creds     Credentials
	tenants   Tenants
	nav       gateway.Navigator
	hooks     []func(context.Context)

	init singleflight.Group

	mu      sync.RWMutex
	user    *auth.UserInfo
	loading int
}

func New(refresher Refresher, authAPI AuthAPI, creds Credentials, tenants Tenants, nav gateway.Navigator, opts ...Option) *Store {
	if nav == nil {
		nav = gateway.NavigatorFunc(func(string) {})
	}
	s := &Store{
		refresher: refresher,
		authAPI:   authAPI,
		creds:     creds,
		tenants:   tenants,
		nav:       nav,
	}
	for _, opt := range opts {
		opt(s)
	}
	refresher.OnSessionEnd(s.sessionEnded)
	return s
}

// Login establishes a session. API errors are returned untouched.
func (s *Store) Login(ctx context.Context, email, password string) error {
	defer s.track()()
	res, err := s.authAPI.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return err
	}
	user := res.User
	return s.establish(ctx, res.AccessToken, res.RefreshToken, &user, "password")
}

// LoginWithGoogle either reports that registration is needed, carrying the
// profile hints, or signs the user in.
func (s *Store) LoginWithGoogle(ctx context.Context, idToken string) (GoogleResult, error) {
	defer s.track()()
	res, err := s.authAPI.GoogleLogin(ctx, idToken)
	if err != nil {
		return GoogleResult{}, err
	}
	if res.NeedsRegistration {
		return GoogleResult{
			NeedsRegistration: true,
			Email:             res.Email,
			Name:              res.Name,
			Picture:           res.Picture,
		}, nil
	}
	if res.AccessToken != "" && res.RefreshToken != "" {
		if err := s.establish(ctx, res.AccessToken, res.RefreshToken, res.User, "google"); err != nil {
			return GoogleResult{}, err
		}
	}
	return GoogleResult{}, nil
}

// CompleteGoogleRegistration finishes a Google sign-up. A pending approval
// leaves the user signed out.
func (s *Store) CompleteGoogleRegistration(ctx context.Context, req api.RegisterGoogleRequest) (RegistrationResult, error) {
	defer s.track()()
	res, err := s.authAPI.RegisterGoogle(ctx, req)
	if err != nil {
		return RegistrationResult{}, err
	}
	_ = audit.LogEvent(ctx, "session.google.registration", map[string]any{
		"condominium_id": req.CondominiumID,
		"needs_approval": res.NeedsApproval,
	})
	if res.NeedsApproval {
		msg := res.Message
		if msg == "" {
			msg = defaultApprovalMessage
		}
		return RegistrationResult{NeedsApproval: true, Message: msg}, nil
	}
	if l := res.Login; l != nil && l.AccessToken != "" && l.RefreshToken != "" {
		user := l.User
		if err := s.establish(ctx, l.AccessToken, l.RefreshToken, &user, "google_registration"); err != nil {
			return RegistrationResult{}, err
		}
	}
	return RegistrationResult{}, nil
}

func (s *Store) establish(ctx context.Context, access, refresh string, user *auth.UserInfo, method string) error {
	if err := s.creds.SetTokens(ctx, access, refresh); err != nil {
		return err
	}
	s.setUser(user)
	fields := map[string]any{"method": method}
	_ = audit.LogEvent(auth.ContextWithUser(ctx, user), "session.login", fields)
	return nil
}

// Logout clears the identity, tokens and tenant selection, then navigates to
// the login screen. It never fails; storage errors are logged.
func (s *Store) Logout(ctx context.Context) {
	user := s.User()
	if err := s.creds.Clear(ctx); err != nil {
		obs.Logger().Warn("clear credentials", zap.Error(err))
	}
	s.teardown(ctx)
	_ = audit.LogEvent(auth.ContextWithUser(ctx, user), "session.logout", map[string]any{"reason": "logout"})
	s.nav.Navigate(gateway.PathLogin)
}

// sessionEnded runs after the gateway has cleared tokens and navigated.
func (s *Store) sessionEnded(ctx context.Context) {
	user := s.User()
	s.teardown(ctx)
	_ = audit.LogEvent(auth.ContextWithUser(ctx, user), "session.logout", map[string]any{"reason": "session_ended"})
}

func (s *Store) teardown(ctx context.Context) {
	s.setUser(nil)
	if s.tenants != nil {
		if err := s.tenants.ClearCondominium(ctx); err != nil {
			obs.Logger().Warn("clear condominium", zap.Error(err))
		}
	}
	for _, fn := range s.hooks {
		fn(ctx)
	}
}

// RefreshAccessToken renews the tokens now. Any failure ends the session.
func (s *Store) RefreshAccessToken(ctx context.Context) error {
	if s.creds.RefreshToken() == "" {
		s.Logout(ctx)
		return ErrNotAuthenticated
	}
	res, err := s.refresher.Refresh(ctx)
	if err != nil {
		_ = audit.LogEvent(ctx, "session.refresh.failed", map[string]any{"error": err.Error()})
		s.Logout(ctx)
		return err
	}
	if res.User != nil {
		s.setUser(res.User)
	}
	return nil
}

// FetchUser reloads the identity. Any failure ends the session so no stale
// identity survives.
func (s *Store) FetchUser(ctx context.Context) error {
	defer s.track()()
	user, err := s.authAPI.Me(ctx)
	if err != nil {
		s.Logout(ctx)
		return err
	}
	s.setUser(user)
	return nil
}

// Initialize restores a persisted session on cold start. It is a no-op once
// an identity is loaded, and concurrent calls share one load.
func (s *Store) Initialize(ctx context.Context) error {
	if s.User() != nil {
		return nil
	}
	_, err, _ := s.init.Do("initialize", func() (any, error) {
		if s.User() != nil {
			return nil, nil
		}
		ok, err := s.creds.Hydrate(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		return nil, s.FetchUser(ctx)
	})
	return err
}

// UpdateMyProfile patches the caller's profile and adopts the returned identity.
func (s *Store) UpdateMyProfile(ctx context.Context, upd api.ProfileUpdate) error {
	user, err := s.authAPI.UpdateMe(ctx, upd)
	if err != nil {
		return err
	}
	if user != nil {
		s.setUser(user)
	}
	return nil
}

// IsAuthenticated is true while an access token is held, including the window
// before the identity has been fetched.
func (s *Store) IsAuthenticated() bool { return s.creds.AccessToken() != "" }

func (s *Store) IsPlatformAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsPlatformAdmin
}

// User returns a copy of the loaded identity, or nil.
func (s *Store) User() *auth.UserInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// Principal views the identity through the selected condominium.
func (s *Store) Principal() auth.Principal {
	return auth.NewPrincipal(s.User(), s.currentCondo())
}

// HasRole checks for an ACTIVE membership with role in the selected condominium.
func (s *Store) HasRole(role auth.Role) bool { return s.Principal().HasRole(role) }

// HasRoleIn checks for an ACTIVE membership with role in condoID.
func (s *Store) HasRoleIn(condoID int64, role auth.Role) bool {
	return auth.NewPrincipal(s.User(), condoID).HasRole(role)
}

// HasPermission is always true for platform admins.
func (s *Store) HasPermission(perm string) bool { return s.Principal().HasPermission(perm) }

// CurrentRoles lists ACTIVE memberships in the selected condominium.
func (s *Store) CurrentRoles() []auth.Membership { return s.Principal().ActiveRoles() }

func (s *Store) FirstActiveMembership() (auth.Membership, bool) {
	return auth.FirstActive(s.User())
}

func (s *Store) currentCondo() int64 {
	if s.tenants == nil {
		return 0
	}
	return s.tenants.CurrentCondominiumID()
}

func (s *Store) setUser(u *auth.UserInfo) {
	u = u.Clone()
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

func (s *Store) track() func() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.loading--
		s.mu.Unlock()
	}
}
