// Package mockapi is an in-process stand-in for the platform backend. It
// serves the REST envelope, issues short-lived access tokens with rotating
// refresh tokens and enforces tenant suspension, so the client core can be
// exercised end to end without the real service.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CjlConsultoria/convivium2/internal/api"
	"github.com/CjlConsultoria/convivium2/internal/audit"
	"github.com/CjlConsultoria/convivium2/internal/auth"
	"github.com/CjlConsultoria/convivium2/internal/ids"
	"github.com/CjlConsultoria/convivium2/internal/obs"
)

// BasePath prefixes every API route.
const BasePath = "/api/v1"

const defaultAccessTTL = 15 * time.Minute

type account struct {
	info         auth.UserInfo
	passwordHash string
}

type Server struct {
	signer       signer
	refreshDelay time.Duration
	metrics      *obs.HTTPMetrics
	limiter      *ipLimiter
	mux          *http.ServeMux

	mu            sync.Mutex
	accounts      map[int64]*account
	byEmail       map[string]int64
	nextUserID    int64
	access        map[string]int64
	refresh       map[string]int64
	condos        map[int64]*api.Condominium
	condoOrder    []int64
	complaints    []api.Complaint
	parcels       []api.Parcel
	notifications map[int64][]api.Notification

	refreshCalls atomic.Int64
}

type Option func(*Server) error

// WithSecret sets the HS256 signing key.
func WithSecret(secret []byte) Option {
	return func(s *Server) error {
		if len(secret) == 0 {
			return errors.New("mockapi: secret is empty")
		}
		s.signer.secret = secret
		return nil
	}
}

func WithAccessTTL(d time.Duration) Option {
	return func(s *Server) error {
		if d <= 0 {
			return errors.New("mockapi: access ttl must be positive")
		}
		s.signer.ttl = d
		return nil
	}
}

// WithRefreshDelay holds every refresh call for d before answering.
func WithRefreshDelay(d time.Duration) Option {
	return func(s *Server) error {
		s.refreshDelay = d
		return nil
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) error {
		if now == nil {
			return errors.New("mockapi: clock is nil")
		}
		s.signer.now = now
		return nil
	}
}

// WithRateLimit caps requests per client IP.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) error {
		if perSecond <= 0 || burst <= 0 {
			return errors.New("mockapi: rate limit must be positive")
		}
		s.limiter = newIPLimiter(perSecond, burst)
		return nil
	}
}

func WithMetrics(m *obs.HTTPMetrics) Option {
	return func(s *Server) error {
		s.metrics = m
		return nil
	}
}

// New seeds the fixture and builds the route table.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		signer:        signer{secret: []byte(uuid.NewString()), ttl: defaultAccessTTL, now: time.Now},
		accounts:      make(map[int64]*account),
		byEmail:       make(map[string]int64),
		access:        make(map[string]int64),
		refresh:       make(map[string]int64),
		condos:        make(map[int64]*api.Condominium),
		notifications: make(map[int64][]api.Notification),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	hash, err := hashPassword(SeedPassword)
	if err != nil {
		return nil, err
	}
	for _, u := range seedUsers() {
		u.UUID = uuid.New()
		s.accounts[u.ID] = &account{info: u, passwordHash: hash}
		s.byEmail[u.Email] = u.ID
		s.notifications[u.ID] = seedNotifications(u.ID)
		if u.ID >= s.nextUserID {
			s.nextUserID = u.ID + 1
		}
	}
	for _, c := range seedCondominiums() {
		s.condos[c.ID] = &c
		s.condoOrder = append(s.condoOrder, c.ID)
	}
	s.complaints = seedComplaints()
	s.parcels = seedParcels()

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux = http.NewServeMux()
	p := func(method, path string) string { return method + " " + BasePath + path }

	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": "convivium-mock"})
	})
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	s.mux.HandleFunc(p(http.MethodPost, "/auth/login"), s.handleLogin)
	s.mux.HandleFunc(p(http.MethodPost, "/auth/refresh"), s.handleRefresh)
	s.mux.HandleFunc(p(http.MethodPost, "/auth/register"), s.handleRegister)
	s.mux.HandleFunc(p(http.MethodGet, "/auth/condominiums"), s.handleRegistrationCondos)
	s.mux.Handle(p(http.MethodGet, "/auth/me"), s.authed(s.handleMe))
	s.mux.Handle(p(http.MethodPatch, "/auth/me"), s.authed(s.handleUpdateMe))

	s.mux.Handle(p(http.MethodGet, "/admin/condominiums"), s.authed(s.adminOnly(s.handleAdminCondos)))

	s.mux.Handle(p(http.MethodGet, "/condos/{condoId}"), s.authed(s.tenant(s.handleCondoSummary)))
	s.mux.Handle(p(http.MethodGet, "/condos/{condoId}/complaints"), s.authed(s.tenant(s.handleComplaints)))
	s.mux.Handle(p(http.MethodGet, "/condos/{condoId}/complaints/mine"), s.authed(s.tenant(s.handleMyComplaints)))
	s.mux.Handle(p(http.MethodGet, "/condos/{condoId}/parcels"), s.authed(s.tenant(s.handleParcels)))
	s.mux.Handle(p(http.MethodGet, "/condos/{condoId}/parcels/mine"), s.authed(s.tenant(s.handleMyParcels)))

	s.mux.Handle(p(http.MethodGet, "/notifications"), s.authed(s.handleNotifications))
	s.mux.Handle(p(http.MethodGet, "/notifications/unread-count"), s.authed(s.handleUnreadCount))
	s.mux.Handle(p(http.MethodPatch, "/notifications/read-all"), s.authed(s.handleReadAll))
	s.mux.Handle(p(http.MethodPatch, "/notifications/{id}/read"), s.authed(s.handleRead))

	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Recurso não encontrado", "NOT_FOUND")
	})
}

// Handler wraps the routes with request ids, access logging and metrics.
func (s *Server) Handler() http.Handler {
	return requestID(logging(s.metrics.Instrument(s.limiter.wrap(s.mux))))
}

// RefreshCalls counts refresh requests received, successful or not.
func (s *Server) RefreshCalls() int64 { return s.refreshCalls.Load() }

// RevokeAccessTokens invalidates every issued access token, as if all of
// them had expired. Refresh tokens stay valid.
func (s *Server) RevokeAccessTokens() {
	s.mu.Lock()
	s.access = make(map[string]int64)
	s.mu.Unlock()
}

// RevokeRefreshTokens invalidates every refresh token.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	s.refresh = make(map[string]int64)
	s.mu.Unlock()
}

// SetCondominiumStatus changes a seeded condominium's status.
func (s *Server) SetCondominiumStatus(id int64, status api.CondominiumStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.condos[id]
	if !ok {
		return fmt.Errorf("mockapi: condominium %d not found", id)
	}
	c.Status = status
	return nil
}

// issue mints an access token and a fresh refresh token for userID.
// Callers hold s.mu.
func (s *Server) issue(userID int64, email string) (access, refresh string, err error) {
	access, err = s.signer.mint(userID, email)
	if err != nil {
		return "", "", err
	}
	refresh = "rt_" + ids.New()
	s.access[access] = userID
	s.refresh[refresh] = userID
	return access, refresh, nil
}

func (s *Server) expiresIn() int64 { return int64(s.signer.ttl / time.Second) }

type userKey struct{}

// authed resolves the bearer token to a live account.
func (s *Server) authed(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, err.Error(), "UNAUTHORIZED")
			return
		}
		userID, err := s.signer.verify(token)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "invalid token", "INVALID_TOKEN")
			return
		}
		s.mu.Lock()
		live := s.access[token] == userID
		acct := s.accounts[userID]
		var info *auth.UserInfo
		if acct != nil {
			info = acct.info.Clone()
		}
		s.mu.Unlock()
		if !live || info == nil {
			writeError(w, r, http.StatusUnauthorized, "token expired", "TOKEN_EXPIRED")
			return
		}
		ctx := auth.ContextWithUser(r.Context(), info)
		ctx = context.WithValue(ctx, userKey{}, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentUser(r *http.Request) *auth.UserInfo {
	u, _ := r.Context().Value(userKey{}).(*auth.UserInfo)
	return u
}

func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if u := currentUser(r); u == nil || !u.IsPlatformAdmin {
			writeError(w, r, http.StatusForbidden, "Acesso negado", "FORBIDDEN")
			return
		}
		next(w, r)
	}
}

type condoKey struct{}

// tenant blocks suspended condominiums for everyone but platform admins and
// requires an ACTIVE membership in the path's condominium.
func (s *Server) tenant(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(r.PathValue("condoId"))
		if !ok {
			writeError(w, r, http.StatusBadRequest, "invalid condominium id", "BAD_REQUEST")
			return
		}
		user := currentUser(r)
		s.mu.Lock()
		condo, found := s.condos[id]
		var status api.CondominiumStatus
		if found {
			status = condo.Status
		}
		s.mu.Unlock()
		if !found {
			writeError(w, r, http.StatusNotFound, "Condomínio não encontrado", "NOT_FOUND")
			return
		}
		if user.IsPlatformAdmin {
			next(w, r.WithContext(context.WithValue(r.Context(), condoKey{}, id)))
			return
		}
		if status == api.CondominiumSuspended {
			writeSuspended(w)
			return
		}
		if !auth.ActiveIn(user, id) {
			obs.Logger().Warn("cross-tenant access denied",
				zap.Int64("user_id", user.ID), zap.Int64("condominium_id", id))
			writeError(w, r, http.StatusForbidden, "Access denied to this condominium", "FORBIDDEN")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), condoKey{}, id)))
	}
}

func condoFrom(r *http.Request) int64 {
	id, _ := r.Context().Value(condoKey{}).(int64)
	return id
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if !ids.Valid(rid) {
			rid = ids.New()
		}
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r.WithContext(audit.WithRequestID(r.Context(), rid)))
	})
}

func logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &obs.StatusWriter{ResponseWriter: w, Code: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		obs.Logger().Debug("mock request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.Code),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", audit.RequestIDFromContext(r.Context())),
		)
	})
}
