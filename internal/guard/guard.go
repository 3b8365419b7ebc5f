// Package guard decides, per attempted navigation, whether the user may
// enter a screen or where to send them instead.
package guard

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/CjlConsultoria/convivium2/internal/auth"
	"github.com/CjlConsultoria/convivium2/internal/obs"
)

const (
	pathLogin   = "/login"
	pathProfile = "/profile"
	pathAdmin   = "/admin"
)

// Session is the identity view the guard needs. *session.Store implements it.
type Session interface {
	IsAuthenticated() bool
	User() *auth.UserInfo
	Initialize(ctx context.Context) error
}

// Tenants is the condominium selection. *tenant.Store implements it.
type Tenants interface {
	CurrentCondominiumID() int64
	SetCondominium(ctx context.Context, id int64) error
}

// Target is an attempted navigation.
type Target struct {
	Path     string
	FullPath string
	Pattern  string
	Params   map[string]string
	Meta     Meta
}

// Decision is the outcome of Authorize. A denied navigation always carries
// a redirect path.
type Decision struct {
	Allow bool
	Path  string
	Query url.Values
	// Rule is the 1-based step of the decision procedure that decided.
	Rule int
}

// Location renders a redirect as a path with query, or "" when allowed.
func (d Decision) Location() string {
	if d.Allow {
		return ""
	}
	if len(d.Query) == 0 {
		return d.Path
	}
	return d.Path + "?" + d.Query.Encode()
}

type Option func(*Authorizer)

// WithRoutes replaces the default route table.
func WithRoutes(routes []Route) Option {
	return func(a *Authorizer) { a.table = NewTable(routes) }
}

type Authorizer struct {
	session Session
	tenants Tenants
	table   *Table
}

func New(session Session, tenants Tenants, opts ...Option) *Authorizer {
	a := &Authorizer{session: session, tenants: tenants}
	for _, opt := range opts {
		opt(a)
	}
	if a.table == nil {
		a.table = NewTable(DefaultRoutes())
	}
	return a
}

// Resolve maps a raw path onto the route table.
func (a *Authorizer) Resolve(rawPath string) Target { return a.table.Resolve(rawPath) }

// Navigate resolves rawPath and authorizes it. The root path redirects to the
// login screen or the admin home depending on whether a token is held.
func (a *Authorizer) Navigate(ctx context.Context, rawPath string) Decision {
	t := a.Resolve(rawPath)
	if t.Meta.Name == homeRoute {
		if !a.session.IsAuthenticated() {
			return Decision{Path: pathLogin}
		}
		t = a.Resolve(pathAdmin)
	}
	return a.Authorize(ctx, t)
}

// Authorize runs the decision procedure; the first matching rule wins.
func (a *Authorizer) Authorize(ctx context.Context, t Target) Decision {
	// 1. public screens
	if t.Meta.Public {
		return allow(1)
	}
	// 2. no token
	if !a.session.IsAuthenticated() {
		return loginRedirect(t, 2)
	}
	// 3. token but identity not loaded yet
	user := a.session.User()
	if user == nil {
		if err := a.session.Initialize(ctx); err != nil {
			obs.Logger().Debug("initialize during navigation", zap.Error(err))
		}
		if !a.session.IsAuthenticated() {
			return loginRedirect(t, 3)
		}
		user = a.session.User()
	}
	admin := user != nil && user.IsPlatformAdmin

	rawCondo, tenantScoped := t.Params[paramCondo]
	condoID, validCondo := parseCondoID(rawCondo)
	if tenantScoped && strings.Contains(t.Path, "undefined") {
		validCondo = false
	}

	// 4. platform screens
	if t.Meta.RequiresAdmin && !admin {
		return fallback(user, 4)
	}
	// 5. module withdrawn platform-wide
	if t.Meta.DisabledModule && tenantScoped && validCondo {
		return Decision{Path: dashboard(condoID), Rule: 5}
	}
	// 6. role-restricted screens, checked against the route's condominium
	if len(t.Meta.Roles) > 0 && !admin {
		scope := a.currentCondo()
		if validCondo {
			scope = condoID
		}
		p := auth.NewPrincipal(user, scope)
		granted := false
		for _, r := range t.Meta.Roles {
			if p.HasRole(r) {
				granted = true
				break
			}
		}
		if !granted {
			return fallback(user, 6)
		}
	}
	// 7. unresolved condominium id
	if tenantScoped && !validCondo {
		if admin {
			return Decision{Path: pathAdmin, Rule: 7}
		}
		return fallback(user, 7)
	}
	// 8. membership must be ACTIVE in that exact condominium
	if tenantScoped && !admin && !auth.ActiveIn(user, condoID) {
		return Decision{Path: pathLogin, Query: url.Values{"message": {"pending"}}, Rule: 8}
	}
	// 9.
	if tenantScoped && a.tenants != nil && a.tenants.CurrentCondominiumID() != condoID {
		if err := a.tenants.SetCondominium(ctx, condoID); err != nil {
			obs.Logger().Warn("select condominium", zap.Int64("condominium_id", condoID), zap.Error(err))
		}
	}
	return allow(9)
}

func (a *Authorizer) currentCondo() int64 {
	if a.tenants == nil {
		return 0
	}
	return a.tenants.CurrentCondominiumID()
}

func allow(rule int) Decision { return Decision{Allow: true, Rule: rule} }

// loginRedirect keeps the intended destination as a return target unless it
// is malformed or is the profile screen.
func loginRedirect(t Target, rule int) Decision {
	d := Decision{Path: pathLogin, Rule: rule}
	dest := t.FullPath
	if dest == "" {
		dest = t.Path
	}
	if dest != "" && !malformed(dest) && t.Path != pathProfile {
		d.Query = url.Values{"redirect": {dest}}
	}
	return d
}

// fallback sends the user to the first ACTIVE membership's dashboard, or to
// the profile screen when there is none.
func fallback(user *auth.UserInfo, rule int) Decision {
	if m, ok := auth.FirstActive(user); ok {
		return Decision{Path: dashboard(m.CondominiumID), Rule: rule}
	}
	return Decision{Path: pathProfile, Rule: rule}
}

func dashboard(condoID int64) string { return "/c/" + strconv.FormatInt(condoID, 10) }

// malformed reports an unresolved placeholder left in a path.
func malformed(path string) bool {
	if strings.Contains(path, "undefined") || strings.Contains(path, "{") {
		return true
	}
	for _, seg := range strings.Split(path, "/") {
		if strings.HasPrefix(seg, ":") {
			return true
		}
	}
	return false
}

func parseCondoID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
