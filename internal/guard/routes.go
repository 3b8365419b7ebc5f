package guard

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/CjlConsultoria/convivium2/internal/auth"
)

// Meta is the access policy declared by a route.
type Meta struct {
	Name           string
	Public         bool
	RequiresAdmin  bool
	DisabledModule bool
	Roles          []auth.Role
	// MineOnly screens list only the caller's own records.
	MineOnly bool
}

// Route binds a path pattern ("/c/{condoId}/users") to its policy.
type Route struct {
	Pattern string
	Meta    Meta
}

const (
	paramCondo = "condoId"
	homeRoute  = "Home"
	notFound   = "NotFound"
)

func staff() []auth.Role { return append([]auth.Role(nil), auth.StaffRoles...) }

// DefaultRoutes is the application's screen table.
func DefaultRoutes() []Route {
	return []Route{
		{"/", Meta{Name: homeRoute}},
		{"/login", Meta{Name: "Login", Public: true}},
		{"/register", Meta{Name: "Register", Public: true}},
		{"/register-google", Meta{Name: "RegisterGoogle", Public: true}},
		{"/forgot-password", Meta{Name: "ForgotPassword", Public: true}},
		{"/reset-password", Meta{Name: "ResetPassword", Public: true}},
		{"/profile", Meta{Name: "Profile"}},

		{"/admin", Meta{Name: "AdminDashboard", RequiresAdmin: true}},
		{"/admin/condominiums", Meta{Name: "AdminCondominiumList", RequiresAdmin: true}},
		{"/admin/condominiums/new", Meta{Name: "AdminCondominiumCreate", RequiresAdmin: true}},
		{"/admin/condominiums/{id}", Meta{Name: "AdminCondominiumDetail", RequiresAdmin: true}},
		{"/admin/users", Meta{Name: "AdminUsers", RequiresAdmin: true}},
		{"/admin/subscriptions", Meta{Name: "AdminSubscriptions", RequiresAdmin: true}},
		{"/admin/plans", Meta{Name: "AdminPlans", RequiresAdmin: true}},
		{"/admin/audit-logs", Meta{Name: "AdminAuditLogs", RequiresAdmin: true}},
		{"/admin/settings", Meta{Name: "AdminSettings", RequiresAdmin: true}},

		{"/c/{condoId}", Meta{Name: "Dashboard"}},
		{"/c/{condoId}/buildings", Meta{Name: "BuildingList", Roles: staff()}},
		{"/c/{condoId}/users", Meta{Name: "UserList", Roles: staff()}},
		{"/c/{condoId}/users/new", Meta{Name: "UserCreate", Roles: staff()}},
		{"/c/{condoId}/users/{userId}", Meta{Name: "UserDetail", Roles: staff()}},
		{"/c/{condoId}/complaints", Meta{Name: "ComplaintList", Roles: staff()}},
		{"/c/{condoId}/complaints/new", Meta{Name: "ComplaintCreate"}},
		{"/c/{condoId}/complaints/my", Meta{Name: "MyComplaints", MineOnly: true}},
		{"/c/{condoId}/complaints/{complaintId}", Meta{Name: "ComplaintDetail"}},
		{"/c/{condoId}/parcels", Meta{Name: "ParcelList", Roles: staff()}},
		{"/c/{condoId}/parcels/my", Meta{Name: "MyParcels", MineOnly: true}},
		{"/c/{condoId}/parcels/receive", Meta{Name: "ParcelReceive", Roles: staff()}},
		{"/c/{condoId}/parcels/{parcelId}", Meta{Name: "ParcelDetail"}},
		{"/c/{condoId}/announcements", Meta{Name: "AnnouncementList"}},
		{"/c/{condoId}/announcements/new", Meta{Name: "AnnouncementCreate", Roles: staff()}},
		{"/c/{condoId}/announcements/{announcementId}", Meta{Name: "AnnouncementDetail"}},
		{"/c/{condoId}/bookings", Meta{Name: "BookingCalendar", DisabledModule: true}},
		{"/c/{condoId}/visitors", Meta{Name: "VisitorList"}},
		{"/c/{condoId}/maintenance", Meta{Name: "MaintenanceList"}},
		{"/c/{condoId}/financial", Meta{Name: "FinancialDashboard", Roles: []auth.Role{auth.RoleSindico}}},
		{"/c/{condoId}/documents", Meta{Name: "DocumentList", Roles: staff()}},
		{"/c/{condoId}/settings", Meta{Name: "CondoSettings", Roles: staff()}},

		{"/*", Meta{Name: notFound, Public: true}},
	}
}

// Table resolves paths to route policies using chi's routing tree.
type Table struct {
	mux  *chi.Mux
	meta map[string]Meta
}

func NewTable(routes []Route) *Table {
	t := &Table{mux: chi.NewMux(), meta: make(map[string]Meta, len(routes))}
	noop := func(http.ResponseWriter, *http.Request) {}
	for _, r := range routes {
		t.mux.Get(r.Pattern, noop)
		t.meta[r.Pattern] = r.Meta
	}
	return t
}

// Resolve builds the navigation target for rawPath, which may carry a query.
// Unknown paths resolve to the public not-found screen.
func (t *Table) Resolve(rawPath string) Target {
	path, fullPath := rawPath, rawPath
	if u, err := url.Parse(rawPath); err == nil {
		path = u.Path
	}
	if path == "" {
		path = "/"
	}
	target := Target{Path: path, FullPath: fullPath, Meta: Meta{Name: notFound, Public: true}}

	rctx := chi.NewRouteContext()
	if !t.mux.Match(rctx, http.MethodGet, path) || len(rctx.RoutePatterns) == 0 {
		return target
	}
	pattern := rctx.RoutePatterns[len(rctx.RoutePatterns)-1]
	meta, ok := t.meta[pattern]
	if !ok {
		return target
	}
	target.Pattern = pattern
	target.Meta = meta
	if len(rctx.URLParams.Keys) > 0 {
		target.Params = make(map[string]string, len(rctx.URLParams.Keys))
		for i, k := range rctx.URLParams.Keys {
			if k == "*" {
				continue
			}
			target.Params[k] = rctx.URLParams.Values[i]
		}
	}
	return target
}

// Patterns lists the registered patterns in table order.
func Patterns(routes []Route) []string {
	out := make([]string, 0, len(routes))
	for _, r := range routes {
		out = append(out, r.Pattern)
	}
	return out
}
