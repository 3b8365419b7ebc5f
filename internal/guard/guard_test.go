package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CjlConsultoria/convivium2/internal/auth"
)

type fakeSession struct {
	token     bool
	user      *auth.UserInfo
	loaded    *auth.UserInfo
	initCalls int
	initErr   error
}

func (f *fakeSession) IsAuthenticated() bool { return f.token }
func (f *fakeSession) User() *auth.UserInfo  { return f.user }
func (f *fakeSession) Initialize(context.Context) error {
	f.initCalls++
	if f.initErr != nil {
		f.token = false
		return f.initErr
	}
	f.user = f.loaded
	return nil
}

type fakeTenants struct {
	current int64
	sets    []int64
	err     error
}

func (f *fakeTenants) CurrentCondominiumID() int64 { return f.current }
func (f *fakeTenants) SetCondominium(_ context.Context, id int64) error {
	f.sets = append(f.sets, id)
	if f.err != nil {
		return f.err
	}
	f.current = id
	return nil
}

func member(condo int64, role auth.Role, status auth.MembershipStatus) auth.Membership {
	return auth.Membership{CondominiumID: condo, Role: role, Status: status}
}

func signedIn(roles ...auth.Membership) *fakeSession {
	return &fakeSession{token: true, user: &auth.UserInfo{ID: 1, CondominiumRoles: roles}}
}

func TestPublicRoutesAlwaysAllowed(t *testing.T) {
	a := New(&fakeSession{}, &fakeTenants{})
	for _, p := range []string{"/login", "/register", "/forgot-password", "/nowhere/at/all"} {
		d := a.Navigate(context.Background(), p)
		require.True(t, d.Allow, p)
		require.Equal(t, 1, d.Rule, p)
	}
}

func TestUnauthenticatedRedirectsWithReturnTarget(t *testing.T) {
	a := New(&fakeSession{}, &fakeTenants{})

	d := a.Navigate(context.Background(), "/c/5/parcels?page=2")
	require.False(t, d.Allow)
	require.Equal(t, 2, d.Rule)
	require.Equal(t, "/login", d.Path)
	require.Equal(t, "/c/5/parcels?page=2", d.Query.Get("redirect"))

	d = a.Navigate(context.Background(), "/profile")
	require.Equal(t, "/login", d.Location())

	d = a.Navigate(context.Background(), "/c/undefined/users")
	require.Equal(t, "/login", d.Location())
}

func TestHomeRoute(t *testing.T) {
	a := New(&fakeSession{}, &fakeTenants{})
	require.Equal(t, "/login", a.Navigate(context.Background(), "/").Location())

	admin := &fakeSession{token: true, user: &auth.UserInfo{IsPlatformAdmin: true}}
	d := New(admin, &fakeTenants{}).Navigate(context.Background(), "/")
	require.True(t, d.Allow)
}

func TestIdentityLoadedOnDemand(t *testing.T) {
	sess := &fakeSession{token: true, loaded: &auth.UserInfo{CondominiumRoles: []auth.Membership{
		member(5, auth.RoleMorador, auth.StatusActive),
	}}}
	d := New(sess, &fakeTenants{}).Navigate(context.Background(), "/c/5/announcements")
	require.True(t, d.Allow)
	require.Equal(t, 1, sess.initCalls)
}

func TestIdentityLoadFailureRedirectsToLogin(t *testing.T) {
	sess := &fakeSession{token: true, initErr: errors.New("boom")}
	d := New(sess, &fakeTenants{}).Navigate(context.Background(), "/c/5/announcements")
	require.False(t, d.Allow)
	require.Equal(t, 3, d.Rule)
	require.Equal(t, "/c/5/announcements", d.Query.Get("redirect"))
}

func TestAdminScreensRequirePlatformAdmin(t *testing.T) {
	sess := signedIn(member(8, auth.RoleSindico, auth.StatusActive))
	d := New(sess, &fakeTenants{}).Navigate(context.Background(), "/admin/plans")
	require.Equal(t, 4, d.Rule)
	require.Equal(t, "/c/8", d.Location())

	d = New(signedIn(), &fakeTenants{}).Navigate(context.Background(), "/admin")
	require.Equal(t, "/profile", d.Location())
}

func TestDisabledModuleRedirectsToDashboard(t *testing.T) {
	sess := signedIn(member(5, auth.RoleMorador, auth.StatusActive))
	d := New(sess, &fakeTenants{}).Navigate(context.Background(), "/c/5/bookings")
	require.Equal(t, 5, d.Rule)
	require.Equal(t, "/c/5", d.Location())
}

func TestPendingRoleRedirectsToProfile(t *testing.T) {
	sess := signedIn(member(5, auth.RoleSindico, auth.StatusPending))
	d := New(sess, &fakeTenants{current: 5}).Navigate(context.Background(), "/c/5/financial")
	require.False(t, d.Allow)
	require.Equal(t, 6, d.Rule)
	require.Equal(t, "/profile", d.Location())
}

func TestRoleCheckedAgainstRouteCondominium(t *testing.T) {
	sess := signedIn(
		member(9, auth.RoleSindico, auth.StatusActive),
		member(5, auth.RoleMorador, auth.StatusActive),
	)
	tenants := &fakeTenants{current: 9}
	a := New(sess, tenants)

	d := a.Navigate(context.Background(), "/c/5/users")
	require.Equal(t, 6, d.Rule)
	require.Equal(t, "/c/9", d.Location())

	d = a.Navigate(context.Background(), "/c/9/users")
	require.True(t, d.Allow)
}

func TestInvalidCondominiumID(t *testing.T) {
	user := signedIn(member(3, auth.RoleMorador, auth.StatusActive))
	d := New(user, &fakeTenants{}).Navigate(context.Background(), "/c/abc/announcements")
	require.Equal(t, 7, d.Rule)
	require.Equal(t, "/c/3", d.Location())

	d = New(signedIn(), &fakeTenants{}).Navigate(context.Background(), "/c/0")
	require.Equal(t, "/profile", d.Location())

	admin := &fakeSession{token: true, user: &auth.UserInfo{IsPlatformAdmin: true}}
	d = New(admin, &fakeTenants{}).Navigate(context.Background(), "/c/-4/parcels")
	require.Equal(t, 7, d.Rule)
	require.Equal(t, "/admin", d.Location())
}

func TestMembershipMustBeActiveInCondominium(t *testing.T) {
	sess := signedIn(
		member(2, auth.RoleMorador, auth.StatusActive),
		member(5, auth.RoleMorador, auth.StatusPending),
	)
	d := New(sess, &fakeTenants{}).Navigate(context.Background(), "/c/5/announcements")
	require.Equal(t, 8, d.Rule)
	require.Equal(t, "/login?message=pending", d.Location())
}

func TestAllowedTenantRouteSelectsCondominium(t *testing.T) {
	sess := signedIn(member(5, auth.RolePorteiro, auth.StatusActive))
	tenants := &fakeTenants{current: 2}
	a := New(sess, tenants)

	d := a.Navigate(context.Background(), "/c/5/parcels/receive")
	require.True(t, d.Allow)
	require.Equal(t, 9, d.Rule)
	require.Equal(t, []int64{5}, tenants.sets)

	a.Navigate(context.Background(), "/c/5/parcels/my")
	require.Equal(t, []int64{5}, tenants.sets, "same condominium must not reselect")
}

func TestSelectionFailureStillAllows(t *testing.T) {
	sess := signedIn(member(5, auth.RoleMorador, auth.StatusActive))
	tenants := &fakeTenants{err: errors.New("disk full")}
	d := New(sess, tenants).Navigate(context.Background(), "/c/5")
	require.True(t, d.Allow)
	require.Equal(t, []int64{5}, tenants.sets)
}

func TestAdminBypassesTenantChecks(t *testing.T) {
	admin := &fakeSession{token: true, user: &auth.UserInfo{IsPlatformAdmin: true}}
	tenants := &fakeTenants{}
	d := New(admin, tenants).Navigate(context.Background(), "/c/12/financial")
	require.True(t, d.Allow)
	require.Equal(t, []int64{12}, tenants.sets)
}

func TestResolveExtractsParams(t *testing.T) {
	a := New(signedIn(), nil)
	target := a.Resolve("/c/7/complaints/41?tab=history")
	require.Equal(t, "/c/{condoId}/complaints/{complaintId}", target.Pattern)
	require.Equal(t, "ComplaintDetail", target.Meta.Name)
	require.Equal(t, map[string]string{"condoId": "7", "complaintId": "41"}, target.Params)
	require.Equal(t, "/c/7/complaints/41", target.Path)
	require.Equal(t, "/c/7/complaints/41?tab=history", target.FullPath)

	require.Equal(t, "MyComplaints", a.Resolve("/c/7/complaints/my").Meta.Name)
	require.Equal(t, notFound, a.Resolve("/c/7/unknown/deep").Meta.Name)
}

func TestCustomRoutes(t *testing.T) {
	routes := []Route{{Pattern: "/c/{condoId}/reports", Meta: Meta{Name: "Reports", Roles: []auth.Role{auth.RoleConselheiro}}}}
	sess := signedIn(member(4, auth.RoleConselheiro, auth.StatusActive))
	a := New(sess, &fakeTenants{}, WithRoutes(routes))
	require.True(t, a.Navigate(context.Background(), "/c/4/reports").Allow)
	require.Equal(t, []string{"/c/{condoId}/reports"}, Patterns(routes))
}
