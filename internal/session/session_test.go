package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	"github.com/CjlConsultoria/convivium2/internal/api"
	"github.com/CjlConsultoria/convivium2/internal/auth"
	"github.com/CjlConsultoria/convivium2/internal/gateway"
	"github.com/CjlConsultoria/convivium2/internal/obs"
	"github.com/CjlConsultoria/convivium2/internal/storage"
)

type fakeAuth struct {
	meCalls  atomic.Int32
	meErr    error
	meGate   chan struct{}
	user     auth.UserInfo
	loginErr error
	google   api.GoogleAuthResponse
	register api.RegisterGoogleResponse
}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (api.LoginResponse, error) {
	if f.loginErr != nil {
		return api.LoginResponse{}, f.loginErr
	}
	u := f.user
	u.Email = email
	return api.LoginResponse{AccessToken: "a1", RefreshToken: "r1", ExpiresIn: 900, User: u}, nil
}

func (f *fakeAuth) GoogleLogin(context.Context, string) (api.GoogleAuthResponse, error) {
	return f.google, nil
}

func (f *fakeAuth) RegisterGoogle(context.Context, api.RegisterGoogleRequest) (api.RegisterGoogleResponse, error) {
	return f.register, nil
}

func (f *fakeAuth) Me(context.Context) (*auth.UserInfo, error) {
	f.meCalls.Add(1)
	if f.meGate != nil {
		<-f.meGate
	}
	if f.meErr != nil {
		return nil, f.meErr
	}
	u := f.user
	return &u, nil
}

func (f *fakeAuth) UpdateMe(_ context.Context, upd api.ProfileUpdate) (*auth.UserInfo, error) {
	u := f.user
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	return &u, nil
}

type fakeRefresher struct {
	res   gateway.RefreshResult
	err   error
	hooks []func(context.Context)
}

func (f *fakeRefresher) Refresh(context.Context) (gateway.RefreshResult, error) { return f.res, f.err }
func (f *fakeRefresher) OnSessionEnd(fn func(context.Context))                  { f.hooks = append(f.hooks, fn) }

type fakeTenants struct {
	mu      sync.Mutex
	id      int64
	cleared int
}

func (f *fakeTenants) CurrentCondominiumID() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id
}

func (f *fakeTenants) ClearCondominium(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.id = 0
	f.cleared++
	return nil
}

type navRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (n *navRecorder) Navigate(p string) {
	n.mu.Lock()
	n.paths = append(n.paths, p)
	n.mu.Unlock()
}

type fixture struct {
	store     *Store
	auth      *fakeAuth
	refresher *fakeRefresher
	tenants   *fakeTenants
	nav       *navRecorder
	kv        *storage.MemoryKV
	creds     *storage.Credentials
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		auth: &fakeAuth{user: auth.UserInfo{ID: 1, Name: "Ana", CondominiumRoles: []auth.Membership{
			{CondominiumID: 5, Role: auth.RolePorteiro, Status: auth.StatusActive},
			{CondominiumID: 9, Role: auth.RoleSindico, Status: auth.StatusActive},
		}}},
		refresher: &fakeRefresher{},
		tenants:   &fakeTenants{},
		nav:       &navRecorder{},
		kv:        storage.NewMemoryKV(),
	}
	f.creds = storage.NewCredentials(f.kv)
	f.store = New(f.refresher, f.auth, f.creds, f.tenants, f.nav, opts...)
	return f
}

func (f *fixture) persistTokens(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.kv.Set(ctx, storage.KeyAccessToken, "a0"))
	require.NoError(t, f.kv.Set(ctx, storage.KeyRefreshToken, "r0"))
}

func TestInitializeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.persistTokens(t)
	ctx := context.Background()

	require.NoError(t, f.store.Initialize(ctx))
	first := f.store.User()
	require.NoError(t, f.store.Initialize(ctx))

	require.EqualValues(t, 1, f.auth.meCalls.Load())
	require.Equal(t, first, f.store.User())
	require.True(t, f.store.IsAuthenticated())
}

func TestConcurrentInitializeSharesOneFetch(t *testing.T) {
	f := newFixture(t)
	f.persistTokens(t)
	f.auth.meGate = make(chan struct{})

	var g errgroup.Group
	for i := 0; i < 5; i++ {
		g.Go(func() error { return f.store.Initialize(context.Background()) })
	}
	require.Eventually(t, func() bool { return f.auth.meCalls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	close(f.auth.meGate)
	require.NoError(t, g.Wait())
	require.EqualValues(t, 1, f.auth.meCalls.Load())
}

func TestInitializeWithoutToken(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Initialize(context.Background()))
	require.Zero(t, f.auth.meCalls.Load())
	require.False(t, f.store.IsAuthenticated())
	require.Nil(t, f.store.User())
}

func TestFetchUserFailureLogsOut(t *testing.T) {
	f := newFixture(t)
	f.persistTokens(t)
	f.auth.meErr = errors.New("401")

	err := f.store.Initialize(context.Background())
	require.Error(t, err)
	require.False(t, f.store.IsAuthenticated())
	require.Nil(t, f.store.User())
	require.Equal(t, []string{gateway.PathLogin}, f.nav.paths)
	_, err = f.kv.Get(context.Background(), storage.KeyAccessToken)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestHasRoleIsTenantScoped(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Login(context.Background(), "ana@example.com", "pw"))

	f.tenants.id = 5
	require.True(t, f.store.HasRole(auth.RolePorteiro))
	require.False(t, f.store.HasRole(auth.RoleSindico))
	require.True(t, f.store.HasPermission(auth.PermParcelsReceive))
	require.False(t, f.store.HasPermission(auth.PermFinancialManage))
	require.True(t, f.store.HasRoleIn(9, auth.RoleSindico))

	f.tenants.id = 9
	require.True(t, f.store.HasRole(auth.RoleSindico))
	require.Len(t, f.store.CurrentRoles(), 1)

	f.tenants.id = 0
	require.False(t, f.store.HasRole(auth.RoleSindico))
	require.Empty(t, f.store.CurrentRoles())
}

func TestPlatformAdminPermissions(t *testing.T) {
	f := newFixture(t)
	f.auth.user = auth.UserInfo{ID: 2, IsPlatformAdmin: true}
	require.NoError(t, f.store.Login(context.Background(), "root@example.com", "pw"))
	require.True(t, f.store.IsPlatformAdmin())
	require.True(t, f.store.HasPermission("anything.at.all"))
}

func TestLoginFailurePropagatesUntouched(t *testing.T) {
	f := newFixture(t)
	apiErr := &gateway.APIError{Status: 401, Message: "bad credentials"}
	f.auth.loginErr = apiErr

	err := f.store.Login(context.Background(), "ana@example.com", "wrong")
	require.Same(t, apiErr, err)
	require.False(t, f.store.IsAuthenticated())
	require.False(t, f.store.Loading())
}

func TestLoginWritesAuditEvent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := obs.SetLogger(zap.New(core))
	defer obs.SetLogger(prev)

	f := newFixture(t)
	require.NoError(t, f.store.Login(context.Background(), "ana@example.com", "pw"))

	entries := logs.FilterField(zap.String("event", "session.login")).All()
	require.Len(t, entries, 1)
	require.Equal(t, int64(1), entries[0].ContextMap()["user_id"])
}

func TestLogoutClearsEverything(t *testing.T) {
	var hookRuns atomic.Int32
	f := newFixture(t, WithLogoutHook(func(context.Context) { hookRuns.Add(1) }))
	ctx := context.Background()
	require.NoError(t, f.store.Login(ctx, "ana@example.com", "pw"))
	f.tenants.id = 5

	f.store.Logout(ctx)

	require.Nil(t, f.store.User())
	require.False(t, f.store.IsAuthenticated())
	require.Empty(t, f.creds.RefreshToken())
	require.Equal(t, 1, f.tenants.cleared)
	require.EqualValues(t, 1, hookRuns.Load())
	require.Equal(t, []string{gateway.PathLogin}, f.nav.paths)
}

func TestRefreshAccessToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Login(ctx, "ana@example.com", "pw"))

	renamed := f.auth.user
	renamed.Name = "Ana Maria"
	f.refresher.res = gateway.RefreshResult{AccessToken: "a2", RefreshToken: "r2", User: &renamed}
	require.NoError(t, f.store.RefreshAccessToken(ctx))
	require.Equal(t, "Ana Maria", f.store.User().Name)

	f.refresher.err = gateway.ErrRefreshFailed
	require.ErrorIs(t, f.store.RefreshAccessToken(ctx), gateway.ErrRefreshFailed)
	require.Nil(t, f.store.User())
	require.Contains(t, f.nav.paths, gateway.PathLogin)
}

func TestRefreshWithoutRefreshTokenLogsOut(t *testing.T) {
	f := newFixture(t)
	require.ErrorIs(t, f.store.RefreshAccessToken(context.Background()), ErrNotAuthenticated)
	require.Equal(t, []string{gateway.PathLogin}, f.nav.paths)
}

func TestGatewaySessionEndDropsIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Login(ctx, "ana@example.com", "pw"))
	require.Len(t, f.refresher.hooks, 1)

	f.refresher.hooks[0](ctx)
	require.Nil(t, f.store.User())
	require.Equal(t, 1, f.tenants.cleared)
	require.Empty(t, f.nav.paths)
}

func TestGoogleFlows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.auth.google = api.GoogleAuthResponse{NeedsRegistration: true, Email: "bia@example.com", Name: "Bia"}
	res, err := f.store.LoginWithGoogle(ctx, "id-token")
	require.NoError(t, err)
	require.True(t, res.NeedsRegistration)
	require.Equal(t, "bia@example.com", res.Email)
	require.False(t, f.store.IsAuthenticated())

	f.auth.register = api.RegisterGoogleResponse{NeedsApproval: true}
	reg, err := f.store.CompleteGoogleRegistration(ctx, api.RegisterGoogleRequest{IDToken: "id-token", CondominiumID: 5, UnitID: 1})
	require.NoError(t, err)
	require.True(t, reg.NeedsApproval)
	require.Equal(t, defaultApprovalMessage, reg.Message)
	require.False(t, f.store.IsAuthenticated())

	f.auth.register = api.RegisterGoogleResponse{Login: &api.LoginResponse{AccessToken: "ga", RefreshToken: "gr", User: auth.UserInfo{ID: 11}}}
	reg, err = f.store.CompleteGoogleRegistration(ctx, api.RegisterGoogleRequest{IDToken: "id-token", CondominiumID: 5, UnitID: 1})
	require.NoError(t, err)
	require.False(t, reg.NeedsApproval)
	require.True(t, f.store.IsAuthenticated())
	require.EqualValues(t, 11, f.store.User().ID)

	f.store.Logout(ctx)
	u := auth.UserInfo{ID: 12}
	f.auth.google = api.GoogleAuthResponse{AccessToken: "ga2", RefreshToken: "gr2", User: &u}
	res, err = f.store.LoginWithGoogle(ctx, "id-token")
	require.NoError(t, err)
	require.False(t, res.NeedsRegistration)
	require.Equal(t, "ga2", f.creds.AccessToken())
}

func TestUpdateMyProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Login(ctx, "ana@example.com", "pw"))
	name := "Ana B."
	require.NoError(t, f.store.UpdateMyProfile(ctx, api.ProfileUpdate{Name: &name}))
	require.Equal(t, "Ana B.", f.store.User().Name)
}

func TestFirstActiveMembership(t *testing.T) {
	f := newFixture(t)
	_, ok := f.store.FirstActiveMembership()
	require.False(t, ok)
	require.NoError(t, f.store.Login(context.Background(), "ana@example.com", "pw"))
	m, ok := f.store.FirstActiveMembership()
	require.True(t, ok)
	require.EqualValues(t, 5, m.CondominiumID)
}
