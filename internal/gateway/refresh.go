package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/CjlConsultoria/convivium2/internal/auth"
	"github.com/CjlConsultoria/convivium2/internal/ids"
	"github.com/CjlConsultoria/convivium2/internal/obs"
)

// RefreshResult is the payload of POST /auth/refresh. Callers that waited on
// another caller's refresh receive the same result.
type RefreshResult struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	ExpiresIn    int64          `json:"expiresIn"`
	User         *auth.UserInfo `json:"user"`
}

type outcome struct {
	result RefreshResult
	err    error
}

type waiter struct {
	ticket uint64
	ch     chan outcome
}

// Refresh runs the refresh protocol on demand. If a refresh is already in
// flight the caller waits for it instead of starting another.
func (g *Gateway) Refresh(ctx context.Context) (RefreshResult, error) {
	return g.acquire(ctx, "", true)
}

// renew returns an access token to replay with after sent was rejected.
func (g *Gateway) renew(ctx context.Context, sent string, force bool) (string, error) {
	res, err := g.acquire(ctx, sent, force)
	if err != nil {
		return "", err
	}
	return res.AccessToken, nil
}

// acquire is the IDLE/REFRESHING state machine. Exactly one caller leads a
// refresh; everyone arriving while it runs queues behind it in FIFO order.
func (g *Gateway) acquire(ctx context.Context, sent string, force bool) (RefreshResult, error) {
	g.mu.Lock()
	if !force && !g.refreshing {
		// Another refresh already rotated the token after sent was issued.
		if cur := g.creds.AccessToken(); cur != "" && cur != sent {
			g.mu.Unlock()
			return RefreshResult{AccessToken: cur}, nil
		}
	}
	if g.refreshing {
		w := &waiter{ticket: g.nextTicket, ch: make(chan outcome, 1)}
		g.nextTicket++
		g.waiters = append(g.waiters, w)
		g.metrics.WaiterAdded()
		g.mu.Unlock()

		select {
		case out := <-w.ch:
			return out.result, out.err
		case <-ctx.Done():
			g.abandon(w)
			return RefreshResult{}, ctx.Err()
		}
	}
	refresh := g.creds.RefreshToken()
	if refresh == "" {
		g.mu.Unlock()
		g.endSession(ctx)
		return RefreshResult{}, ErrNoRefreshToken
	}
	g.refreshing = true
	g.mu.Unlock()

	return g.lead(ctx, refresh)
}

func (g *Gateway) lead(ctx context.Context, refresh string) (RefreshResult, error) {
	// The refresh outlives a leader whose own context ends; the waiters depend on it.
	rctx := context.WithoutCancel(ctx)
	res, err := g.callRefresh(rctx, refresh)
	if err == nil {
		if perr := g.creds.SetTokens(rctx, res.AccessToken, res.RefreshToken); perr != nil {
			obs.Logger().Warn("persist refreshed tokens", zap.Error(perr))
		}
		g.metrics.ObserveRefresh("success")
	} else {
		err = fmt.Errorf("%w: %w", ErrRefreshFailed, err)
		if cerr := g.creds.Clear(rctx); cerr != nil {
			obs.Logger().Warn("clear credentials", zap.Error(cerr))
		}
		g.metrics.ObserveRefresh("failure")
		obs.Logger().Info("token refresh failed", zap.Error(err))
	}

	g.mu.Lock()
	waiters := g.waiters
	g.waiters = nil
	g.refreshing = false
	resume := g.onResume
	g.mu.Unlock()
	g.metrics.WaitersReleased(len(waiters))

	out := outcome{result: res, err: err}
	for _, w := range waiters {
		if resume != nil {
			resume(w.ticket)
		}
		w.ch <- out
	}

	if err != nil {
		g.nav.Navigate(PathLogin)
		g.runHooks(rctx)
		return RefreshResult{}, err
	}
	return res, nil
}

// abandon drops w from the queue after its caller gave up. A result already
// delivered to the buffered channel is discarded.
func (g *Gateway) abandon(w *waiter) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, q := range g.waiters {
		if q == w {
			g.waiters = append(g.waiters[:i], g.waiters[i+1:]...)
			g.metrics.WaitersReleased(1)
			return
		}
	}
}

// endSession clears credentials and sends the user to the login screen.
func (g *Gateway) endSession(ctx context.Context) {
	if err := g.creds.Clear(ctx); err != nil {
		obs.Logger().Warn("clear credentials", zap.Error(err))
	}
	g.nav.Navigate(PathLogin)
	g.runHooks(ctx)
}

func (g *Gateway) runHooks(ctx context.Context) {
	g.mu.Lock()
	hooks := make([]func(context.Context), len(g.hooks))
	copy(hooks, g.hooks)
	g.mu.Unlock()
	for _, fn := range hooks {
		fn(ctx)
	}
}

// callRefresh posts the refresh token outside the normal pipeline: no bearer
// header and no retry.
func (g *Gateway) callRefresh(ctx context.Context, refresh string) (RefreshResult, error) {
	payload, err := json.Marshal(map[string]string{"refreshToken": refresh})
	if err != nil {
		return RefreshResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+refreshPath, bytes.NewReader(payload))
	if err != nil {
		return RefreshResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", ids.New())

	resp, err := g.client.Do(req)
	if err != nil {
		g.metrics.ObserveRequest(http.MethodPost, 0)
		return RefreshResult{}, err
	}
	defer resp.Body.Close()
	g.metrics.ObserveRequest(http.MethodPost, resp.StatusCode)

	env, err := readEnvelope(resp, http.MethodPost, refreshPath)
	if err != nil {
		return RefreshResult{}, err
	}
	var res RefreshResult
	if err := decodeData(env, &res); err != nil {
		return RefreshResult{}, err
	}
	if res.AccessToken == "" {
		return RefreshResult{}, errors.New("gateway: refresh response without access token")
	}
	return res, nil
}
