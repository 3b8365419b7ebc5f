// Package gateway sends every API call. It attaches the bearer token,
// renews it once on 401 through a single-flight refresh, and turns the
// suspended-condominium 403 into a notice and a redirect.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/CjlConsultoria/convivium2/internal/ids"
	"github.com/CjlConsultoria/convivium2/internal/obs"
)

const (
	PathLogin   = "/login"
	PathProfile = "/profile"

	refreshPath = "/auth/refresh"
)

// Option configures a Gateway.
type Option func(*Gateway) error

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) error {
		if c == nil {
			return errors.New("gateway: nil http client")
		}
		g.client = c
		return nil
	}
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(g *Gateway) error {
		if perSecond <= 0 {
			return nil
		}
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		return nil
	}
}

// WithRefreshSkew renews the access token before sending when its exp claim
// is closer than d.
func WithRefreshSkew(d time.Duration) Option {
	return func(g *Gateway) error {
		if d < 0 {
			return fmt.Errorf("gateway: negative refresh skew %s", d)
		}
		g.skew = d
		return nil
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) error {
		if now != nil {
			g.now = now
		}
		return nil
	}
}

func WithMetrics(m *obs.GatewayMetrics) Option {
	return func(g *Gateway) error {
		g.metrics = m
		return nil
	}
}

func WithNavigator(n Navigator) Option {
	return func(g *Gateway) error {
		if n != nil {
			g.nav = n
		}
		return nil
	}
}

func WithNotifier(n Notifier) Option {
	return func(g *Gateway) error {
		if n != nil {
			g.notifier = n
		}
		return nil
	}
}

// CallOption adjusts a single call.
type CallOption func(*callConfig)

type callConfig struct {
	skipRenewal bool
	header      http.Header
}

// SkipRenewal sends the call without the 401 refresh-and-replay step. Used by
// the login family of endpoints, whose 401 means bad credentials.
func SkipRenewal() CallOption {
	return func(c *callConfig) { c.skipRenewal = true }
}

// WithHeader adds a request header to one call.
func WithHeader(key, value string) CallOption {
	return func(c *callConfig) {
		if c.header == nil {
			c.header = make(http.Header)
		}
		c.header.Add(key, value)
	}
}

// RawBody is sent as-is instead of being JSON encoded.
type RawBody struct {
	ContentType string
	Data        []byte
}

// Gateway is safe for concurrent use.
type Gateway struct {
	baseURL  string
	client   *http.Client
	creds    TokenStore
	nav      Navigator
	notifier Notifier
	limiter  *rate.Limiter
	metrics  *obs.GatewayMetrics
	skew     time.Duration
	now      func() time.Time

	mu         sync.Mutex
	refreshing bool
	waiters    []*waiter
	nextTicket uint64
	hooks      []func(context.Context)

	// onResume observes waiter release order.
	onResume func(ticket uint64)
}

// New builds a gateway rooted at baseURL (for example
// "https://host/api/v1").
func New(baseURL string, creds TokenStore, opts ...Option) (*Gateway, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("gateway: base url is required")
	}
	if creds == nil {
		return nil, errors.New("gateway: token store is required")
	}
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = 30 * time.Second
	g := &Gateway{
		baseURL:  baseURL,
		client:   client,
		creds:    creds,
		nav:      noopNavigator{},
		notifier: noopNotifier{},
		now:      time.Now,
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Gateway) BaseURL() string { return g.baseURL }

// OnSessionEnd registers fn to run after the gateway tears the session down
// (refresh failure or missing refresh token).
func (g *Gateway) OnSessionEnd(fn func(context.Context)) {
	if fn == nil {
		return
	}
	g.mu.Lock()
	g.hooks = append(g.hooks, fn)
	g.mu.Unlock()
}

// Do sends one API call and decodes the envelope's data into out (which may
// be nil). body may be nil, a RawBody, or any JSON-encodable value.
func (g *Gateway) Do(ctx context.Context, method, path string, body, out any, opts ...CallOption) error {
	var cfg callConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	payload, contentType, err := encodeBody(body)
	if err != nil {
		return err
	}

	token := g.creds.AccessToken()
	if !cfg.skipRenewal && g.expiresSoon(token) && g.creds.RefreshToken() != "" {
		fresh, err := g.renew(ctx, token, false)
		if err != nil {
			return err
		}
		token = fresh
	}

	retried := false
	for {
		env, err := g.send(ctx, method, path, payload, contentType, token, cfg.header)
		if err == nil {
			return decodeData(env, out)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			return err
		}
		if apiErr.Suspended() {
			g.suspended(ctx, apiErr)
			return fmt.Errorf("%w: %w", ErrTenantSuspended, apiErr)
		}
		if apiErr.Status != http.StatusUnauthorized || retried || cfg.skipRenewal {
			return err
		}
		retried = true
		token, err = g.renew(ctx, token, false)
		if err != nil {
			if errors.Is(err, ErrNoRefreshToken) {
				return fmt.Errorf("%w: %w", ErrNoRefreshToken, apiErr)
			}
			return err
		}
	}
}

func (g *Gateway) send(ctx context.Context, method, path string, payload []byte, contentType, token string, extra http.Header) (*Envelope, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, rdr)
	if err != nil {
		return nil, err
	}
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	requestID := ids.New()
	req.Header.Set("X-Request-ID", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := g.now()
	resp, err := g.client.Do(req)
	if err != nil {
		g.metrics.ObserveRequest(method, 0)
		obs.Logger().Debug("api request failed",
			zap.String("method", method), zap.String("path", path),
			zap.String("request_id", requestID), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()
	g.metrics.ObserveRequest(method, resp.StatusCode)
	obs.Logger().Debug("api request",
		zap.String("method", method), zap.String("path", path),
		zap.Int("status", resp.StatusCode), zap.String("request_id", requestID),
		zap.Duration("elapsed", g.now().Sub(start)))

	return readEnvelope(resp, method, path)
}

func readEnvelope(resp *http.Response, method, path string) (*Envelope, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("gateway: read body: %w", err)
	}
	env := &Envelope{}
	decoded := false
	if len(bytes.TrimSpace(data)) > 0 {
		decoded = json.Unmarshal(data, env) == nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Method: method, Path: path}
		if decoded {
			apiErr.Message = env.Message
			apiErr.ErrorCode = env.ErrorCode
			apiErr.Code = env.Code
			apiErr.Errors = env.Errors
		}
		return nil, apiErr
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &Envelope{Success: true}, nil
	}
	if !decoded {
		return nil, fmt.Errorf("gateway: %s %s: malformed response body", method, path)
	}
	if !env.Success && (env.ErrorCode != "" || env.Message != "") {
		return nil, &APIError{
			Status:    resp.StatusCode,
			Message:   env.Message,
			ErrorCode: env.ErrorCode,
			Code:      env.Code,
			Errors:    env.Errors,
			Method:    method,
			Path:      path,
		}
	}
	return env, nil
}

func decodeData(env *Envelope, out any) error {
	if out == nil || env == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("gateway: decode data: %w", err)
	}
	return nil
}

func encodeBody(body any) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case RawBody:
		return b.Data, b.ContentType, nil
	case *RawBody:
		return b.Data, b.ContentType, nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("gateway: encode body: %w", err)
		}
		return data, "application/json", nil
	}
}

func (g *Gateway) suspended(ctx context.Context, apiErr *APIError) {
	msg := apiErr.Message
	if msg == "" {
		msg = defaultSuspendedNotice
	}
	obs.Logger().Warn("condominium suspended", zap.String("path", apiErr.Path))
	g.notifier.Notice(ctx, msg)
	g.nav.Navigate(PathProfile)
}

// expiresSoon reports whether token's exp claim falls within the skew window.
// The signature is not checked; the server remains the authority.
func (g *Gateway) expiresSoon(token string) bool {
	if g.skew <= 0 || token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.Sub(g.now()) < g.skew
}
