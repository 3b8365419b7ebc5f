package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/CjlConsultoria/convivium2/internal/api"
	"github.com/CjlConsultoria/convivium2/internal/config"
	"github.com/CjlConsultoria/convivium2/internal/gateway"
	"github.com/CjlConsultoria/convivium2/internal/guard"
	"github.com/CjlConsultoria/convivium2/internal/notification"
	"github.com/CjlConsultoria/convivium2/internal/obs"
	"github.com/CjlConsultoria/convivium2/internal/session"
	"github.com/CjlConsultoria/convivium2/internal/storage"
	"github.com/CjlConsultoria/convivium2/internal/tenant"
	"github.com/CjlConsultoria/convivium2/internal/ui"
)

const (
	configFlag = "config"
	outputFlag = "output"
	condoFlag  = "condo"
)

// app is the client core wired from configuration for one command run.
type app struct {
	cfg      config.Config
	out      io.Writer
	errOut   io.Writer
	format   string
	closer   io.Closer
	registry *prometheus.Registry

	creds         *storage.Credentials
	gateway       *gateway.Gateway
	client        *api.Client
	tenants       *tenant.Store
	session       *session.Store
	guard         *guard.Authorizer
	ui            *ui.Center
	notifications *notification.Store

	navMu   sync.Mutex
	lastNav string
}

func (a *app) Navigate(path string) {
	a.navMu.Lock()
	a.lastNav = path
	a.navMu.Unlock()
	obs.Logger().Debug("navigate", zap.String("path", path))
}

func (a *app) navigated() string {
	a.navMu.Lock()
	defer a.navMu.Unlock()
	return a.lastNav
}

func newApp(ctx context.Context, cfg config.Config, out, errOut io.Writer, format string) (*app, error) {
	a := &app{cfg: cfg, out: out, errOut: errOut, format: format, registry: prometheus.NewRegistry()}

	kv, closer, err := storage.Open(ctx, cfg.Storage.Options())
	if err != nil {
		return nil, err
	}
	a.closer = closer

	center, err := ui.NewCenter(ctx, kv)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	a.ui = center

	metrics, err := obs.NewGatewayMetrics(a.registry)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	a.creds = storage.NewCredentials(kv)
	if _, err := a.creds.Hydrate(ctx); err != nil {
		_ = closer.Close()
		return nil, err
	}
	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = cfg.API.Timeout
	opts := []gateway.Option{
		gateway.WithHTTPClient(httpClient),
		gateway.WithNavigator(a),
		gateway.WithNotifier(center),
		gateway.WithMetrics(metrics),
		gateway.WithRefreshSkew(cfg.API.RefreshSkew),
	}
	if cfg.API.RatePerSecond > 0 {
		opts = append(opts, gateway.WithRateLimit(cfg.API.RatePerSecond, cfg.API.RateBurst))
	}
	a.gateway, err = gateway.New(cfg.API.BaseURL, a.creds, opts...)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	a.client = api.New(a.gateway)

	a.tenants, err = tenant.New(ctx, kv, a.client.Condominiums)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	a.notifications = notification.New(a.client.Notifications)
	a.session = session.New(a.gateway, a.client.Auth, a.creds, a.tenants, a,
		session.WithLogoutHook(func(context.Context) {
			a.notifications.Reset()
			a.ui.Reset()
		}))
	a.guard = guard.New(a.session, a.tenants)
	return a, nil
}

// close prints pending toasts and releases storage.
func (a *app) close() error {
	for _, t := range a.ui.Toasts() {
		fmt.Fprintf(a.errOut, "[%s] %s\n", t.Kind, t.Message)
	}
	a.ui.Clear()
	return a.closer.Close()
}

// requireSession loads the persisted identity and fails when there is none.
func (a *app) requireSession(ctx context.Context) error {
	if err := a.session.Initialize(ctx); err != nil {
		return err
	}
	if a.session.User() == nil {
		return errors.New("not logged in; run 'condoctl login'")
	}
	return nil
}

// condo returns the --condo flag or the selected condominium.
func (a *app) condo(cmd *cobra.Command) (int64, error) {
	id, err := cmd.Flags().GetInt64(condoFlag)
	if err != nil {
		return 0, err
	}
	if id > 0 {
		return id, nil
	}
	if id = a.tenants.CurrentCondominiumID(); id > 0 {
		return id, nil
	}
	return 0, errors.New("no condominium selected; run 'condoctl use ID' or pass --condo")
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:           "condoctl",
		Short:         "Convivium condominium client",
		Long:          "Command line client for the Convivium condominium platform.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().String(configFlag, "", "config file (default $HOME/.config/condoctl/config.yaml)")
	root.PersistentFlags().StringP(outputFlag, "o", "yaml", "output format: [ yaml | json ]")
	root.PersistentFlags().String("log-level", "", "override log.level")
	_ = v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))

	// withApp loads configuration, wires the client and closes it afterwards.
	withApp := func(run func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString(configFlag)
			format, _ := cmd.Flags().GetString(outputFlag)
			cfg, err := config.Load(v, file)
			if err != nil {
				return err
			}
			if _, err := obs.Configure(cfg.Log.Level); err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := newApp(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), format)
			if err != nil {
				return err
			}
			runErr := run(ctx, cmd, a, args)
			if err := a.close(); err != nil && runErr == nil {
				runErr = err
			}
			return runErr
		}
	}

	root.AddCommand(
		loginCmd(withApp),
		logoutCmd(withApp),
		whoamiCmd(withApp),
		profileCmd(withApp),
		useCmd(withApp),
		canCmd(withApp),
		navCmd(withApp),
		complaintsCmd(withApp),
		parcelsCmd(withApp),
		notificationsCmd(withApp),
		uiCmd(withApp),
		mockServerCmd(v),
		versionCmd(),
	)
	return root
}

type appRunner = func(run func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error
