package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/CjlConsultoria/convivium2/internal/config"
	"github.com/CjlConsultoria/convivium2/internal/mockapi"
	"github.com/CjlConsultoria/convivium2/internal/obs"
)

func mockServerCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run a local stand-in for the platform API",
		Long: fmt.Sprintf(`Serve the platform REST API from seeded in-memory data.
Seeded accounts (%s, %s, %s, %s, %s) share the password %q.`,
			mockapi.AdminEmail, mockapi.SindicoEmail, mockapi.PorteiroEmail,
			mockapi.MoradorEmail, mockapi.PendingEmail, mockapi.SeedPassword),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, _ := cmd.Flags().GetString(configFlag)
			_ = v.BindPFlag("mock.addr", cmd.Flags().Lookup("addr"))
			cfg, err := config.Load(v, file)
			if err != nil {
				return err
			}
			logger, err := obs.Configure(cfg.Log.Level)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			reg := prometheus.NewRegistry()
			obs.InitBuildInfo(reg, version, commit)
			metrics, err := obs.NewHTTPMetrics(reg)
			if err != nil {
				return err
			}
			opts := []mockapi.Option{mockapi.WithMetrics(metrics), mockapi.WithAccessTTL(cfg.Mock.AccessTTL)}
			if cfg.Mock.RefreshDelay > 0 {
				opts = append(opts, mockapi.WithRefreshDelay(cfg.Mock.RefreshDelay))
			}
			if cfg.Mock.RatePerSecond > 0 {
				opts = append(opts, mockapi.WithRateLimit(cfg.Mock.RatePerSecond, cfg.Mock.RateBurst))
			}
			mock, err := mockapi.New(opts...)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              cfg.Mock.Addr,
				Handler:           mock.Handler(),
				ReadTimeout:       15 * time.Second,
				ReadHeaderTimeout: 15 * time.Second,
				WriteTimeout:      15 * time.Second,
				IdleTimeout:       60 * time.Second,
			}
			logger.Info("starting mock api", zap.String("addr", srv.Addr), zap.String("base_path", mockapi.BasePath))

			errCh := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(stop)

			select {
			case err := <-errCh:
				return err
			case <-stop:
			}
			logger.Info("shutting down mock api")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default mock.addr)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString(outputFlag)
			return render(cmd.OutOrStdout(), format, map[string]string{"version": version, "commit": commit})
		},
	}
}
