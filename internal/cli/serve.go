package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/userdir/backend/internal/observability"
	"github.com/anonto42/userdir/backend/internal/router"
	"github.com/anonto42/userdir/backend/pkg/config"
	"github.com/anonto42/userdir/backend/pkg/logger"
	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		return err
	}
	defer log.Sync()
	log = log.With(zap.String("service", serviceName), zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Enabled:      cfg.TracingEnabled,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Insecure:     cfg.TracingInsecure,
		ServiceName:  serviceName,
		Environment:  cfg.Env,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.Env}); err != nil {
			return err
		}
		defer sentry.Flush(2 * time.Second)
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if cfg.TracingEnabled {
		e.Use(otelecho.Middleware(serviceName))
	}
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{}))
	}
	if cfg.MetricsEnabled {
		metrics := observability.NewHTTPMetrics(observability.NewMetricsRegistry(), serviceName)
		e.Use(metrics.Middleware())
		e.GET(cfg.MetricsPath, echo.WrapHandler(metrics.Handler()))
	}
	router.SetupMiddleware(e, log)
	router.SetupRoutes(e, router.Dependencies{
		Users:   st.users,
		Follows: st.follows,
		Ping:    st.db.Ping,
		Log:     log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting http server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server exited")
	return nil
}
