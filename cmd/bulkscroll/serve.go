package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezkam/bulkscroll/internal/audit"
	auditsql "github.com/rezkam/bulkscroll/internal/audit/sql"
	"github.com/rezkam/bulkscroll/internal/auth"
	"github.com/rezkam/bulkscroll/internal/config"
	bulkhttp "github.com/rezkam/bulkscroll/internal/http"
	"github.com/rezkam/bulkscroll/internal/http/handler"
	"github.com/rezkam/bulkscroll/internal/schedule"
	grpctransport "github.com/rezkam/bulkscroll/internal/transport/grpc"
	"github.com/rezkam/bulkscroll/pkg/observability"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bulk-by-scroll control plane: gRPC, its REST mirror, and the recurring schedule worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	obsCfg := observability.Config{Enabled: cfg.Observability.OTelEnabled, ServiceName: cfg.Observability.ServiceName}

	lp, logger, err := observability.InitLogger(ctx, obsCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer shutdownWithTimeout(lp.Shutdown, 5*time.Second, "logger provider")
	slog.SetDefault(logger)

	tp, err := observability.InitTracerProvider(ctx, obsCfg)
	if err != nil {
		return fmt.Errorf("init tracer provider: %w", err)
	}
	defer shutdownWithTimeout(tp.Shutdown, 5*time.Second, "tracer provider")

	mp, err := observability.InitMeterProvider(ctx, obsCfg)
	if err != nil {
		return fmt.Errorf("init meter provider: %w", err)
	}
	defer shutdownWithTimeout(mp.Shutdown, 5*time.Second, "meter provider")

	slog.InfoContext(ctx, "starting bulkscroll")

	auditDB, err := auditsql.NewStore(ctx, auditDBConfig(cfg.Audit))
	if err != nil {
		return fmt.Errorf("open audit store: %w", err)
	}
	defer auditDB.Close()

	var store audit.Store = auditDB
	if cfg.Audit.BlobBucket != "" {
		archiver, err := blobArchiver(ctx, cfg.Audit.BlobBucket)
		if err != nil {
			slog.WarnContext(ctx, "audit blob archival disabled", "error", err)
		} else {
			store = audit.NewCompositeStore(auditDB, archiver)
		}
	}

	keyStore := auditsql.NewKeyStore(auditDB)
	authenticator := auth.NewAuthenticator(ctx, keyStore)
	defer shutdownWithTimeout(authenticator.Shutdown, cfg.ShutdownTimeout, "authenticator")

	backendConn, err := grpctransport.Dial(cfg.Backend.Endpoint)
	if err != nil {
		return fmt.Errorf("dial search backend: %w", err)
	}
	defer backendConn.Close()
	backend := grpctransport.NewClient(backendConn)

	control := &grpctransport.Server{
		Backend:   backend,
		Audit:     store,
		Transform: newTransformFactory(),
		Authz:     authenticator,
	}

	grpcServer := grpctransport.NewServer(grpcKeepaliveConfig(cfg.GRPC), control, nil)
	lis, err := net.Listen("tcp", cfg.GRPC.GRPCHost+":"+cfg.GRPC.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen on gRPC port: %w", err)
	}

	grpcErrs := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "gRPC control plane listening", "addr", lis.Addr())
		if err := grpcServer.Serve(lis); err != nil {
			grpcErrs <- fmt.Errorf("serve gRPC: %w", err)
		}
	}()

	templateStore := auditsql.NewTemplateStore(auditDB)
	scheduler := schedule.NewScheduler(templateStore, newLauncher(control), schedule.Config{
		Interval:         cfg.Schedule.Interval,
		MaxStartupJitter: cfg.Schedule.MaxStartupJitter,
		RateLimitDelay:   cfg.Schedule.RateLimitDelay,
	})
	go func() {
		if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.ErrorContext(ctx, "schedule worker exited", "error", err)
		}
	}()

	httpServer := bulkhttp.NewAPIServer(handler.NewServer(control), authenticator, bulkhttp.ServerConfig{
		Host:              cfg.HTTP.Host,
		Port:              cfg.HTTP.Port,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
	})
	httpErrs := make(chan error, 1)
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErrs <- fmt.Errorf("serve REST: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.WarnContext(shutdownCtx, "REST shutdown error", "error", err)
		}

		done := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-shutdownCtx.Done():
			grpcServer.Stop()
		}
		return nil
	case err := <-grpcErrs:
		return err
	case err := <-httpErrs:
		return err
	}
}

// newLauncher adapts grpctransport.Server's run bookkeeping into a
// schedule.Launcher, reusing StartRun's admission path so a scheduled
// firing is recorded and driven exactly like a manually started run.
func newLauncher(control *grpctransport.Server) schedule.Launcher {
	return func(ctx context.Context, t schedule.Template) {
		req := t.NewRequest()
		_, err := control.StartRun(ctx, &grpctransport.StartRunRequest{
			OpType:           t.OpType,
			DestinationIndex: t.DestinationIndex,
			SearchSource:     req.SearchSource,
			Size:             int64(t.Size),
			Conflicts:        string(t.Conflicts),
			Refresh:          t.Refresh,
		})
		if err != nil {
			slog.ErrorContext(ctx, "scheduled run failed to start", "template_id", t.TemplateID, "error", err)
		}
	}
}

func grpcKeepaliveConfig(c config.GRPCConfig) grpctransport.KeepaliveConfig {
	return grpctransport.KeepaliveConfig{
		Time:                  time.Duration(c.GRPCKeepaliveTime) * time.Second,
		Timeout:               time.Duration(c.GRPCKeepaliveTimeout) * time.Second,
		MaxConnectionIdle:     time.Duration(c.GRPCMaxConnectionIdle) * time.Second,
		MaxConnectionAge:      time.Duration(c.GRPCMaxConnectionAge) * time.Second,
		MaxConnectionAgeGrace: time.Duration(c.GRPCMaxConnectionAgeGrace) * time.Second,
	}
}

func shutdownWithTimeout(shutdown func(context.Context) error, timeout time.Duration, what string) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "shutdown failed", "component", what, "error", err)
	}
}
