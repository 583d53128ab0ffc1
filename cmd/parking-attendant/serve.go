package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	dbpkg "github.com/Kinsa/parking-attendant/internal/db"
	"github.com/Kinsa/parking-attendant/internal/grpcapi"
	"github.com/Kinsa/parking-attendant/internal/httpapi"
	"github.com/Kinsa/parking-attendant/internal/parking/service"
	"github.com/Kinsa/parking-attendant/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, c, cmd.ErrOrStderr())
		},
	}
}

func runServe(ctx context.Context, c *commandContext, logOut io.Writer) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	// One server per database file.
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("mkdir db dir: %w", err)
	}
	lock := flock.New(cfg.DBPath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another parking-attendant server is already using %s", cfg.DBPath)
	}
	defer func() { _ = lock.Unlock() }()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName: "parking-attendant",
		Version:     version,
		Stdout:      cfg.TraceStdout,
	})
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	a, err := c.openApp(ctx, logOut)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	if cfg.SeedDev {
		if cfg.Env != "dev" {
			logger.Warn("seed_dev ignored outside dev", slog.String("env", cfg.Env))
		} else {
			n, err := dbpkg.SeedDev(ctx, a.db, dbpkg.SeedDevOptions{Now: time.Now().In(a.loc)})
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			logger.Info("dev fixtures loaded", slog.Int("entries", n))
		}
	}

	httpSrv := httpapi.NewServer(httpapi.Dependencies{
		Logger:        logger,
		Addr:          cfg.HTTPAddr,
		LookupService: a.lookup,
		EntryService:  a.entries,
		Health:        a.db.PingContext,
	})

	var (
		grpcSrv *grpcapi.Server
		grpcLis net.Listener
	)
	if cfg.GRPCAddr != "" {
		grpcLis, err = net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("grpc listen %s: %w", cfg.GRPCAddr, err)
		}
		grpcSrv = grpcapi.NewServer(grpcapi.Dependencies{
			Logger:        logger,
			LookupService: a.lookup,
			EntryService:  a.entries,
		})
	}

	pruner := service.NewEntryPruner(a.store, service.PrunerConfig{
		RetentionDays: cfg.EntryRetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
		Location:      a.loc,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http listening", slog.String("addr", cfg.HTTPAddr))
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})

	if grpcSrv != nil {
		g.Go(func() error {
			logger.Info("grpc listening", slog.String("addr", grpcLis.Addr().String()))
			if err := grpcSrv.Serve(grpcLis); err != nil {
				return fmt.Errorf("grpc: %w", err)
			}
			return nil
		})
	}

	pruner.Start(gctx)

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		pruner.Stop()
		if grpcSrv != nil {
			grpcSrv.Stop(shutdownCtx)
		}
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
