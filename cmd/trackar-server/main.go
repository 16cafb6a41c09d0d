package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"golang.org/x/sync/errgroup"

	"github.com/trackar/server/internal/app"
	"github.com/trackar/server/internal/config"
	"github.com/trackar/server/internal/grpcapi"
	"github.com/trackar/server/internal/httpapi"
	"github.com/trackar/server/internal/telemetry"
)

var version = "dev"

func main() {
	logger := log.New(os.Stdout, "trackar-server ", log.LstdFlags|log.LUTC)

	if err := config.LoadDotEnv(); err != nil {
		logger.Fatalf("dotenv: %v", err)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "trackar-server", cfg.OTelEndpoint, version)
	if err != nil {
		logger.Printf("tracing disabled: %v", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("startup: %v", err)
	}
	defer a.Close()

	a.Pruner.Start(ctx)
	defer a.Pruner.Stop()

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:            logger,
		Addr:              cfg.HTTPAddr,
		AccessService:     a.Access,
		AttendanceService: a.Attendance,
	})

	// gRPC health
	health, err := grpcapi.Listen(cfg.GRPCAddr, logger)
	if err != nil {
		logger.Fatalf("grpc: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Printf("listening on %s (version %s)", cfg.HTTPAddr, version)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return health.Serve(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		health.SetServing(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Printf("server error: %v", err)
	}
	logger.Printf("stopped")
}
