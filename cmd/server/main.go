// Command server serves the simulator over HTTP and gRPC.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/xtding233/montyhall/internal/config"
	"github.com/xtding233/montyhall/internal/grpcapi"
	"github.com/xtding233/montyhall/internal/httpapi"
	"github.com/xtding233/montyhall/internal/scenario"
	"github.com/xtding233/montyhall/internal/simulator"
	"github.com/xtding233/montyhall/internal/store"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	httpAddr := flag.String("http", "", "HTTP listen address (overrides MONTYHALL_HTTP_ADDR)")
	grpcAddr := flag.String("grpc", "", "gRPC listen address (overrides MONTYHALL_GRPC_ADDR)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *grpcAddr != "" {
		cfg.GRPCAddr = *grpcAddr
	}
	logger := config.SetupLogger(cfg.Log, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	loader := scenario.NewLoader(cfg.ScenarioDir)
	// fail fast on a broken catalogue
	if _, _, err := loader.Resolve(cfg.Profile, scenario.Overrides{}); err != nil {
		return err
	}
	if cfg.WatchInterval > 0 && cfg.ScenarioDir != "" {
		w := scenario.WatchLoader(loader, cfg.Profile, cfg.WatchInterval)
		w.Start()
		defer w.Stop()
	}

	opts := simulator.Options{
		Scenarios: loader,
		Profile:   cfg.Profile,
		MaxTrials: cfg.MaxTrials,
		Logger:    logger,
	}
	if cfg.DBPath != "" {
		db, err := store.NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		opts.Store = db
	}
	sim := simulator.New(opts)

	grpcServer, err := grpcapi.NewWithAddr(cfg.GRPCAddr, sim, logger)
	if err != nil {
		return err
	}
	handler := httpapi.NewHandler(sim, httpapi.Options{
		RatePerSec: cfg.RatePerSec,
		RateBurst:  cfg.RateBurst,
		Logger:     logger,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return grpcServer.Serve(ctx) })
	g.Go(func() error { return httpapi.Serve(ctx, cfg.HTTPAddr, handler, logger) })
	return g.Wait()
}
