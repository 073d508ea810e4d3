package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/wavesim/wavesim/internal/compiler"
	"github.com/wavesim/wavesim/internal/generator"
	"github.com/wavesim/wavesim/internal/metrics"
	"github.com/wavesim/wavesim/internal/pipeline"
	"github.com/wavesim/wavesim/internal/simd"
	"github.com/wavesim/wavesim/pkg/config"
	"github.com/wavesim/wavesim/pkg/logger"
)

func main() {
	var configPath string
	var grpcAddr string
	var httpAddr string
	var logLevel string

	flag.StringVar(&configPath, "config", "", "path to wavesim.yaml (optional)")
	flag.StringVar(&grpcAddr, "grpc-addr", "", "gRPC listen address (overrides config)")
	flag.StringVar(&httpAddr, "http-addr", "", "HTTP listen address (overrides config)")
	flag.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flag.Parse()

	cfg, err := loadConfig(configPath, grpcAddr, httpAddr, logLevel)
	if err != nil {
		logger.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	logger.SetDefault(logger.NewText(cfg.LogLevel, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file (or defaults), applies the non-empty flag
// overrides and validates the result.
func loadConfig(path, grpcAddr, httpAddr, logLevel string) (*config.Config, error) {
	cfg, err := config.LoadConfigOrDefault(path)
	if err != nil {
		return nil, err
	}
	if grpcAddr != "" {
		cfg.Server.GRPCAddr = grpcAddr
	}
	if httpAddr != "" {
		cfg.Server.HTTPAddr = httpAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	shutdownTimeout, err := cfg.Server.GetShutdownTimeout()
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	store := simd.NewRunStore()
	executor := simd.NewRunExecutor(store, pipeline.New(compiler.New(), generator.NewGenerator(), recorder))
	executor.SetMaxPoints(cfg.Server.MaxPoints)
	executor.SetNotifier(simd.NewNotifier())

	// TODO: add TLS and authentication before exposing the gRPC port outside a trusted network.
	grpcServer := grpc.NewServer()
	simd.RegisterWaveServiceServer(grpcServer, simd.NewWaveGRPCServer(store, executor, cfg.RunDefaults))

	grpcLis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           simd.NewHTTPServer(store, executor, cfg, recorder).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("gRPC server listening", "addr", cfg.Server.GRPCAddr)
		return grpcServer.Serve(grpcLis)
	})

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		grpcServer.GracefulStop()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
