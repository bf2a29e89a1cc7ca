package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"

	appservice "github.com/turtacn/tips/internal/application/service"
	"github.com/turtacn/tips/internal/config"
	domainservice "github.com/turtacn/tips/internal/domain/service"
	"github.com/turtacn/tips/internal/infrastructure/artifacts"
	"github.com/turtacn/tips/internal/infrastructure/cache"
	"github.com/turtacn/tips/internal/infrastructure/monitoring"
	grpchandlers "github.com/turtacn/tips/internal/interfaces/grpc"
	"github.com/turtacn/tips/internal/interfaces/http"
	"github.com/turtacn/tips/internal/interfaces/http/handlers"
	"github.com/turtacn/tips/pkg/logger"
)

// configEnv names an explicit config file; otherwise config.yaml is searched for.
const configEnv = "TIPS_CONFIG"

func main() {
	// Load config
	cfg, err := config.LoadConfig(os.Getenv(configEnv))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize tracing
	tracing, err := monitoring.NewTracingManager(&cfg.Tracing, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize tracer", err)
	}
	defer func() {
		if err := tracing.Shutdown(context.Background()); err != nil {
			appLogger.Error(context.Background(), "Tracer shutdown failed", err)
		}
	}()

	// Initialize metrics
	metrics := monitoring.NewMetrics(cfg.Monitoring.Namespace, prometheus.DefaultRegisterer)
	scoreMetrics := monitoring.NewMetricsAdapter(metrics)

	// Artifacts are loaded once before serving; a failure here is fatal.
	source, redisConn, err := artifacts.OpenSource(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to open artifact source", err)
	}
	var redisPinger handlers.Pinger
	if redisConn != nil {
		defer redisConn.Close()
		redisPinger = redisConn
	}

	loader := artifacts.NewLoader(source, artifacts.OptionsFromConfig(cfg.Artifacts), scoreMetrics, appLogger)
	loaded, err := loader.Load(ctx)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to load model artifacts", err,
			logger.Source(source.Describe()),
		)
	}
	appLogger.Info(ctx, "Model artifacts in service",
		logger.Fingerprint(loaded.Metadata.Fingerprint()),
	)

	if cfg.Artifacts.Watch {
		if fileSource, ok := source.(*artifacts.FileSource); ok {
			watcher, err := artifacts.NewWatcher(loader, fileSource, cfg.Artifacts.WatchDebounce, appLogger)
			if err != nil {
				appLogger.Fatal(ctx, "Failed to watch artifact directory", err)
			}
			defer watcher.Close()
			go watcher.Run(ctx)
		}
	}

	var scoreCache domainservice.ScoreCache
	if cfg.Cache.Enabled {
		scoreCache = cache.NewScoreCache(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	}

	// Initialize application services
	scoringSvc := appservice.NewScoringAppService(loader, scoreCache, scoreMetrics, appLogger)

	// Initialize HTTP handlers and router
	router := http.NewRouter(http.RouterDependencies{
		Config:         cfg,
		Logger:         appLogger,
		ScoringHandler: handlers.NewScoringHandler(scoringSvc, appLogger),
		HealthHandler:  handlers.NewHealthHandler(scoringSvc, redisPinger, appLogger),
		Metrics:        metrics,
	})

	serveErr := make(chan error, 2)
	go func() { serveErr <- router.Start() }()

	var grpcServer *grpc.Server
	if cfg.GRPC.Enabled {
		grpcServer = startGRPCServer(cfg, scoringSvc, appLogger, serveErr)
	}

	select {
	case err := <-serveErr:
		if err != nil {
			appLogger.Error(ctx, "Server failed", err)
		}
	case <-ctx.Done():
	}

	// 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := router.Stop(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "Server forced to shutdown", err)
	}
	appLogger.Info(shutdownCtx, "HTTP server stopped")
	if grpcServer != nil {
		grpcServer.GracefulStop()
		appLogger.Info(shutdownCtx, "gRPC server stopped")
	}
}

func startGRPCServer(cfg *config.Config, scoringSvc appservice.ScoringAppService, log logger.Logger, serveErr chan<- error) *grpc.Server {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(context.Background(), "Failed to listen for gRPC", err)
	}

	grpcServer := grpchandlers.NewScoringGRPCServer(scoringSvc, log)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			serveErr <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	log.Info(context.Background(), "gRPC server listening", logger.String("addr", addr))
	return grpcServer
}

//Personal.AI order the ending
