package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/papershelf/papershelf/internal/analytics"
	"github.com/papershelf/papershelf/internal/browse/cache"
	"github.com/papershelf/papershelf/internal/browse/handler"
	"github.com/papershelf/papershelf/internal/browse/prefs"
	"github.com/papershelf/papershelf/internal/catalog/source"
	"github.com/papershelf/papershelf/internal/pipeline"
	"github.com/papershelf/papershelf/pkg/config"
	"github.com/papershelf/papershelf/pkg/health"
	"github.com/papershelf/papershelf/pkg/kafka"
	"github.com/papershelf/papershelf/pkg/logger"
	"github.com/papershelf/papershelf/pkg/metrics"
	"github.com/papershelf/papershelf/pkg/middleware"
	"github.com/papershelf/papershelf/pkg/postgres"
	pkgredis "github.com/papershelf/papershelf/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting catalog service", "port", cfg.Server.Port, "source", cfg.Catalog.Source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var src source.Source
	var pgClient *postgres.Client
	switch cfg.Catalog.Source {
	case "postgres":
		pgClient, err = postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pgClient.Close()
		src = source.NewPostgresSource(pgClient)
	default:
		src = source.NewFileSource(cfg.Catalog)
	}

	snap, err := src.Load(ctx)
	if err != nil {
		slog.Error("failed to load catalog snapshot", "error", err)
		os.Exit(1)
	}

	engine := pipeline.NewEngine(snap, pipeline.Options{
		QueryMode:   pipeline.ParseQueryMode(cfg.Browse.QueryMode),
		GroupBy:     pipeline.ParseGroupMode(cfg.Browse.GroupBy),
		PageSize:    cfg.Browse.PageSize,
		MaxPageSize: cfg.Browse.MaxPageSize,
		Targets: pipeline.TargetResolver{
			ReadURL:      cfg.Catalog.ReadURL,
			DownloadURL:  cfg.Catalog.DownloadURL,
			NoticeTarget: cfg.Catalog.NoticeTarget,
		},
	})

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		m.SnapshotRecords.Set(float64(len(snap.Records)))
		m.SnapshotTopics.Set(float64(snap.Topics.Len()))
		m.LockedRecords.Set(float64(engine.LockedCount()))

		go func() {
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			slog.Info("metrics server listening", "addr", addr)
			if err := http.ListenAndServe(addr, metrics.Handler()); err != nil {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}

	var planCache *cache.PlanCache
	var prefStore *prefs.Store
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, plan caching and preferences disabled", "error", err)
	} else {
		defer redisClient.Close()
		planCache = cache.New(redisClient, cfg.Redis, snap.Version)
		prefStore = prefs.NewStore(redisClient)
		slog.Info("plan cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.BrowseEvents)
	defer producer.Close()
	collector := analytics.NewCollector(producer, 10000)
	collector.Start(ctx)
	defer collector.Close()

	aggregator := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.BrowseEvents, analytics.HandleEvent(aggregator))
	go func() {
		if err := aggregator.Start(ctx, consumer); err != nil {
			slog.Error("analytics aggregator error", "error", err)
		}
	}()
	analyticsH := analytics.NewHandler(aggregator)

	checker := health.NewChecker()
	checker.Register("snapshot", func(ctx context.Context) health.ComponentHealth {
		if len(snap.Records) > 0 {
			return health.ComponentHealth{
				Status:  health.StatusUp,
				Message: fmt.Sprintf("%d records", len(snap.Records)),
			}
		}
		return health.ComponentHealth{Status: health.StatusDegraded, Message: "empty catalog"}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	if pgClient != nil {
		checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
			if err := pgClient.DB.PingContext(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	h := handler.New(engine, planCache, prefStore, collector, m)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/browse", h.Browse)
	mux.HandleFunc("GET /api/v1/topics", h.Topics)
	mux.HandleFunc("GET /api/v1/collections", h.Collections)
	mux.HandleFunc("GET /api/v1/records/{id}/targets", h.RecordTargets)
	mux.HandleFunc("GET /api/v1/preferences/view", h.ViewPref)
	mux.HandleFunc("PUT /api/v1/preferences/view", h.SetViewPref)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.CORS(middleware.DefaultCORSConfig())(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("catalog service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("catalog service stopped")
}
