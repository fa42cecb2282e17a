package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"interview-session-service/internal/app"
	"interview-session-service/internal/config"
	"interview-session-service/internal/domain"
	"interview-session-service/internal/infra/memory"
	pgstore "interview-session-service/internal/infra/postgres"
	redisstore "interview-session-service/internal/infra/redis"
	"interview-session-service/internal/resume"
	transport "interview-session-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the interview server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	catalogs := buildCatalogRepository(cfg, redisClient, pool)
	catalog, err := catalogs.GetCatalog(ctx, cfg.Interview.Catalog.ID)
	if err != nil {
		return err
	}

	machine, err := app.NewMachine(catalog, app.HeuristicScorer{})
	if err != nil {
		return err
	}

	store := buildSnapshotStore(cfg, redisClient, pool)
	service, err := app.NewInterviewService(ctx, machine, store, app.Options{
		TickInterval: config.TTLDuration(cfg.Interview.TickInterval, time.Second),
		Extractor:    resume.NewExtractor(),
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	defer service.Close()

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewRouter(service, cfg.Server.AllowedOrigins, logger),
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting interview service",
			zap.String("port", finalPort),
			zap.String("catalog", catalog.ID),
			zap.String("store", cfg.Interview.Store))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildCatalogRepository picks the catalog source (inline config, Postgres,
// or the built-in reference set) and puts a cache in front of it.
func buildCatalogRepository(cfg config.Config, client *redis.Client, pool *pgxpool.Pool) app.CatalogRepository {
	var loader memory.CatalogLoader
	switch {
	case len(cfg.Interview.Catalog.Questions) > 0:
		loader = memory.NewStaticCatalogLoader(cfg.InlineCatalog())
	case pool != nil:
		loader = memory.NewFallbackCatalogLoader(
			pgstore.NewCatalogLoader(pool),
			memory.NewStaticCatalogLoader(domain.ReferenceCatalog()),
		)
	default:
		loader = memory.NewStaticCatalogLoader(domain.ReferenceCatalog())
	}

	ttl := config.TTLDuration(cfg.Interview.Catalog.TTL, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	if client != nil {
		return redisstore.NewCatalogRepository(client, loader, ttl)
	}
	return memory.NewCatalogRepository(loader, ttl)
}

func buildSnapshotStore(cfg config.Config, client *redis.Client, pool *pgxpool.Pool) app.SnapshotRepository {
	switch cfg.Interview.Store {
	case config.StoreRedis:
		return redisstore.NewSnapshotStore(client, cfg.Interview.Workspace, config.TTLDuration(cfg.Interview.SnapshotTTL, 0))
	case config.StorePostgres:
		return pgstore.NewSnapshotStore(pool, cfg.Interview.Workspace)
	default:
		return memory.NewSnapshotStore()
	}
}
