package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"tricommerce/internal/audit"
	"tricommerce/internal/config"
	"tricommerce/internal/event"
	"tricommerce/internal/handler"
	"tricommerce/internal/idempotency"
	"tricommerce/internal/observability"
	"tricommerce/internal/repository"
	"tricommerce/internal/repository/memory"
	"tricommerce/internal/service"
	"tricommerce/internal/ws"
	"tricommerce/pkg/database"
	"tricommerce/pkg/jwt"
	"tricommerce/pkg/logger"
	"tricommerce/pkg/rabbitmq"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	flag.Parse()

	// 1. Config and logging
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	// 2. Persistence
	store, closeStore, err := openStore(cfg.Database, log)
	if err != nil {
		return err
	}
	closers = append(closers, closeStore)
	if err := seedReferenceData(ctx, store); err != nil {
		return fmt.Errorf("seed reference data: %w", err)
	}

	// 3. Event fan-out: websocket hub plus the optional queue
	hub := ws.NewHub(log.Named("ws"))
	go hub.Run(ctx)
	publishers := []event.Publisher{hub}
	if cfg.RabbitMQ.URL != "" {
		pool, err := rabbitmq.NewChannelPool(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, cfg.RabbitMQ.PoolSize, log.Named("rabbitmq"))
		if err != nil {
			return err
		}
		closers = append(closers, pool.Close)
		publishers = append(publishers, rabbitmq.NewPublisher(pool, cfg.RabbitMQ.Queue))
	}

	// 4. Audit trail and checkout idempotency
	var recorder audit.Recorder = &audit.Memory{}
	if cfg.MongoDB.URI != "" {
		mongoRecorder, err := audit.NewMongoRecorder(cfg.MongoDB.URI, cfg.MongoDB.Database, cfg.MongoDB.Collection)
		if err != nil {
			return err
		}
		closers = append(closers, func() { _ = mongoRecorder.Close(context.Background()) })
		recorder = mongoRecorder
	} else {
		log.Warn("mongodb.uri not set, audit history is kept in memory")
	}

	var keys idempotency.Store = idempotency.NewMemoryStore(cfg.Redis.IdempotencyTTL)
	if cfg.Redis.Addr != "" {
		redisStore := idempotency.NewRedisStore(idempotency.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}, cfg.Redis.IdempotencyTTL)
		if err := redisStore.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		closers = append(closers, func() { _ = redisStore.Close() })
		keys = redisStore
	}

	// 5. Services
	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL)
	deps := service.Deps{
		Store:     store,
		Events:    event.NewFanout(log.Named("events"), publishers...),
		Audit:     recorder,
		Logger:    log,
		TxTimeout: cfg.Database.TxTimeout,
	}
	authService := service.NewAuthService(deps, tokens)
	orderService := service.NewOrderService(deps)

	if cfg.Otel.Enabled {
		instruments, shutdown, err := observability.Init(ctx, cfg.Otel.ServiceName)
		if err != nil {
			return fmt.Errorf("otel: %w", err)
		}
		closers = append(closers, func() { _ = shutdown(context.Background()) })
		orderService = observability.NewOrderService(orderService,
			observability.WithTracer(instruments.Tracer("tricommerce/orders")),
			observability.WithMeter(instruments.Meter("tricommerce/orders")),
			observability.WithLogger(log.Named("orders")),
		)
	}

	if cfg.Admin.Password != "" {
		if err := authService.SeedAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.FullName); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	// 6. HTTP
	app := handler.NewApp(cfg.Server.Name)
	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	handler.Register(app, handler.Handlers{
		Auth:      handler.NewAuthHandler(authService, tokens),
		Cart:      handler.NewCartHandler(service.NewCartService(deps)),
		Order:     handler.NewOrderHandler(orderService, keys, log.Named("orders")),
		Catalog:   handler.NewCatalogHandler(service.NewCatalogService(deps)),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(deps)),
		Hub:       hub,
	}, tokens)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Server.Addr()))
		errCh <- app.Listen(cfg.Server.Addr())
	}()

	// 7. Graceful shutdown
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}

// openStore connects PostgreSQL when database.url is set and falls back to the
// in-memory store otherwise.
func openStore(cfg config.DatabaseConfig, log *zap.Logger) (repository.Store, func(), error) {
	if cfg.URL == "" {
		log.Warn("database.url not set, using the in-memory store")
		return memory.New(), func() {}, nil
	}

	db, err := database.ConnectDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return repository.NewGormStore(db), func() { _ = database.Close(db) }, nil
}

func seedReferenceData(ctx context.Context, store repository.Store) error {
	if err := store.Categories().SeedDefaults(ctx); err != nil {
		return err
	}
	if err := store.References().SeedDefaults(ctx); err != nil {
		return err
	}
	return store.Statuses().SeedDefaults(ctx)
}
