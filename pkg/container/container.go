package container

import (
	"context"
	"fmt"
	"time"

	"library-backend/internal/clock"
	"library-backend/internal/config"
	availabilityService "library-backend/internal/domains/availability/service"
	catalogRepo "library-backend/internal/domains/catalog/repository"
	fineRepo "library-backend/internal/domains/fine/repository"
	fineService "library-backend/internal/domains/fine/service"
	loanRepo "library-backend/internal/domains/loan/repository"
	loanService "library-backend/internal/domains/loan/service"
	roomRepo "library-backend/internal/domains/room/repository"
	roomService "library-backend/internal/domains/room/service"
	unitRepo "library-backend/internal/domains/unit/repository"
	unitService "library-backend/internal/domains/unit/service"
	infraCache "library-backend/internal/infrastructure/cache"
	infraDB "library-backend/internal/infrastructure/database"
	"library-backend/pkg/database"
	"library-backend/pkg/logger"
)

// Container is the root of the dependency graph. Everything in it is a
// singleton wired once at startup; callers (the HTTP layer, jobs, tests)
// pick services off it.
type Container struct {
	Config *config.Config
	Clock  clock.Clock

	// Infrastructure. Nil when running on the in-memory stores.
	DB    *infraDB.PostgresDB
	Redis *infraCache.RedisClient

	TxManager database.TxManager

	// Repositories
	CatalogRepo catalogRepo.RepositoryInterface
	UnitRepo    unitRepo.RepositoryInterface
	LoanRepo    loanRepo.RepositoryInterface
	FineRepo    fineRepo.RepositoryInterface
	RoomRepo    roomRepo.RepositoryInterface

	// Services
	UnitService         unitService.ServiceInterface
	LoanService         loanService.ServiceInterface
	FineService         fineService.ServiceInterface
	RoomService         roomService.ServiceInterface
	AvailabilityService availabilityService.ServiceInterface
}

// NewContainer wires the full dependency graph over PostgreSQL and Redis.
// Initialization order matters: config, infrastructure, repositories,
// services.
func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("initializing container", map[string]interface{}{
		"environment": cfg.App.Environment,
	})

	c := &Container{
		Config: cfg,
		Clock:  clock.System(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := infraDB.NewPostgresDB(cfg.Database)
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db

	// Redis is a read-side cache for title metadata only; the core keeps
	// working without it.
	redis := infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redis.Connect(ctx); err != nil {
		logger.Warn("redis unavailable, catalog cache disabled", map[string]interface{}{
			"error": err.Error(),
		})
		redis = nil
	}
	c.Redis = redis

	c.TxManager = database.NewPgxTxManager(db.Pool)

	c.CatalogRepo = catalogRepo.NewRepository(db.Pool)
	if redis != nil {
		c.CatalogRepo = catalogRepo.NewCached(c.CatalogRepo, redis, cfg.Redis.TitleTTL)
	}
	c.UnitRepo = unitRepo.NewRepository(db.Pool)
	c.LoanRepo = loanRepo.NewRepository(db.Pool)
	c.FineRepo = fineRepo.NewRepository(db.Pool)
	c.RoomRepo = roomRepo.NewRepository(db.Pool)

	c.initServices()

	logger.Info("container initialized", nil)
	return c, nil
}

// NewMemoryContainer wires the dependency graph over in-memory stores.
// Used by the test suite and for embedded runs; cfg and clk let callers
// pin policy and time.
func NewMemoryContainer(cfg *config.Config, clk clock.Clock) *Container {
	c := &Container{
		Config: cfg,
		Clock:  clk,
	}

	catalog := catalogRepo.NewMemory()
	units := unitRepo.NewMemory()
	loans := loanRepo.NewMemory()
	fines := fineRepo.NewMemory()
	rooms := roomRepo.NewMemory()

	c.CatalogRepo = catalog
	c.UnitRepo = units
	c.LoanRepo = loans
	c.FineRepo = fines
	c.RoomRepo = rooms
	c.TxManager = database.NewMemoryTxManager(catalog, units, loans, fines, rooms)

	c.initServices()
	return c
}

func (c *Container) initServices() {
	now := c.Clock.Now

	c.UnitService = unitService.NewService(c.UnitRepo, c.CatalogRepo, now)
	c.FineService = fineService.NewService(c.FineRepo, now)
	c.LoanService = loanService.NewService(
		c.LoanRepo,
		c.UnitRepo,
		c.FineRepo,
		c.CatalogRepo,
		c.TxManager,
		c.Config.Loan,
		now,
	)
	c.RoomService = roomService.NewService(c.RoomRepo, c.TxManager, c.Config.Room, now)
	c.AvailabilityService = availabilityService.NewService(c.CatalogRepo, c.UnitRepo, c.RoomRepo, now)
}

// Cleanup releases infrastructure resources on shutdown.
func (c *Container) Cleanup() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Error("failed to close redis", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	logger.Info("container cleanup completed", nil)
}
