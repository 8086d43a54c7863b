package di

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"usuarios-api/cmd/api/infrastructure"
	"usuarios-api/internal/adapter/cache"
	"usuarios-api/internal/adapter/db/mongodb"
	"usuarios-api/internal/adapter/db/postgres"
	ginhandler "usuarios-api/internal/adapter/gin/handler"
	"usuarios-api/internal/adapter/ratelimit"
	"usuarios-api/internal/adapter/repository/cached"
	"usuarios-api/internal/config"
	"usuarios-api/internal/metrics"
	"usuarios-api/internal/usecase/user"
	redisclient "usuarios-api/pkg/redis"
)

// Store is a user repository that can report its own reachability.
type Store interface {
	user.Repository
	ginhandler.Pinger
}

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Mongo       *mongo.Client
	DB          *gorm.DB
	RedisClient *redisclient.Client
	Store       Store
	UserUC      user.Usecase
	RateLimiter ratelimit.Limiter
	Metrics     *metrics.Provider
	GinHandler  *ginhandler.UserHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}

	store, err := c.openStore(ctx)
	if err != nil {
		c.closeQuietly()
		return nil, err
	}
	c.Store = store

	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		c.closeQuietly()
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	c.RedisClient = rdb

	var repo user.Repository = store
	if rdb != nil {
		userCache := cache.NewRedisUserCache(rdb.Client, time.Duration(cfg.Redis.CacheTTL)*time.Second, l)
		repo = cached.NewCachedUserRepository(store, userCache, l)
	}

	c.UserUC = user.New(repo, l)
	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, l)

	if cfg.RateLimit.Enabled {
		limitCfg := ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.BurstCapacity,
		}
		if rdb != nil {
			c.RateLimiter = ratelimit.NewRedisLimiter(rdb.Client, limitCfg, l)
		} else {
			c.RateLimiter = ratelimit.NewLocalLimiter(limitCfg)
		}
	}

	if cfg.Metrics.Enabled {
		c.Metrics = metrics.NewProvider(cfg.Metrics.Namespace)
	}

	return c, nil
}

// openStore connects the configured backend and returns its repository.
func (c *Container) openStore(ctx context.Context) (Store, error) {
	switch c.Config.Store.Driver {
	case config.DriverPostgres:
		db, err := infrastructure.NewDatabase(c.Config, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db
		return postgres.NewUserRepoPG(db, c.Logger), nil
	default:
		client, err := infrastructure.NewMongoClient(ctx, c.Config, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MongoDB: %w", err)
		}
		c.Mongo = client

		repo := mongodb.NewUserRepoMongo(infrastructure.UserCollection(client, c.Config), c.Logger)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure indexes: %w", err)
		}
		return repo, nil
	}
}

// HealthDeps returns the dependencies the readiness check pings.
func (c *Container) HealthDeps() map[string]ginhandler.Pinger {
	deps := map[string]ginhandler.Pinger{"store": c.Store}
	if c.RedisClient != nil {
		deps["redis"] = c.RedisClient
	}
	return deps
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.Mongo != nil {
		timeout := time.Duration(c.Config.Mongo.TimeoutSeconds) * time.Second
		if err := infrastructure.CloseMongo(c.Mongo, timeout); err != nil {
			errs = append(errs, err)
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}

func (c *Container) closeQuietly() {
	if err := c.Close(); err != nil {
		c.Logger.Warn("failed to release partially initialized resources", zap.Error(err))
	}
}
