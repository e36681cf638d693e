package bootstrap

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/floorhand/kanban/common/config"
	"github.com/floorhand/kanban/common/db"
	"github.com/floorhand/kanban/common/logger"
	"github.com/floorhand/kanban/common/redis"
)

// Setup initializes all service components.
// This is the main entry point for the service binary.
func Setup(ctx context.Context, serviceName string, opts ...Option) (*Components, error) {
	// Apply options
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	components := &Components{
		cleanupFuncs: make([]func() error, 0),
	}

	// 1. Load configuration
	var err error
	if options.customConfig != nil {
		components.Config = options.customConfig
	} else {
		components.Config, err = config.Load(serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	// 2. Initialize logger
	if options.customLogger != nil {
		components.Logger = options.customLogger
	} else {
		components.Logger = logger.New(
			components.Config.Service.LogLevel,
			components.Config.Service.LogFormat,
		)
	}

	components.Logger.Info("initializing service",
		"service", serviceName,
		"environment", components.Config.Service.Environment,
		"joint_strategy", components.Config.Scan.JointStrategy,
	)

	// 3. Initialize database (if not skipped)
	if !options.skipDB {
		components.Logger.Info("connecting to database")
		components.DB, err = db.New(ctx, components.Config, components.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		// Register cleanup
		components.addCleanup(func() error {
			components.Logger.Info("closing database connection")
			components.DB.Close()
			return nil
		})

		// 4. Apply schema migrations
		if !options.skipMigrations {
			components.Logger.Info("applying migrations",
				"path", components.Config.Database.MigrationsPath,
			)
			if err := components.DB.Migrate(components.Config.Database.MigrationsPath, components.Logger); err != nil {
				components.Shutdown(ctx)
				return nil, fmt.Errorf("failed to apply migrations: %w", err)
			}
		}
	}

	// 5. Initialize redis (if not skipped)
	if !options.skipRedis && components.Config.Redis.Enabled {
		components.Logger.Info("connecting to redis",
			"addr", components.Config.Redis.Addr,
		)

		client := goredis.NewClient(&goredis.Options{
			Addr:     components.Config.Redis.Addr,
			Password: components.Config.Redis.Password,
			DB:       components.Config.Redis.DB,
		})
		components.Redis = redis.NewClient(client, components.Logger)

		if err := components.Redis.Ping(ctx); err != nil {
			// The summary cache is an optimization; run without it rather
			// than refusing to start the scan line.
			components.Logger.Warn("redis unreachable, summary cache disabled", "error", err)
			components.Redis = nil
			_ = client.Close()
		} else {
			components.addCleanup(func() error {
				components.Logger.Info("closing redis connection")
				return components.Redis.Close()
			})
		}
	}

	components.Logger.Info("service initialization complete",
		"service", serviceName,
		"db", components.DB != nil,
		"redis", components.Redis != nil,
	)

	return components, nil
}
