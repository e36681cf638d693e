package bootstrap

import (
	"github.com/floorhand/kanban/common/config"
	"github.com/floorhand/kanban/common/logger"
)

// Option configures bootstrap setup
type Option func(*options)

type options struct {
	customConfig   *config.Config
	customLogger   *logger.Logger
	skipDB         bool
	skipRedis      bool
	skipMigrations bool
}

func defaultOptions() *options {
	return &options{}
}

// WithConfig uses a pre-built config instead of loading from the environment
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.customConfig = cfg }
}

// WithLogger uses a pre-built logger
func WithLogger(log *logger.Logger) Option {
	return func(o *options) { o.customLogger = log }
}

// SkipDB skips database initialization
func SkipDB() Option {
	return func(o *options) { o.skipDB = true }
}

// SkipRedis skips redis initialization
func SkipRedis() Option {
	return func(o *options) { o.skipRedis = true }
}

// SkipMigrations connects to the database without applying migrations
func SkipMigrations() Option {
	return func(o *options) { o.skipMigrations = true }
}
