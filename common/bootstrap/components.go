package bootstrap

import (
	"context"

	"github.com/floorhand/kanban/common/config"
	"github.com/floorhand/kanban/common/db"
	"github.com/floorhand/kanban/common/logger"
	"github.com/floorhand/kanban/common/redis"
)

// Components holds all initialized service components
type Components struct {
	Config *config.Config
	Logger *logger.Logger
	DB     *db.DB
	Redis  *redis.Client

	cleanupFuncs []func() error
}

// addCleanup registers a cleanup function, run in reverse order on shutdown
func (c *Components) addCleanup(fn func() error) {
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}

// Shutdown runs all registered cleanup functions
func (c *Components) Shutdown(ctx context.Context) {
	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		if err := c.cleanupFuncs[i](); err != nil {
			if c.Logger != nil {
				c.Logger.Warn("cleanup failed", "error", err)
			}
		}
	}
}
