// internal/app/system/workers/jobs.go
package workers

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Pruner drops expired entries from an in-memory cache.
type Pruner interface {
	Prune() int
}

// TenantCachePruneJob evicts expired tenant directory entries so hosts that
// are looked up once do not stay resident forever.
func TenantCachePruneJob(dir Pruner, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "tenant-cache-prune",
		Interval: interval,
		Timeout:  5 * time.Second,
		Run: func(ctx context.Context) error {
			if n := dir.Prune(); n > 0 {
				logger.Debug("pruned tenant cache", zap.Int("count", n))
			}
			return nil
		},
	}
}
