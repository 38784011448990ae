package notification

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CleanupService handles background cleanup tasks for notifications
type CleanupService struct {
	repo Repository
	log  *zap.Logger
}

func NewCleanupService(repo Repository, log *zap.Logger) *CleanupService {
	return &CleanupService{repo: repo, log: log}
}

// PruneRead removes read notifications older than keep.
func (c *CleanupService) PruneRead(ctx context.Context, now time.Time, keep time.Duration) (int64, error) {
	start := time.Now()

	deleted, err := c.repo.DeleteReadBefore(ctx, now.Add(-keep))
	if err != nil {
		c.log.Error("notification cleanup failed", zap.Error(err))
		return 0, err
	}

	c.log.Info("notification cleanup completed",
		zap.Int64("deleted", deleted),
		zap.Duration("took", time.Since(start)),
	)
	return deleted, nil
}
