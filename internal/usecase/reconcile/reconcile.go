package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/wb-go/wbf/zlog"

	cloud "floresya-images/internal/repository/image/cloud/minio"
)

type imageRepository interface {
	HasRecordWithURL(ctx context.Context, url string) (bool, error)
}

type fileRepository interface {
	ListObjects(ctx context.Context, prefix string) ([]cloud.ObjectInfo, error)
	RemoveObject(ctx context.Context, path string) error
	PublicURL(path string) string
}

// Sweeper removes storage objects that no persisted record references.
// Orphans appear when a pipeline run uploads derivatives but the atomic
// persistence call never happens (request cancelled, persistence failed).
type Sweeper struct {
	repo     imageRepository
	fileRepo fileRepository
	minAge   time.Duration
	logger   *zlog.Zerolog
}

func NewSweeper(repo imageRepository, fileRepo fileRepository, minAge time.Duration, logger *zlog.Zerolog) *Sweeper {
	return &Sweeper{
		repo:     repo,
		fileRepo: fileRepo,
		minAge:   minAge,
		logger:   logger,
	}
}

// Sweep walks the products/ prefix once and deletes unreferenced objects
// older than minAge. The age guard keeps the sweep from racing an upload
// whose persistence call has not committed yet.
func (s *Sweeper) Sweep(ctx context.Context) (removed int, err error) {
	objects, err := s.fileRepo.ListObjects(ctx, "products/")
	if err != nil {
		return 0, fmt.Errorf("failed to list product objects: %w", err)
	}

	cutoff := time.Now().Add(-s.minAge).Unix()

	for _, obj := range objects {
		if obj.LastModified > cutoff {
			continue
		}

		referenced, err := s.repo.HasRecordWithURL(ctx, s.fileRepo.PublicURL(obj.Key))
		if err != nil {
			return removed, fmt.Errorf("failed to check reference for %s: %w", obj.Key, err)
		}
		if referenced {
			continue
		}

		if err := s.fileRepo.RemoveObject(ctx, obj.Key); err != nil {
			s.logger.Error().Err(err).Str("key", obj.Key).Msg("Failed to remove orphan")
			continue
		}

		removed++
		s.logger.Info().Str("key", obj.Key).Msg("Removed orphaned object")
	}

	return removed, nil
}

// Run sweeps on a fixed interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Sweep(ctx)
			if err != nil {
				s.logger.Error().Err(err).Msg("Reconciliation sweep failed")
				continue
			}
			s.logger.Info().Int("removed", removed).Msg("Reconciliation sweep completed")
		}
	}
}
