package service

import (
	"context"

	"github.com/clubhub-app/clubhub-backend/internal/logger"
)

// Maintenance runs periodic image cache upkeep: age-based expiry plus the
// reconciliation pass that repairs half-written records.
type Maintenance struct {
	images *ImageCache
	logger *logger.Logger
}

// NewMaintenance creates a Maintenance job.
func NewMaintenance(images *ImageCache, logger *logger.Logger) *Maintenance {
	return &Maintenance{
		images: images,
		logger: logger,
	}
}

// Run executes one maintenance pass. Failures are logged, not returned:
// the job is rescheduled regardless of outcome.
func (m *Maintenance) Run(ctx context.Context) {
	expired, err := m.images.CleanupOld(ctx)
	if err != nil {
		m.logger.Error("image cache cleanup failed", "error", err)
	} else if expired > 0 {
		m.logger.Info("removed expired cached images", "count", expired)
	}

	repaired, err := m.images.Reconcile(ctx)
	if err != nil {
		m.logger.Error("image cache reconciliation failed", "error", err)
	} else if repaired > 0 {
		m.logger.Info("repaired half-written image records", "count", repaired)
	}
}
