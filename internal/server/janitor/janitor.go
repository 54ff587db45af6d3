// Package janitor periodically drops expired temp URL registrations.
package janitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dmitrijs2005/filekeeper/internal/logging"
)

// purgeTimeout bounds one purge run.
const purgeTimeout = time.Minute

// Purger is the part of the registry the janitor needs.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// PurgeObserver receives the number of removed registrations.
type PurgeObserver interface {
	ObservePurge(n int64)
}

// Manager runs the purge job on a cron schedule.
type Manager struct {
	cron     *cron.Cron
	logger   logging.Logger
	registry Purger
	observer PurgeObserver
}

func NewManager(logger logging.Logger, registry Purger, observer PurgeObserver) *Manager {
	return &Manager{
		// overlapping runs are skipped rather than queued
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("module", "janitor"),
		registry: registry,
		observer: observer,
	}
}

// Run schedules the purge job and blocks until ctx is done. An empty
// schedule disables the janitor and Run returns immediately.
func (m *Manager) Run(ctx context.Context, schedule string) error {
	if schedule == "" {
		m.logger.Info(ctx, "Janitor disabled")
		return nil
	}
	if _, err := m.cron.AddFunc(schedule, m.purge); err != nil {
		return fmt.Errorf("invalid janitor schedule %q: %w", schedule, err)
	}

	m.cron.Start()
	m.logger.Info(ctx, "Janitor started", "schedule", schedule)

	<-ctx.Done()

	<-m.cron.Stop().Done()
	m.logger.Info(ctx, "Janitor stopped")
	return nil
}

func (m *Manager) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	n, err := m.registry.PurgeExpired(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			m.logger.Error(ctx, "Temp URL purge timed out", "timeout", purgeTimeout)
		} else {
			m.logger.Error(ctx, "Failed to purge temp URLs", "error", err)
		}
		return
	}
	m.observer.ObservePurge(n)
	m.logger.Debug(ctx, "Purged expired temp URLs", "count", n)
}
