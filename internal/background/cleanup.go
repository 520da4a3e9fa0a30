package background

import (
	"context"
	"log/slog"
	"time"
)

// ExpiredSessionSweeper removes sessions past their expiry.
type ExpiredSessionSweeper interface {
	DeleteExpired() int
}

// CleanupManager periodically evicts expired console sessions so that their
// backend tokens and engines do not linger in memory.
type CleanupManager struct {
	sessions ExpiredSessionSweeper
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(sessions ExpiredSessionSweeper, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		sessions: sessions,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task. It blocks until Stop is called or
// ctx is cancelled.
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	if removed := cm.sessions.DeleteExpired(); removed > 0 {
		cm.logger.InfoContext(ctx, "expired sessions removed", slog.Int("count", removed))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
