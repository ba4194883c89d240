package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/usergate/internal/users/store"
)

// HousekeepingService periodically prunes expired pool entries and expired
// MFA candidate secrets. SQLite needs it; Redis expires keys on its own and
// only has stray pool members trimmed.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the cleanup loop in the background until Stop is called.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background(), time.Now())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background(), time.Now())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass. Each deletion is independent; one failing does not
// stop the other.
func (s *HousekeepingService) Cleanup(ctx context.Context, now time.Time) {
	tokens, err := s.Store.TokenPools().DeleteExpiredTokens(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired tokens", "error", err)
	}

	candidates, err := s.Store.MFA().DeleteExpiredCandidates(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired mfa candidates", "error", err)
	}

	s.Logger.Info("housekeeping cleanup completed",
		"expired_tokens", tokens,
		"expired_candidates", candidates,
	)
}
