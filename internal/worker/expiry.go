package worker

import (
	"context"
	"time"

	"circle-service/domain"
	httpUsecase "circle-service/internal/api/http/usecase"

	"go.uber.org/zap"
)

const sweepBatchSize = 100

type ExpiredSessionLister interface {
	ListExpiredSessions(ctx context.Context, now time.Time, limit int) ([]domain.ExpiredSession, error)
}

// ExpirySweeper auto-stops sessions nobody's client stopped in time. It goes
// through the same expire use case as the clients, so a race with a client
// auto-stop ends in a single transition.
type ExpirySweeper struct {
	lister   ExpiredSessionLister
	expire   httpUsecase.ExpireSessionUseCase
	interval time.Duration
	now      func() time.Time
}

func NewExpirySweeper(lister ExpiredSessionLister, expire httpUsecase.ExpireSessionUseCase, interval time.Duration) *ExpirySweeper {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &ExpirySweeper{
		lister:   lister,
		expire:   expire,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start runs the sweeper until ctx is done.
func (s *ExpirySweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	zap.L().Info("Expiry sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Expiry sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep stops every session that is past its deadline and returns how many
// it actually stopped.
func (s *ExpirySweeper) Sweep(ctx context.Context) int {
	expired, err := s.lister.ListExpiredSessions(ctx, s.now(), sweepBatchSize)
	if err != nil {
		zap.L().Error("Failed to list expired sessions", zap.Error(err))
		return 0
	}

	stopped := 0
	for _, session := range expired {
		start := session.SessionStart
		_, result, err := s.expire.Execute(ctx, session.RoomID, &start)
		if err != nil {
			zap.L().Warn("Failed to expire session",
				zap.String("room_id", session.RoomID.String()),
				zap.Time("session_start", start),
				zap.Error(err),
			)
			continue
		}
		if result.Stopped {
			stopped++
			zap.L().Info("Session expired",
				zap.String("room_id", session.RoomID.String()),
				zap.Int("elapsed_minutes", result.ElapsedMinutes),
			)
		}
	}
	return stopped
}
