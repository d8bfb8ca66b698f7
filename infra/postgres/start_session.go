package postgres

import (
	"context"
	"time"

	"circle-service/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StartSession sets current_session_start on behalf of the owner and clears
// the owner's ready flag.
func (r *Repository) StartSession(ctx context.Context, roomID, actor uuid.UUID, now time.Time) (*domain.Room, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	room, err := lockRoom(ctx, tx, roomID)
	if err != nil {
		return nil, err
	}
	if err := room.StartSession(actor, now); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE circles SET current_session_start = $1 WHERE id = $2`,
		*room.CurrentSessionStart, roomID,
	)
	if err != nil {
		return nil, storeErr("failed to start session", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE circle_participants SET is_ready = FALSE WHERE room_id = $1 AND user_id = $2`,
		roomID, actor,
	)
	if err != nil {
		return nil, storeErr("failed to reset ready flag", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, storeErr("failed to commit transaction", err)
	}

	zap.L().Info("Focus session started", zap.String("room_id", roomID.String()), zap.Time("start", now))
	return room, nil
}
