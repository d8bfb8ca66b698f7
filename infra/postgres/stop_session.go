package postgres

import (
	"context"
	"database/sql"
	"time"

	"circle-service/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StopSession ends the running session on behalf of the owner. When the stop
// is early and trees are forfeited every tree of the room dies.
func (r *Repository) StopSession(ctx context.Context, roomID, actor uuid.UUID, now time.Time, killTrees bool) (domain.StopResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.StopResult{}, storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	room, err := lockRoom(ctx, tx, roomID)
	if err != nil {
		return domain.StopResult{}, err
	}
	res, err := room.StopSession(actor, now, killTrees)
	if err != nil || !res.Stopped {
		return res, err
	}

	if err := clearSession(ctx, tx, roomID, res.SessionStart); err != nil {
		return domain.StopResult{}, err
	}

	if res.TreesForfeited {
		out, err := tx.ExecContext(ctx,
			`UPDATE circle_trees SET is_alive = FALSE WHERE room_id = $1 AND is_alive = TRUE`,
			roomID,
		)
		if err != nil {
			return domain.StopResult{}, storeErr("failed to kill trees", err)
		}
		killed, err := out.RowsAffected()
		if err != nil {
			return domain.StopResult{}, storeErr("failed to get rows affected", err)
		}
		res.TreesKilled = int(killed)
	}

	if err = tx.Commit(); err != nil {
		return domain.StopResult{}, storeErr("failed to commit transaction", err)
	}

	zap.L().Info("Focus session stopped",
		zap.String("room_id", roomID.String()),
		zap.Int("elapsed_minutes", res.ElapsedMinutes),
		zap.Bool("early", res.Early),
		zap.Int("trees_killed", res.TreesKilled),
	)
	return res, nil
}

// AutoStopSession clears an expired session. Duplicate calls, or calls for a
// session that is no longer the running one, change nothing.
func (r *Repository) AutoStopSession(ctx context.Context, roomID uuid.UUID, observed *time.Time, now time.Time, tolerance time.Duration) (domain.StopResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.StopResult{}, storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	room, err := lockRoom(ctx, tx, roomID)
	if err != nil {
		return domain.StopResult{}, err
	}
	res, err := room.AutoStop(now, observed, tolerance)
	if err != nil || !res.Stopped {
		return res, err
	}

	if err := clearSession(ctx, tx, roomID, res.SessionStart); err != nil {
		return domain.StopResult{}, err
	}

	if err = tx.Commit(); err != nil {
		return domain.StopResult{}, storeErr("failed to commit transaction", err)
	}

	zap.L().Info("Focus session expired", zap.String("room_id", roomID.String()), zap.Int("elapsed_minutes", res.ElapsedMinutes))
	return res, nil
}

// clearSession only matches the session that was read under the lock.
func clearSession(ctx context.Context, tx *sql.Tx, roomID uuid.UUID, start time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE circles SET current_session_start = NULL WHERE id = $1 AND current_session_start = $2`,
		roomID, start,
	)
	if err != nil {
		return storeErr("failed to clear session", err)
	}
	return nil
}
