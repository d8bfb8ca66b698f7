package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"


	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JoinRoom adds userID to the room. It reports false when the user already
// was an active member, in which case nothing changes.
func (r *Repository) JoinRoom(ctx context.Context, roomID, userID uuid.UUID, displayName string, now time.Time) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	// 1. Odayı kilitle
	room, err := lockRoom(ctx, tx, roomID)
	if err != nil {
		return false, err
	}

	// 2. Mevcut üyelik
	var isActive bool
	err = tx.QueryRowContext(ctx,
		`SELECT is_active FROM circle_participants WHERE room_id = $1 AND user_id = $2`,
		roomID, userID,
	).Scan(&isActive)
	exists := true
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return false, storeErr("failed to query participant", err)
		}
		exists = false
	}
	if exists && isActive {
		return false, nil
	}

	// 3. Durum ve kapasite kontrolü
	if err := room.CanJoin(); err != nil {
		return false, err
	}

	// 4. Kullanıcıyı ekle (ya da yeniden aktifleştir)
	if exists {
		_, err = tx.ExecContext(ctx, `
			UPDATE circle_participants
			SET is_active = TRUE, display_name = $3, joined_at = $4, is_ready = FALSE
			WHERE room_id = $1 AND user_id = $2`,
			roomID, userID, displayName, now,
		)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO circle_participants (room_id, user_id, display_name, joined_at, is_active)
			VALUES ($1, $2, $3, $4, TRUE)`,
			roomID, userID, displayName, now,
		)
	}
	if err != nil {
		return false, storeErr("failed to insert participant", err)
	}

	// 5. Katılımcı sayısını arttır
	_, err = tx.ExecContext(ctx,
		`UPDATE circles SET participant_count = participant_count + 1 WHERE id = $1`,
		roomID,
	)
	if err != nil {
		return false, storeErr("failed to update room", err)
	}

	if err = tx.Commit(); err != nil {
		return false, storeErr("failed to commit transaction", err)
	}

	zap.L().Info("User joined circle", zap.String("user_id", userID.String()), zap.String("room_id", roomID.String()))
	return true, nil
}
