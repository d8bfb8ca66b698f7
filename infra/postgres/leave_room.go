package postgres

import (
	"context"
	"fmt"

	"circle-service/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (r *Repository) LeaveRoom(ctx context.Context, roomID, userID uuid.UUID) (domain.LeaveResult, error) {
	var result domain.LeaveResult

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return result, storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	// 1. Lock the room row for the rest of the transaction.
	room, err := lockRoom(ctx, tx, roomID)
	if err != nil {
		return result, err
	}

	// 2. Remove the user from the room.
	res, err := tx.ExecContext(ctx,
		`DELETE FROM circle_participants WHERE room_id = $1 AND user_id = $2 AND is_active = TRUE`,
		roomID, userID,
	)
	if err != nil {
		return result, storeErr("failed to delete participant from room", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return result, storeErr("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return result, fmt.Errorf("%w: user is not in the room", domain.ErrNotFound)
	}

	// 3. Last one out deletes the room; participants and trees cascade.
	if room.ParticipantCount <= 1 {
		if _, err = tx.ExecContext(ctx, `DELETE FROM circle_participants WHERE room_id = $1`, roomID); err != nil {
			return result, storeErr("failed to delete participants", err)
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM circles WHERE id = $1`, roomID); err != nil {
			return result, storeErr("failed to delete room", err)
		}
		result.RoomDeleted = true
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE circles SET participant_count = participant_count - 1 WHERE id = $1`,
			roomID,
		)
		if err != nil {
			return result, storeErr("failed to decrement participant count", err)
		}

		// If the leaving user was the owner, hand the room to the longest-standing member.
		if room.IsOwner(userID) {
			var newOwner uuid.UUID
			err = tx.QueryRowContext(ctx, `
				SELECT user_id FROM circle_participants
				WHERE room_id = $1 AND is_active = TRUE
				ORDER BY joined_at ASC LIMIT 1`,
				roomID,
			).Scan(&newOwner)
			if err != nil {
				return result, storeErr("failed to find a new owner", err)
			}

			_, err = tx.ExecContext(ctx, `UPDATE circles SET created_by = $1 WHERE id = $2`, newOwner, roomID)
			if err != nil {
				return result, storeErr("failed to update owner", err)
			}
			result.NewOwner = newOwner
		}
	}

	if err = tx.Commit(); err != nil {
		return result, storeErr("failed to commit transaction", err)
	}

	zap.L().Info("User left circle",
		zap.String("user_id", userID.String()),
		zap.String("room_id", roomID.String()),
		zap.Bool("room_deleted", result.RoomDeleted),
	)
	return result, nil
}
