package postgres

import (
	"context"
	"fmt"

	"circle-service/domain"

	"github.com/google/uuid"
)

func (r *Repository) SetReady(ctx context.Context, roomID, userID uuid.UUID, ready bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE circle_participants SET is_ready = $3 WHERE room_id = $1 AND user_id = $2 AND is_active = TRUE`,
		roomID, userID, ready,
	)
	if err != nil {
		return storeErr("failed to update ready flag", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return storeErr("failed to check rows affected", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: participant not found", domain.ErrNotFound)
	}
	return nil
}
