package postgres

import (
	"context"
	"fmt"

	"circle-service/domain"

	"go.uber.org/zap"
)

// CreateRoom inserts the room document and its owner's participant record in
// one transaction.
func (r *Repository) CreateRoom(ctx context.Context, room *domain.Room, owner domain.Participant) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	roomQuery := `
		INSERT INTO circles (id, name, description, created_by, created_at, is_active,
			participant_count, max_participants, focus_duration, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.ExecContext(ctx, roomQuery,
		room.ID, room.Name, room.Description, room.CreatedBy, room.CreatedAt, room.IsActive,
		room.ParticipantCount, room.MaxParticipants, room.FocusDuration, room.Category,
	)
	if err != nil {
		if r.isDuplicateKeyError(err) {
			return fmt.Errorf("%w: room already exists", domain.ErrConflict)
		}
		return storeErr("failed to create room", err)
	}

	// Oluşturan kullanıcıyı odaya ekle
	playerQuery := `
		INSERT INTO circle_participants (room_id, user_id, display_name, joined_at, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
	`
	_, err = tx.ExecContext(ctx, playerQuery, room.ID, owner.UserID, owner.DisplayName, owner.JoinedAt)
	if err != nil {
		return storeErr("failed to add creator to room", err)
	}

	if err = tx.Commit(); err != nil {
		return storeErr("failed to commit transaction", err)
	}

	zap.L().Info("Circle created", zap.String("room_id", room.ID.String()), zap.String("name", room.Name))
	return nil
}
