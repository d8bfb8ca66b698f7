package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"circle-service/domain"

	"go.uber.org/zap"
)

// PlantTree inserts the tree as its own row and bumps the planter's stats.
// The room row is only share-locked so plants from different users do not
// wait on each other. The room name is returned for the garden mirror.
func (r *Repository) PlantTree(ctx context.Context, req domain.PlantRequest, now time.Time) (domain.Tree, string, error) {
	tree, err := domain.NewTree(req, now)
	if err != nil {
		return domain.Tree{}, "", err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Tree{}, "", storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	room := domain.Room{ID: req.RoomID}
	err = tx.QueryRowContext(ctx,
		`SELECT name, is_active FROM circles WHERE id = $1 FOR SHARE`, req.RoomID,
	).Scan(&room.Name, &room.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Tree{}, "", fmt.Errorf("%w: room not found", domain.ErrNotFound)
		}
		return domain.Tree{}, "", storeErr("failed to query room", err)
	}
	if err := room.CanPlant(); err != nil {
		return domain.Tree{}, "", err
	}

	var storedName string
	err = tx.QueryRowContext(ctx, `
		UPDATE circle_participants
		SET total_focus_minutes = total_focus_minutes + $3, trees_planted = trees_planted + 1
		WHERE room_id = $1 AND user_id = $2 AND is_active = TRUE
		RETURNING display_name`,
		req.RoomID, req.UserID, req.FocusMinutes,
	).Scan(&storedName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Tree{}, "", fmt.Errorf("%w: participant not found", domain.ErrNotFound)
		}
		return domain.Tree{}, "", storeErr("failed to update participant stats", err)
	}
	if tree.PlantedByName == "" {
		tree.PlantedByName = storedName
	}

	variety, err := encodeVariety(tree.Variety)
	if err != nil {
		return domain.Tree{}, "", fmt.Errorf("%w: invalid variety", domain.ErrInvalidInput)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO circle_trees (id, room_id, category, planted_at, growth_stage, focus_minutes,
			is_alive, planted_by, planted_by_name, variety)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		tree.ID, tree.RoomID, tree.Category, tree.PlantedAt, int(tree.GrowthStage), tree.FocusMinutes,
		tree.IsAlive, tree.PlantedBy, tree.PlantedByName, variety,
	)
	if err != nil {
		return domain.Tree{}, "", storeErr("failed to insert tree", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.Tree{}, "", storeErr("failed to commit transaction", err)
	}

	zap.L().Info("Tree planted",
		zap.String("room_id", req.RoomID.String()),
		zap.String("user_id", req.UserID.String()),
		zap.Int("focus_minutes", tree.FocusMinutes),
	)
	return tree, room.Name, nil
}
