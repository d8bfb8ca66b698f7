package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"circle-service/domain"

	"github.com/google/uuid"
)

const listRoomsQuery = `
	SELECT ` + roomColumns + `
	FROM circles
	WHERE is_active = TRUE
	ORDER BY created_at DESC
	LIMIT $1`

// GetRoom returns the room document with its trees ordered by planting time.
func (r *Repository) GetRoom(ctx context.Context, roomID uuid.UUID) (*domain.Room, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM circles WHERE id = $1`, roomID)
	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: room not found", domain.ErrNotFound)
		}
		return nil, storeErr("failed to query room", err)
	}

	trees, err := r.listTrees(ctx, roomID)
	if err != nil {
		return nil, err
	}
	room.Trees = trees
	return room, nil
}

// ListRooms returns active rooms, newest first. Trees are not loaded.
func (r *Repository) ListRooms(ctx context.Context, limit int) ([]domain.Room, error) {
	rows, err := r.db.QueryContext(ctx, listRoomsQuery, limit)
	if err != nil {
		return nil, storeErr("failed to query rooms", err)
	}
	defer rows.Close()

	rooms := []domain.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, storeErr("failed to scan room data from DB", err)
		}
		rooms = append(rooms, *room)
	}
	if err = rows.Err(); err != nil {
		return nil, storeErr("rows iteration error", err)
	}
	return rooms, nil
}

func (r *Repository) listTrees(ctx context.Context, roomID uuid.UUID) ([]domain.Tree, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, room_id, category, planted_at, growth_stage, focus_minutes,
			is_alive, planted_by, planted_by_name, variety
		FROM circle_trees
		WHERE room_id = $1
		ORDER BY planted_at ASC, id ASC`, roomID)
	if err != nil {
		return nil, storeErr("failed to query trees", err)
	}
	defer rows.Close()

	trees := []domain.Tree{}
	for rows.Next() {
		var t domain.Tree
		var variety sql.NullString
		if err := rows.Scan(&t.ID, &t.RoomID, &t.Category, &t.PlantedAt, &t.GrowthStage, &t.FocusMinutes,
			&t.IsAlive, &t.PlantedBy, &t.PlantedByName, &variety); err != nil {
			return nil, storeErr("failed to scan tree", err)
		}
		t.Variety = decodeVariety(variety)
		trees = append(trees, t)
	}
	if err = rows.Err(); err != nil {
		return nil, storeErr("rows iteration error", err)
	}
	return trees, nil
}

// ListParticipants returns the active members of a room in join order.
func (r *Repository) ListParticipants(ctx context.Context, roomID uuid.UUID) ([]domain.Participant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+participantColumns+`
		FROM circle_participants
		WHERE room_id = $1 AND is_active = TRUE
		ORDER BY joined_at ASC`, roomID)
	if err != nil {
		return nil, storeErr("failed to query participants", err)
	}
	defer rows.Close()

	participants := []domain.Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, storeErr("failed to scan participant", err)
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, storeErr("rows iteration error", err)
	}
	return participants, nil
}

// GetParticipant returns the active membership of userID in roomID.
func (r *Repository) GetParticipant(ctx context.Context, roomID, userID uuid.UUID) (*domain.Participant, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+participantColumns+`
		FROM circle_participants
		WHERE room_id = $1 AND user_id = $2 AND is_active = TRUE`, roomID, userID)
	p, err := scanParticipant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: participant not found", domain.ErrNotFound)
		}
		return nil, storeErr("failed to query participant", err)
	}
	return &p, nil
}
