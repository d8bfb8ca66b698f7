package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"circle-service/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const roomColumns = `id, name, description, created_by, created_at, is_active,
	participant_count, max_participants, focus_duration, category, current_session_start`

const participantColumns = `room_id, user_id, display_name, joined_at, is_active,
	total_focus_minutes, trees_planted, is_ready`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*domain.Room, error) {
	var room domain.Room
	var start sql.NullTime
	err := row.Scan(
		&room.ID, &room.Name, &room.Description, &room.CreatedBy, &room.CreatedAt, &room.IsActive,
		&room.ParticipantCount, &room.MaxParticipants, &room.FocusDuration, &room.Category, &start,
	)
	if err != nil {
		return nil, err
	}
	if start.Valid {
		t := start.Time
		room.CurrentSessionStart = &t
	}
	room.Trees = []domain.Tree{}
	return &room, nil
}

func scanParticipant(row rowScanner) (domain.Participant, error) {
	var p domain.Participant
	err := row.Scan(
		&p.RoomID, &p.UserID, &p.DisplayName, &p.JoinedAt, &p.IsActive,
		&p.TotalFocusMinutes, &p.TreesPlanted, &p.IsReady,
	)
	return p, err
}

// lockRoom loads the room row and holds a row lock until the transaction ends.
func lockRoom(ctx context.Context, tx *sql.Tx, roomID uuid.UUID) (*domain.Room, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM circles WHERE id = $1 FOR UPDATE`, roomID)
	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: room not found", domain.ErrNotFound)
		}
		return nil, storeErr("failed to query room", err)
	}
	return room, nil
}

func encodeVariety(v *domain.Variety) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func decodeVariety(raw sql.NullString) *domain.Variety {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var v domain.Variety
	if err := json.Unmarshal([]byte(raw.String), &v); err != nil {
		return nil
	}
	return &v
}

// storeErr marks a driver failure as a transient document store error.
func storeErr(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, domain.ErrTransientIO, err)
}

func (r *Repository) isDuplicateKeyError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// PostgreSQL error code for unique_violation
		return pqErr.Code == "23505"
	}
	return false
}
