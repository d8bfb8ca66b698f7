package postgres

import (
	"context"
	"time"

	"circle-service/domain"
)

const expiredSessionsQuery = `
	SELECT id, current_session_start
	FROM circles
	WHERE current_session_start IS NOT NULL
		AND current_session_start + make_interval(mins => focus_duration) <= $1
	ORDER BY current_session_start ASC
	LIMIT $2`

// ListExpiredSessions returns running sessions whose duration has elapsed by now.
func (r *Repository) ListExpiredSessions(ctx context.Context, now time.Time, limit int) ([]domain.ExpiredSession, error) {
	rows, err := r.db.QueryContext(ctx, expiredSessionsQuery, now, limit)
	if err != nil {
		return nil, storeErr("failed to query expired sessions", err)
	}
	defer rows.Close()

	var expired []domain.ExpiredSession
	for rows.Next() {
		var s domain.ExpiredSession
		if err := rows.Scan(&s.RoomID, &s.SessionStart); err != nil {
			return nil, storeErr("failed to scan expired session", err)
		}
		expired = append(expired, s)
	}
	if err = rows.Err(); err != nil {
		return nil, storeErr("rows iteration error", err)
	}
	return expired, nil
}
