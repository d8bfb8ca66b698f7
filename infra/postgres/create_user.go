package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"circle-service/domain"

	"github.com/google/uuid"
)

// UpsertUser stores a directory entry received from the auth service.
func (r *Repository) UpsertUser(ctx context.Context, user domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, email = EXCLUDED.email`,
		user.ID, user.Username, user.Email,
	)
	if err != nil {
		return storeErr("failed to upsert user", err)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	var email sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, email FROM users WHERE id = $1`, userID,
	).Scan(&user.ID, &user.Username, &email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
		}
		return nil, storeErr("failed to query user", err)
	}
	user.Email = email.String
	return &user, nil
}
