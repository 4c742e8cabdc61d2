package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"game_backend/internal/models"
	"game_backend/internal/storage"
)

func (r *PostgresRepo) SaveRefreshToken(ctx context.Context, token string, userID uuid.UUID) error {
	const op = "storage.postgres.SaveRefreshToken"

	const query = `
		INSERT INTO refresh_tokens (token, user_id)
		VALUES ($1, $2)
	`

	_, err := r.pool.Exec(ctx, query, token, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) RefreshToken(ctx context.Context, token string) (models.RefreshToken, error) {
	const query = `
		SELECT token, user_id, created_at
		FROM refresh_tokens
		WHERE token = $1;
	`

	var rt models.RefreshToken

	err := r.pool.QueryRow(ctx, query, token).Scan(&rt.Token, &rt.UserID, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.RefreshToken{}, storage.ErrSessionNotFound
		}

		return models.RefreshToken{}, err
	}

	return rt, nil
}

// DeleteRefreshToken removes a session record and reports how many rows
// went away. Zero is not an error: logout is idempotent.
func (r *PostgresRepo) DeleteRefreshToken(ctx context.Context, token string) (int64, error) {
	const op = "storage.postgres.DeleteRefreshToken"

	query := `DELETE FROM refresh_tokens WHERE token = $1`

	tag, err := r.pool.Exec(ctx, query, token)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}
