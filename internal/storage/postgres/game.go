package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"game_backend/internal/lib/version"
	"game_backend/internal/models"
	"game_backend/internal/storage"
)

func (r *PostgresRepo) SavePlayerData(ctx context.Context, data models.PlayerData) error {
	const op = "storage.postgres.SavePlayerData"

	query := `
		INSERT INTO player_data (username, data)
		VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET data = excluded.data;
	`

	_, err := r.pool.Exec(ctx, query, data.Username, data)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) PlayerDataByUsername(ctx context.Context, username string) (models.PlayerData, error) {
	query := `
		SELECT data
		FROM player_data
		WHERE username = $1;
	`

	var data models.PlayerData

	err := r.pool.QueryRow(ctx, query, username).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.PlayerData{}, storage.ErrPlayerDataNotFound
		}

		return models.PlayerData{}, err
	}

	return data, nil
}

// UpdatePlayerData merges a partial save-data patch into the stored blob.
func (r *PostgresRepo) UpdatePlayerData(ctx context.Context, username string, patch map[string]any) error {
	const op = "storage.postgres.UpdatePlayerData"

	query := `
		UPDATE player_data
		SET data = data || $2
		WHERE username = $1;
	`

	tag, err := r.pool.Exec(ctx, query, username, patch)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrPlayerDataNotFound
	}

	return nil
}

func (r *PostgresRepo) SaveReview(ctx context.Context, rev models.Review) error {
	const op = "storage.postgres.SaveReview"

	query := `
		INSERT INTO reviews (id, user_id, content, rating, relates, owner_reply)
		VALUES ($1, $2, $3, $4, $5, $6);
	`

	_, err := r.pool.Exec(ctx, query, rev.ID, rev.UserID, rev.Content, rev.Rating, rev.Relates, rev.OwnerReply)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) Reviews(ctx context.Context) ([]models.Review, error) {
	const op = "storage.postgres.Reviews"

	query := `
		SELECT r.id, r.user_id, u.username, r.content, r.rating, r.relates, r.owner_reply, r.created_at, r.updated_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		ORDER BY r.created_at;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var reviews []models.Review

	for rows.Next() {
		var rev models.Review

		err := rows.Scan(
			&rev.ID,
			&rev.UserID,
			&rev.Username,
			&rev.Content,
			&rev.Rating,
			&rev.Relates,
			&rev.OwnerReply,
			&rev.CreatedAt,
			&rev.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		reviews = append(reviews, rev)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: %w", op, rows.Err())
	}

	return reviews, nil
}

// DeleteOrphanReviews drops reviews whose author account no longer exists.
func (r *PostgresRepo) DeleteOrphanReviews(ctx context.Context) (int64, error) {
	const op = "storage.postgres.DeleteOrphanReviews"

	query := `
		DELETE FROM reviews
		WHERE user_id NOT IN (SELECT id FROM users);
	`

	tag, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}

var reviewColumns = map[string]string{
	"content":    "content",
	"rating":     "rating",
	"relates":    "relates",
	"ownerReply": "owner_reply",
}

// UpdateReview applies a field patch to a review and returns the updated row.
// Unknown patch keys are rejected.
func (r *PostgresRepo) UpdateReview(ctx context.Context, id uuid.UUID, patch map[string]any) (models.Review, error) {
	const op = "storage.postgres.UpdateReview"

	set := make([]string, 0, len(patch)+1)
	args := make([]any, 0, len(patch)+1)
	args = append(args, id)

	for key, value := range patch {
		column, ok := reviewColumns[key]
		if !ok {
			return models.Review{}, fmt.Errorf("%s: %w %q", op, storage.ErrUnknownField, key)
		}

		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	set = append(set, "updated_at = NOW()")

	query := fmt.Sprintf(`
		UPDATE reviews
		SET %s
		WHERE id = $1
		RETURNING id, user_id, '', content, rating, relates, owner_reply, created_at, updated_at;
	`, strings.Join(set, ", "))

	var rev models.Review

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&rev.ID,
		&rev.UserID,
		&rev.Username,
		&rev.Content,
		&rev.Rating,
		&rev.Relates,
		&rev.OwnerReply,
		&rev.CreatedAt,
		&rev.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Review{}, storage.ErrReviewNotFound
		}

		return models.Review{}, fmt.Errorf("%s: %w", op, err)
	}

	return rev, nil
}

func (r *PostgresRepo) SavePatchLog(ctx context.Context, pl models.PatchLog) error {
	const op = "storage.postgres.SavePatchLog"

	query := `
		INSERT INTO patch_logs (id, last_version, current_version, log)
		VALUES ($1, $2, $3, $4);
	`

	_, err := r.pool.Exec(ctx, query, pl.ID, pl.LastVersion, versionArray(pl.CurrentVersion), pl.Log)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) PatchLogs(ctx context.Context) ([]models.PatchLog, error) {
	const op = "storage.postgres.PatchLogs"

	query := `
		SELECT id, last_version, current_version, log, created_at
		FROM patch_logs;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var logs []models.PatchLog

	for rows.Next() {
		pl, err := scanPatchLog(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		logs = append(logs, pl)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: %w", op, rows.Err())
	}

	return logs, nil
}

func (r *PostgresRepo) PatchLogByCurrentVersion(ctx context.Context, v version.Version) (models.PatchLog, error) {
	query := `
		SELECT id, last_version, current_version, log, created_at
		FROM patch_logs
		WHERE current_version = $1;
	`

	pl, err := scanPatchLog(r.pool.QueryRow(ctx, query, versionArray(v)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.PatchLog{}, storage.ErrPatchLogNotFound
		}

		return models.PatchLog{}, err
	}

	return pl, nil
}

func (r *PostgresRepo) PatchLogByLastVersion(ctx context.Context, lastVersion string) (models.PatchLog, error) {
	query := `
		SELECT id, last_version, current_version, log, created_at
		FROM patch_logs
		WHERE last_version = $1;
	`

	pl, err := scanPatchLog(r.pool.QueryRow(ctx, query, lastVersion))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.PatchLog{}, storage.ErrPatchLogNotFound
		}

		return models.PatchLog{}, err
	}

	return pl, nil
}

func (r *PostgresRepo) SaveReleaseNote(ctx context.Context, note models.ReleaseNote) error {
	const op = "storage.postgres.SaveReleaseNote"

	query := `
		INSERT INTO release_notes (id, version, text)
		VALUES ($1, $2, $3);
	`

	_, err := r.pool.Exec(ctx, query, note.ID, versionArray(note.Version), note.Text)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) ReleaseNotes(ctx context.Context) ([]models.ReleaseNote, error) {
	const op = "storage.postgres.ReleaseNotes"

	query := `
		SELECT id, version, text, created_at
		FROM release_notes;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var notes []models.ReleaseNote

	for rows.Next() {
		note, err := scanReleaseNote(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		notes = append(notes, note)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: %w", op, rows.Err())
	}

	return notes, nil
}

func (r *PostgresRepo) ReleaseNoteByVersion(ctx context.Context, v version.Version) (models.ReleaseNote, error) {
	query := `
		SELECT id, version, text, created_at
		FROM release_notes
		WHERE version = $1;
	`

	note, err := scanReleaseNote(r.pool.QueryRow(ctx, query, versionArray(v)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ReleaseNote{}, storage.ErrNoteNotFound
		}

		return models.ReleaseNote{}, err
	}

	return note, nil
}

func scanPatchLog(row pgx.Row) (models.PatchLog, error) {
	var (
		pl  models.PatchLog
		arr []int32
	)

	err := row.Scan(&pl.ID, &pl.LastVersion, &arr, &pl.Log, &pl.CreatedAt)
	if err != nil {
		return models.PatchLog{}, err
	}

	pl.CurrentVersion = toVersion(arr)

	return pl, nil
}

func scanReleaseNote(row pgx.Row) (models.ReleaseNote, error) {
	var (
		note models.ReleaseNote
		arr  []int32
	)

	err := row.Scan(&note.ID, &arr, &note.Text, &note.CreatedAt)
	if err != nil {
		return models.ReleaseNote{}, err
	}

	note.Version = toVersion(arr)

	return note, nil
}

func versionArray(v version.Version) []int32 {
	return []int32{int32(v[0]), int32(v[1]), int32(v[2])}
}

func toVersion(arr []int32) version.Version {
	var v version.Version

	for i := 0; i < len(arr) && i < 3; i++ {
		v[i] = int(arr[i])
	}

	return v
}
