package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	sl "game_backend/internal/lib/logger"
	"game_backend/internal/lib/version"
	"game_backend/internal/models"
	"game_backend/internal/storage"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrInvalidField rejects a patch naming a field that does not exist.
	ErrInvalidField = errors.New("invalid field")
)

type UserProvider interface {
	UserByID(ctx context.Context, id uuid.UUID) (models.User, error)
}

type PlayerDataStore interface {
	PlayerDataByUsername(ctx context.Context, username string) (models.PlayerData, error)
	UpdatePlayerData(ctx context.Context, username string, patch map[string]any) error
}

type ReviewStore interface {
	SaveReview(ctx context.Context, rev models.Review) error
	Reviews(ctx context.Context) ([]models.Review, error)
	DeleteOrphanReviews(ctx context.Context) (int64, error)
	UpdateReview(ctx context.Context, id uuid.UUID, patch map[string]any) (models.Review, error)
}

type PatchLogStore interface {
	SavePatchLog(ctx context.Context, pl models.PatchLog) error
	PatchLogs(ctx context.Context) ([]models.PatchLog, error)
	PatchLogByCurrentVersion(ctx context.Context, v version.Version) (models.PatchLog, error)
	PatchLogByLastVersion(ctx context.Context, lastVersion string) (models.PatchLog, error)
}

type ReleaseNoteStore interface {
	SaveReleaseNote(ctx context.Context, note models.ReleaseNote) error
	ReleaseNotes(ctx context.Context) ([]models.ReleaseNote, error)
	ReleaseNoteByVersion(ctx context.Context, v version.Version) (models.ReleaseNote, error)
}

// Service covers the plain data-access side of the API: reviews, player
// save data, patch logs and release notes.
type Service struct {
	log     *slog.Logger
	users   UserProvider
	players PlayerDataStore
	reviews ReviewStore
	patches PatchLogStore
	notes   ReleaseNoteStore
}

func New(
	log *slog.Logger,
	users UserProvider,
	players PlayerDataStore,
	reviews ReviewStore,
	patches PatchLogStore,
	notes ReleaseNoteStore,
) *Service {
	return &Service{
		log:     log,
		users:   users,
		players: players,
		reviews: reviews,
		patches: patches,
		notes:   notes,
	}
}

// Profile joins the account record with its save data.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (models.User, models.PlayerData, error) {
	const op = "game.Profile"

	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, models.PlayerData{}, ErrNotFound
		}

		return models.User{}, models.PlayerData{}, fmt.Errorf("%s: %w", op, err)
	}

	data, err := s.players.PlayerDataByUsername(ctx, user.Username)
	if err != nil {
		if errors.Is(err, storage.ErrPlayerDataNotFound) {
			return models.User{}, models.PlayerData{}, ErrNotFound
		}

		return models.User{}, models.PlayerData{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, data, nil
}

func (s *Service) UpdatePlayerData(ctx context.Context, username string, patch map[string]any) error {
	const op = "game.UpdatePlayerData"

	if err := s.players.UpdatePlayerData(ctx, username, patch); err != nil {
		if errors.Is(err, storage.ErrPlayerDataNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) CreateReview(ctx context.Context, userID uuid.UUID, content string, rating int) (models.Review, error) {
	const op = "game.CreateReview"

	rev := models.Review{
		ID:      uuid.New(),
		UserID:  userID,
		Content: content,
		Rating:  rating,
	}

	if err := s.reviews.SaveReview(ctx, rev); err != nil {
		return models.Review{}, fmt.Errorf("%s: %w", op, err)
	}

	return rev, nil
}

// Reviews lists reviews with author info, pruning any left behind by
// deleted accounts first.
func (s *Service) Reviews(ctx context.Context) ([]models.Review, error) {
	const op = "game.Reviews"

	removed, err := s.reviews.DeleteOrphanReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if removed > 0 {
		s.log.Info("pruned orphaned reviews", slog.Int64("count", removed))
	}

	reviews, err := s.reviews.Reviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return reviews, nil
}

func (s *Service) UpdateReview(ctx context.Context, id uuid.UUID, patch map[string]any) (models.Review, error) {
	const op = "game.UpdateReview"

	rev, err := s.reviews.UpdateReview(ctx, id, patch)
	if err != nil {
		if errors.Is(err, storage.ErrReviewNotFound) {
			return models.Review{}, ErrNotFound
		}
		if errors.Is(err, storage.ErrUnknownField) {
			return models.Review{}, ErrInvalidField
		}

		s.log.Error("failed to update review", sl.Err(err))
		return models.Review{}, fmt.Errorf("%s: %w", op, err)
	}

	return rev, nil
}

func (s *Service) CreatePatchLog(ctx context.Context, lastVersion string, current version.Version, logText string) (models.PatchLog, error) {
	const op = "game.CreatePatchLog"

	pl := models.PatchLog{
		ID:             uuid.New(),
		LastVersion:    lastVersion,
		CurrentVersion: current,
		Log:            logText,
	}

	if err := s.patches.SavePatchLog(ctx, pl); err != nil {
		return models.PatchLog{}, fmt.Errorf("%s: %w", op, err)
	}

	return pl, nil
}

// LatestPatchLog returns the patch log with the highest version triple.
func (s *Service) LatestPatchLog(ctx context.Context) (models.PatchLog, error) {
	const op = "game.LatestPatchLog"

	logs, err := s.patches.PatchLogs(ctx)
	if err != nil {
		return models.PatchLog{}, fmt.Errorf("%s: %w", op, err)
	}

	if len(logs) == 0 {
		return models.PatchLog{}, ErrNotFound
	}

	sort.Slice(logs, func(i, j int) bool {
		return version.Compare(logs[i].CurrentVersion, logs[j].CurrentVersion) > 0
	})

	return logs[0], nil
}

// PatchLogByVersion looks a patch log up either by the version it ships
// (mode "currentVersion") or by the version it upgrades from.
func (s *Service) PatchLogByVersion(ctx context.Context, mode, ver string) (models.PatchLog, error) {
	const op = "game.PatchLogByVersion"

	var (
		pl  models.PatchLog
		err error
	)

	if mode == "currentVersion" {
		v, parseErr := version.Parse(ver)
		if parseErr != nil {
			return models.PatchLog{}, ErrNotFound
		}

		pl, err = s.patches.PatchLogByCurrentVersion(ctx, v)
	} else {
		pl, err = s.patches.PatchLogByLastVersion(ctx, ver)
	}

	if err != nil {
		if errors.Is(err, storage.ErrPatchLogNotFound) {
			return models.PatchLog{}, ErrNotFound
		}

		return models.PatchLog{}, fmt.Errorf("%s: %w", op, err)
	}

	return pl, nil
}

func (s *Service) CreateReleaseNote(ctx context.Context, v version.Version, text string) (models.ReleaseNote, error) {
	const op = "game.CreateReleaseNote"

	note := models.ReleaseNote{
		ID:      uuid.New(),
		Version: v,
		Text:    text,
	}

	if err := s.notes.SaveReleaseNote(ctx, note); err != nil {
		return models.ReleaseNote{}, fmt.Errorf("%s: %w", op, err)
	}

	return note, nil
}

func (s *Service) LatestReleaseNote(ctx context.Context) (models.ReleaseNote, error) {
	const op = "game.LatestReleaseNote"

	notes, err := s.notes.ReleaseNotes(ctx)
	if err != nil {
		return models.ReleaseNote{}, fmt.Errorf("%s: %w", op, err)
	}

	if len(notes) == 0 {
		return models.ReleaseNote{}, ErrNotFound
	}

	sort.Slice(notes, func(i, j int) bool {
		return version.Compare(notes[i].Version, notes[j].Version) > 0
	})

	return notes[0], nil
}

func (s *Service) ReleaseNoteByVersion(ctx context.Context, ver string) (models.ReleaseNote, error) {
	const op = "game.ReleaseNoteByVersion"

	v, err := version.Parse(ver)
	if err != nil {
		return models.ReleaseNote{}, ErrNotFound
	}

	note, err := s.notes.ReleaseNoteByVersion(ctx, v)
	if err != nil {
		if errors.Is(err, storage.ErrNoteNotFound) {
			return models.ReleaseNote{}, ErrNotFound
		}

		return models.ReleaseNote{}, fmt.Errorf("%s: %w", op, err)
	}

	return note, nil
}

// ReleaseNotes lists all notes ordered oldest version first.
func (s *Service) ReleaseNotes(ctx context.Context) ([]models.ReleaseNote, error) {
	const op = "game.ReleaseNotes"

	notes, err := s.notes.ReleaseNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sort.Slice(notes, func(i, j int) bool {
		return version.Compare(notes[i].Version, notes[j].Version) < 0
	})

	return notes, nil
}
