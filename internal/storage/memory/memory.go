package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"game_backend/internal/lib/version"
	"game_backend/internal/models"
	"game_backend/internal/storage"
)

// Storage is an in-memory implementation of the persistence interfaces,
// used by unit tests in place of postgres and redis.
type Storage struct {
	mu sync.RWMutex

	users    map[uuid.UUID]models.User
	sessions map[string]models.RefreshToken
	codes    map[string]codeRecord
	players  map[string]models.PlayerData
	reviews  map[uuid.UUID]models.Review
	patches  []models.PatchLog
	notes    []models.ReleaseNote

	now func() time.Time
}

type codeRecord struct {
	hash      string
	createdAt time.Time
	expiresAt time.Time
}

func New() *Storage {
	return &Storage{
		users:    make(map[uuid.UUID]models.User),
		sessions: make(map[string]models.RefreshToken),
		codes:    make(map[string]codeRecord),
		players:  make(map[string]models.PlayerData),
		reviews:  make(map[uuid.UUID]models.Review),
		now:      time.Now,
	}
}

// SetClock overrides the store's clock. Tests use it to move past TTLs.
func (s *Storage) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Storage) SaveUser(_ context.Context, email, username string, passHash []byte) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email || u.Username == username {
			return uuid.Nil, storage.ErrUserExists
		}
	}

	id := uuid.New()
	s.users[id] = models.User{
		ID:        id,
		Email:     email,
		Username:  username,
		PassHash:  passHash,
		CreatedAt: s.now(),
	}

	return id, nil
}

func (s *Storage) UserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (s *Storage) UserByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (s *Storage) UserByID(_ context.Context, id uuid.UUID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, nil
}

func (s *Storage) DeleteUser(_ context.Context, id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, id)
}

func (s *Storage) SaveRefreshToken(_ context.Context, token string, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[token] = models.RefreshToken{
		Token:     token,
		UserID:    userID,
		CreatedAt: s.now(),
	}

	return nil
}

func (s *Storage) RefreshToken(_ context.Context, token string) (models.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rt, ok := s.sessions[token]
	if !ok {
		return models.RefreshToken{}, storage.ErrSessionNotFound
	}

	return rt, nil
}

func (s *Storage) DeleteRefreshToken(_ context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[token]; !ok {
		return 0, nil
	}

	delete(s.sessions, token)

	return 1, nil
}

func (s *Storage) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

func (s *Storage) SaveCode(_ context.Context, email, codeHash string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.codes[email] = codeRecord{
		hash:      codeHash,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}

	return nil
}

func (s *Storage) Code(_ context.Context, email string) (models.VerificationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.codes[email]
	if !ok {
		return models.VerificationCode{}, storage.ErrCodeNotFound
	}

	// Lazy TTL eviction, matching the self-deleting backing store.
	if s.now().After(rec.expiresAt) {
		delete(s.codes, email)
		return models.VerificationCode{}, storage.ErrCodeNotFound
	}

	return models.VerificationCode{
		Email:     email,
		CodeHash:  rec.hash,
		CreatedAt: rec.createdAt,
	}, nil
}

func (s *Storage) DeleteCode(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.codes, email)

	return nil
}

func (s *Storage) SavePlayerData(_ context.Context, data models.PlayerData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.players[data.Username] = data

	return nil
}

func (s *Storage) PlayerDataByUsername(_ context.Context, username string) (models.PlayerData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.players[username]
	if !ok {
		return models.PlayerData{}, storage.ErrPlayerDataNotFound
	}

	return data, nil
}

func (s *Storage) UpdatePlayerData(_ context.Context, username string, patch map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.players[username]
	if !ok {
		return storage.ErrPlayerDataNotFound
	}

	// Merge through JSON, mirroring the jsonb || patch semantics.
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}

	var blob map[string]any
	if err := json.Unmarshal(raw, &blob); err != nil {
		return err
	}

	for key, value := range patch {
		blob[key] = value
	}

	merged, err := json.Marshal(blob)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(merged, &data); err != nil {
		return err
	}

	s.players[username] = data

	return nil
}

func (s *Storage) SaveReview(_ context.Context, rev models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reviews[rev.ID] = rev

	return nil
}

func (s *Storage) Reviews(_ context.Context) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Review

	for _, rev := range s.reviews {
		u, ok := s.users[rev.UserID]
		if !ok {
			continue
		}

		rev.Username = u.Username
		out = append(out, rev)
	}

	return out, nil
}

func (s *Storage) DeleteOrphanReviews(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64

	for id, rev := range s.reviews {
		if _, ok := s.users[rev.UserID]; !ok {
			delete(s.reviews, id)
			removed++
		}
	}

	return removed, nil
}

func (s *Storage) UpdateReview(_ context.Context, id uuid.UUID, patch map[string]any) (models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rev, ok := s.reviews[id]
	if !ok {
		return models.Review{}, storage.ErrReviewNotFound
	}

	for key, value := range patch {
		switch key {
		case "content":
			rev.Content, _ = value.(string)
		case "rating":
			switch n := value.(type) {
			case int:
				rev.Rating = n
			case float64:
				rev.Rating = int(n)
			}
		case "relates":
			switch n := value.(type) {
			case int:
				rev.Relates = n
			case float64:
				rev.Relates = int(n)
			}
		case "ownerReply":
			rev.OwnerReply, _ = value.(string)
		default:
			return models.Review{}, fmt.Errorf("memory.UpdateReview: %w %q", storage.ErrUnknownField, key)
		}
	}

	rev.UpdatedAt = s.now()
	s.reviews[id] = rev

	return rev, nil
}

func (s *Storage) SavePatchLog(_ context.Context, pl models.PatchLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.patches = append(s.patches, pl)

	return nil
}

func (s *Storage) PatchLogs(_ context.Context) ([]models.PatchLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.PatchLog, len(s.patches))
	copy(out, s.patches)

	return out, nil
}

func (s *Storage) PatchLogByCurrentVersion(_ context.Context, v version.Version) (models.PatchLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, pl := range s.patches {
		if version.Compare(pl.CurrentVersion, v) == 0 {
			return pl, nil
		}
	}

	return models.PatchLog{}, storage.ErrPatchLogNotFound
}

func (s *Storage) PatchLogByLastVersion(_ context.Context, lastVersion string) (models.PatchLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, pl := range s.patches {
		if pl.LastVersion == lastVersion {
			return pl, nil
		}
	}

	return models.PatchLog{}, storage.ErrPatchLogNotFound
}

func (s *Storage) SaveReleaseNote(_ context.Context, note models.ReleaseNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = append(s.notes, note)

	return nil
}

func (s *Storage) ReleaseNotes(_ context.Context) ([]models.ReleaseNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ReleaseNote, len(s.notes))
	copy(out, s.notes)

	return out, nil
}

func (s *Storage) ReleaseNoteByVersion(_ context.Context, v version.Version) (models.ReleaseNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, note := range s.notes {
		if version.Compare(note.Version, v) == 0 {
			return note, nil
		}
	}

	return models.ReleaseNote{}, storage.ErrNoteNotFound
}
