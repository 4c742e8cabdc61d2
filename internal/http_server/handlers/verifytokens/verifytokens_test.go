package verifytokens

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_backend/internal/auth"
	"game_backend/internal/http_server/cookies"
	"game_backend/internal/lib/jwt"
	"game_backend/internal/models"
	"game_backend/internal/storage/memory"
	"game_backend/internal/verification"
)

type okPublisher struct{}

func (okPublisher) SendMessage(context.Context, models.Message) error { return nil }

type fixture struct {
	handler http.HandlerFunc
	store   *memory.Storage
	tokens  *jwt.Manager
	userID  uuid.UUID
}

func newFixture(t *testing.T, refreshTTL time.Duration) *fixture {
	t.Helper()

	store := memory.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := jwt.NewManager("access-secret", "refresh-secret", 15*time.Minute, refreshTTL)
	codes := verification.New(log, store, okPublisher{}, 10*time.Minute, time.Second, 3)
	authService := auth.New(log, store, store, store, codes, tokens)

	id, err := store.SaveUser(context.Background(), "ada@example.com", "ada", []byte("x"))
	require.NoError(t, err)

	return &fixture{
		handler: New(log, authService),
		store:   store,
		tokens:  tokens,
		userID:  id,
	}
}

// openSession mints a refresh token and registers it like login would.
func (f *fixture) openSession(t *testing.T) string {
	t.Helper()

	refresh, err := f.tokens.NewRefreshToken("ada@example.com")
	require.NoError(t, err)
	require.NoError(t, f.store.SaveRefreshToken(context.Background(), refresh, f.userID))

	return refresh
}

func (f *fixture) verify(t *testing.T, refresh, access string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/verify-tokens", nil)
	if refresh != "" {
		req.AddCookie(&http.Cookie{Name: cookies.RefreshTokenName, Value: refresh})
	}
	if access != "" {
		req.AddCookie(&http.Cookie{Name: cookies.AccessTokenName, Value: access})
	}

	rec := httptest.NewRecorder()
	f.handler(rec, req)

	return rec
}

func accessCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookies.AccessTokenName {
			return c
		}
	}
	return nil
}

func TestVerifyTokens_ReissuesAccessCookie(t *testing.T) {
	f := newFixture(t, 7*24*time.Hour)
	refresh := f.openSession(t)

	rec := f.verify(t, refresh, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), f.userID.String())

	c := accessCookie(rec)
	require.NotNil(t, c, "expected a fresh access cookie")
	assert.NotEmpty(t, c.Value)
	assert.Equal(t, 300, c.MaxAge)
}

func TestVerifyTokens_AccessStillPresent(t *testing.T) {
	f := newFixture(t, 7*24*time.Hour)
	refresh := f.openSession(t)

	access, err := f.tokens.NewAccessToken("ada@example.com")
	require.NoError(t, err)

	rec := f.verify(t, refresh, access)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, accessCookie(rec), "access cookie must not be reissued")
}

func TestVerifyTokens_NoRefreshCookie(t *testing.T) {
	f := newFixture(t, 7*24*time.Hour)

	rec := f.verify(t, "", "")

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorised")
}

func TestVerifyTokens_RevokedSession(t *testing.T) {
	f := newFixture(t, 7*24*time.Hour)
	refresh := f.openSession(t)

	_, err := f.store.DeleteRefreshToken(context.Background(), refresh)
	require.NoError(t, err)

	rec := f.verify(t, refresh, "")

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestVerifyTokens_ExpiredTokenEvictsSession(t *testing.T) {
	f := newFixture(t, -time.Minute)
	refresh := f.openSession(t)
	require.Equal(t, 1, f.store.SessionCount())

	rec := f.verify(t, refresh, "")

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, f.store.SessionCount(), "expired session must be evicted")

	// second attempt behaves the same with nothing left to evict
	rec = f.verify(t, refresh, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestVerifyTokens_ForgedToken(t *testing.T) {
	f := newFixture(t, 7*24*time.Hour)
	refresh := f.openSession(t)
	forged := refresh + "xx"

	// forged value is not in the store, so it is rejected before parsing
	rec := f.verify(t, forged, "")

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 1, f.store.SessionCount(), "real session must survive a forgery attempt")
}
