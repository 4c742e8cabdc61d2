package logout

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

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
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := jwt.NewManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	codes := verification.New(log, store, okPublisher{}, 10*time.Minute, time.Second, 3)
	authService := auth.New(log, store, store, store, codes, tokens)

	return &fixture{
		handler: New(log, authService),
		store:   store,
		tokens:  tokens,
	}
}

func (f *fixture) openSession(t *testing.T) string {
	t.Helper()

	id, err := f.store.SaveUser(context.Background(), "ada@example.com", "ada", []byte("x"))
	require.NoError(t, err)

	refresh, err := f.tokens.NewRefreshToken("ada@example.com")
	require.NoError(t, err)
	require.NoError(t, f.store.SaveRefreshToken(context.Background(), refresh, id))

	return refresh
}

func assertCookiesCleared(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()

	cleared := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 && c.Value == "" {
			cleared[c.Name] = true
		}
	}

	assert.True(t, cleared[cookies.AccessTokenName], "access cookie must be cleared")
	assert.True(t, cleared[cookies.RefreshTokenName], "refresh cookie must be cleared")
}

func TestLogout_TokenFromCookie(t *testing.T) {
	f := newFixture(t)
	refresh := f.openSession(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/logout", nil)
	req.AddCookie(&http.Cookie{Name: cookies.RefreshTokenName, Value: refresh})
	rec := httptest.NewRecorder()
	f.handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, f.store.SessionCount())
	assertCookiesCleared(t, rec)
}

func TestLogout_TokenFromBody(t *testing.T) {
	f := newFixture(t)
	refresh := f.openSession(t)

	body := `{"refreshToken":"` + refresh + `"}`
	req := httptest.NewRequest(http.MethodDelete, "/api/logout", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, f.store.SessionCount())
}

func TestLogout_TokenFromBearerHeader(t *testing.T) {
	f := newFixture(t)
	refresh := f.openSession(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/logout", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()
	f.handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, f.store.SessionCount())
}

func TestLogout_CookieWinsOverBody(t *testing.T) {
	f := newFixture(t)
	refresh := f.openSession(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/logout", strings.NewReader(`{"refreshToken":"other"}`))
	req.AddCookie(&http.Cookie{Name: cookies.RefreshTokenName, Value: refresh})
	rec := httptest.NewRecorder()
	f.handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, f.store.SessionCount(), "cookie token must be the one revoked")
}

func TestLogout_NoTokenAnywhere(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/logout", nil)
	rec := httptest.NewRecorder()
	f.handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assertCookiesCleared(t, rec)
}

func TestLogout_Idempotent(t *testing.T) {
	f := newFixture(t)
	refresh := f.openSession(t)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodDelete, "/api/logout", nil)
		req.AddCookie(&http.Cookie{Name: cookies.RefreshTokenName, Value: refresh})
		rec := httptest.NewRecorder()
		f.handler(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 0, f.store.SessionCount())
}
