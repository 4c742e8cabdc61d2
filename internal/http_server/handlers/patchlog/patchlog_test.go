package patchlog

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_backend/internal/game"
	"game_backend/internal/storage/memory"
)

const testPassKey = "s3cret"

func newRouter(t *testing.T) *chi.Mux {
	t.Helper()

	store := memory.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	gameService := game.New(log, store, store, store, store, store)
	validate := validator.New()

	r := chi.NewRouter()
	r.Post("/patchlog", Create(log, validate, gameService, testPassKey))
	r.Get("/patchlog/latest", Latest(log, gameService))
	r.Get("/patchlog/{mode}/{version}", ByVersion(log, gameService))

	return r
}

func do(t *testing.T, router *chi.Mux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func publish(t *testing.T, router *chi.Mux, lastVersion, currentVersion string) {
	t.Helper()

	body := `{"lastVersion":"` + lastVersion + `","currentVersion":"` + currentVersion +
		`","log":"changes","passKey":"` + testPassKey + `"}`
	rec := do(t, router, http.MethodPost, "/patchlog", body)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestPatchLog_CreateRequiresPassKey(t *testing.T) {
	router := newRouter(t)

	body := `{"lastVersion":"1.0","currentVersion":"1.1","log":"x","passKey":"wrong"}`
	rec := do(t, router, http.MethodPost, "/patchlog", body)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorised")
}

func TestPatchLog_LatestEmpty(t *testing.T) {
	router := newRouter(t)

	rec := do(t, router, http.MethodGet, "/patchlog/latest", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestPatchLog_LatestPicksHighestVersion(t *testing.T) {
	router := newRouter(t)

	publish(t, router, "1.0", "1.1")
	publish(t, router, "1.9", "1.10")
	publish(t, router, "1.1", "1.9")

	rec := do(t, router, http.MethodGet, "/patchlog/latest", "")

	require.Equal(t, http.StatusOK, rec.Code)
	// numeric compare: 1.10 beats 1.9
	assert.Contains(t, rec.Body.String(), `"currentVersion":[1,10,0]`)
}

func TestPatchLog_ByCurrentVersion(t *testing.T) {
	router := newRouter(t)
	publish(t, router, "1.0", "1.1")

	rec := do(t, router, http.MethodGet, "/patchlog/currentVersion/1.1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"lastVersion":"1.0"`)
}

func TestPatchLog_ByLastVersion(t *testing.T) {
	router := newRouter(t)
	publish(t, router, "1.0", "1.1")

	rec := do(t, router, http.MethodGet, "/patchlog/lastVersion/1.0", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"currentVersion":[1,1,0]`)
}

func TestPatchLog_ByVersionNotFound(t *testing.T) {
	router := newRouter(t)
	publish(t, router, "1.0", "1.1")

	rec := do(t, router, http.MethodGet, "/patchlog/currentVersion/9.9.9", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Couldn't find patchlog")
}
