package reviews

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game_backend/internal/game"
	"game_backend/internal/storage/memory"
)

type fixture struct {
	service *game.Service
	store   *memory.Storage
	userID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	id, err := store.SaveUser(context.Background(), "ada@example.com", "ada", []byte("x"))
	require.NoError(t, err)

	return &fixture{
		service: game.New(log, store, store, store, store, store),
		store:   store,
		userID:  id,
	}
}

func (f *fixture) handle(t *testing.T, handler http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, "/api/reviews", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	return rec
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReviews_CreateAndList(t *testing.T) {
	f := newFixture(t)
	log := newLogger()
	validate := validator.New()

	body := `{"userId":"` + f.userID.String() + `","content":"great game","rating":5}`
	rec := f.handle(t, Create(log, validate, f.service), http.MethodPost, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.handle(t, List(log, f.service), http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "great game")
	assert.Contains(t, rec.Body.String(), `"username":"ada"`)
}

func TestReviews_UpdateKnownFields(t *testing.T) {
	f := newFixture(t)
	log := newLogger()
	validate := validator.New()

	rev, err := f.service.CreateReview(context.Background(), f.userID, "good", 4)
	require.NoError(t, err)

	body := `{"reviewId":"` + rev.ID.String() + `","updates":{"rating":5,"ownerReply":"thanks!"}}`
	rec := f.handle(t, Update(log, validate, f.service), http.MethodPatch, body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rating":5`)
	assert.Contains(t, rec.Body.String(), `"ownerReply":"thanks!"`)
}

func TestReviews_UpdateUnknownFieldIsBadRequest(t *testing.T) {
	f := newFixture(t)
	log := newLogger()
	validate := validator.New()

	rev, err := f.service.CreateReview(context.Background(), f.userID, "good", 4)
	require.NoError(t, err)

	body := `{"reviewId":"` + rev.ID.String() + `","updates":{"userId":"` + uuid.New().String() + `"}}`
	rec := f.handle(t, Update(log, validate, f.service), http.MethodPatch, body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unknown field in updates")
}

func TestReviews_UpdateMissingReview(t *testing.T) {
	f := newFixture(t)
	log := newLogger()
	validate := validator.New()

	body := `{"reviewId":"` + uuid.New().String() + `","updates":{"rating":1}}`
	rec := f.handle(t, Update(log, validate, f.service), http.MethodPatch, body)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Review couldn't be found")
}
