package profile

import (
	"errors"
	"log/slog"
	"net/http"

	"game_backend/internal/game"
	resp "game_backend/internal/lib/api/response"
	sl "game_backend/internal/lib/logger"
	"game_backend/internal/models"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

type Response struct {
	resp.Response
	User       models.User       `json:"user"`
	PlayerData models.PlayerData `json:"playerData"`
}

// New returns an account profile together with its save data.
// The password hash never serializes (json:"-" on the model).
func New(
	log *slog.Logger,
	gameService *game.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profile.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		userID, err := uuid.Parse(chi.URLParam(r, "userId"))
		if err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, resp.Error("User not found"))

			return
		}

		user, data, err := gameService.Profile(r.Context(), userID)
		if err != nil {
			if errors.Is(err, game.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("User not found"))

				return
			}

			log.Error("failed to load profile", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response:   resp.OK(),
			User:       user,
			PlayerData: data,
		})
	}
}
