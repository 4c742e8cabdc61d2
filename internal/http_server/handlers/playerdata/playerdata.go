package playerdata

import (
	"errors"
	"log/slog"
	"net/http"

	"game_backend/internal/game"
	resp "game_backend/internal/lib/api/response"
	sl "game_backend/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Username string         `json:"username" validate:"required"`
	Updates  map[string]any `json:"updates" validate:"required"`
}

type Response struct {
	resp.Response
}

// Update applies a partial save-data patch for a player.
func Update(
	log *slog.Logger,
	validate *validator.Validate,
	gameService *game.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.playerdata.Update"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		if err := gameService.UpdatePlayerData(r.Context(), req.Username, req.Updates); err != nil {
			if errors.Is(err, game.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Player data not found"))

				return
			}

			log.Error("failed to update player data", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, Response{Response: resp.OK()})
	}
}
