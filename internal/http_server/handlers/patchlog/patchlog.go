package patchlog

import (
	"errors"
	"log/slog"
	"net/http"

	"game_backend/internal/game"
	resp "game_backend/internal/lib/api/response"
	sl "game_backend/internal/lib/logger"
	"game_backend/internal/lib/passkey"
	"game_backend/internal/lib/version"
	"game_backend/internal/models"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type CreateRequest struct {
	LastVersion    string `json:"lastVersion"`
	CurrentVersion string `json:"currentVersion" validate:"required"`
	Log            string `json:"log"`
	PassKey        string `json:"passKey" validate:"required"`
}

type Response struct {
	resp.Response
	PatchLog models.PatchLog `json:"patchLog"`
}

// Create stores a patch log. Publishing is a privileged write gated by
// the admin pass-key.
func Create(
	log *slog.Logger,
	validate *validator.Validate,
	gameService *game.Service,
	adminPassKey string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.patchlog.Create"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req CreateRequest

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

		if !passkey.Match(req.PassKey, adminPassKey) {
			log.Warn("patch log write with bad pass key")

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("Unauthorised"))

			return
		}

		current, err := version.Parse(req.CurrentVersion)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Invalid version"))

			return
		}

		pl, err := gameService.CreatePatchLog(r.Context(), req.LastVersion, current, req.Log)
		if err != nil {
			log.Error("failed to create patch log", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			Response: resp.OK(),
			PatchLog: pl,
		})
	}
}

// Latest returns the patch log with the highest version, or null when
// none have been published yet.
func Latest(
	log *slog.Logger,
	gameService *game.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.patchlog.Latest"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		pl, err := gameService.LatestPatchLog(r.Context())
		if err != nil {
			if errors.Is(err, game.ErrNotFound) {
				render.JSON(w, r, nil)

				return
			}

			log.Error("failed to load latest patch log", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			PatchLog: pl,
		})
	}
}

// ByVersion looks up a patch log by current or last version.
func ByVersion(
	log *slog.Logger,
	gameService *game.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.patchlog.ByVersion"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		mode := chi.URLParam(r, "mode")
		ver := chi.URLParam(r, "version")

		pl, err := gameService.PatchLogByVersion(r.Context(), mode, ver)
		if err != nil {
			if errors.Is(err, game.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Couldn't find patchlog"))

				return
			}

			log.Error("failed to load patch log", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			PatchLog: pl,
		})
	}
}
