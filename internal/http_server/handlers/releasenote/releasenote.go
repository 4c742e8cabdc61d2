package releasenote

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
	Version string `json:"version" validate:"required"`
	Text    string `json:"text" validate:"required"`
	PassKey string `json:"passKey" validate:"required"`
}

type Response struct {
	resp.Response
	ReleaseNote models.ReleaseNote `json:"releaseNote"`
}

type ListResponse struct {
	resp.Response
	ReleaseNotes []models.ReleaseNote `json:"releaseNotes"`
}

func Create(
	log *slog.Logger,
	validate *validator.Validate,
	gameService *game.Service,
	adminPassKey string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.releasenote.Create"

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
			log.Warn("release note write with bad pass key")

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("Unauthorised"))

			return
		}

		v, err := version.Parse(req.Version)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Invalid version"))

			return
		}

		note, err := gameService.CreateReleaseNote(r.Context(), v, req.Text)
		if err != nil {
			log.Error("failed to create release note", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			Response:    resp.OK(),
			ReleaseNote: note,
		})
	}
}

func Latest(
	log *slog.Logger,
	gameService *game.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.releasenote.Latest"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		note, err := gameService.LatestReleaseNote(r.Context())
		if err != nil {
			if errors.Is(err, game.ErrNotFound) {
				render.JSON(w, r, nil)

				return
			}

			log.Error("failed to load latest release note", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response:    resp.OK(),
			ReleaseNote: note,
		})
	}
}

func ByVersion(
	log *slog.Logger,
	gameService *game.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.releasenote.ByVersion"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		note, err := gameService.ReleaseNoteByVersion(r.Context(), chi.URLParam(r, "version"))
		if err != nil {
			if errors.Is(err, game.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Couldn't find release note"))

				return
			}

			log.Error("failed to load release note", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response:    resp.OK(),
			ReleaseNote: note,
		})
	}
}

func List(
	log *slog.Logger,
	gameService *game.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.releasenote.List"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		notes, err := gameService.ReleaseNotes(r.Context())
		if err != nil {
			log.Error("failed to list release notes", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, ListResponse{
			Response:     resp.OK(),
			ReleaseNotes: notes,
		})
	}
}
