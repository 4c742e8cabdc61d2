package reviews

import (
	"errors"
	"log/slog"
	"net/http"

	"game_backend/internal/game"
	resp "game_backend/internal/lib/api/response"
	sl "game_backend/internal/lib/logger"
	"game_backend/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type CreateRequest struct {
	UserID  string `json:"userId" validate:"required,uuid"`
	Content string `json:"content" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
}

type UpdateRequest struct {
	ReviewID string         `json:"reviewId" validate:"required,uuid"`
	Updates  map[string]any `json:"updates" validate:"required"`
}

type Response struct {
	resp.Response
	Review models.Review `json:"review"`
}

type ListResponse struct {
	resp.Response
	Reviews []models.Review `json:"reviews"`
}

func Create(
	log *slog.Logger,
	validate *validator.Validate,
	gameService *game.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reviews.Create"

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

		userID, _ := uuid.Parse(req.UserID)

		review, err := gameService.CreateReview(r.Context(), userID, req.Content, req.Rating)
		if err != nil {
			log.Error("failed to create review", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			Response: resp.OK(),
			Review:   review,
		})
	}
}

func List(
	log *slog.Logger,
	gameService *game.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reviews.List"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		reviews, err := gameService.Reviews(r.Context())
		if err != nil {
			log.Error("failed to list reviews", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, ListResponse{
			Response: resp.OK(),
			Reviews:  reviews,
		})
	}
}

func Update(
	log *slog.Logger,
	validate *validator.Validate,
	gameService *game.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reviews.Update"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req UpdateRequest

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

		reviewID, _ := uuid.Parse(req.ReviewID)

		review, err := gameService.UpdateReview(r.Context(), reviewID, req.Updates)
		if err != nil {
			if errors.Is(err, game.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Review couldn't be found"))

				return
			}
			if errors.Is(err, game.ErrInvalidField) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Unknown field in updates"))

				return
			}

			log.Error("failed to update review", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Review:   review,
		})
	}
}
