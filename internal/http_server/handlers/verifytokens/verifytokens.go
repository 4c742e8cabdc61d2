package verifytokens

import (
	"errors"
	"log/slog"
	"net/http"

	"game_backend/internal/auth"
	"game_backend/internal/http_server/cookies"
	resp "game_backend/internal/lib/api/response"
	sl "game_backend/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	ID string `json:"id"`
}

// New verifies the refresh-token cookie and silently reissues the access
// cookie when the client no longer has one.
func New(
	log *slog.Logger,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.verifytokens.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		refreshCookie, err := r.Cookie(cookies.RefreshTokenName)
		if err != nil || refreshCookie.Value == "" {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, resp.Error("Unauthorised"))

			return
		}

		hasAccessToken := false
		if accessCookie, err := r.Cookie(cookies.AccessTokenName); err == nil && accessCookie.Value != "" {
			hasAccessToken = true
		}

		userID, newAccessToken, err := authService.VerifyTokens(r.Context(), refreshCookie.Value, hasAccessToken)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthorized) {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.Error("Unauthorised"))

				return
			}

			log.Error("failed to verify tokens", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		if newAccessToken != "" {
			cookies.SetAccessToken(w, newAccessToken)
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			ID:       userID.String(),
		})
	}
}
