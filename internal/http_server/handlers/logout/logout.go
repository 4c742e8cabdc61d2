package logout

import (
	"log/slog"
	"net/http"
	"strings"

	"game_backend/internal/auth"
	"game_backend/internal/http_server/cookies"
	resp "game_backend/internal/lib/api/response"
	sl "game_backend/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Request struct {
	RefreshToken string `json:"refreshToken"`
}

type Response struct {
	resp.Response
}

// New revokes a session. The refresh token is accepted from the cookie,
// the request body or the Authorization header, in that order. Whatever
// happens, both cookies are cleared and the call reports success: logout
// of an already-dead session is not an error.
func New(
	log *slog.Logger,
	authService *auth.Auth,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logout.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		refreshToken := tokenFromRequest(r)

		cookies.Clear(w)

		if err := authService.Logout(r.Context(), refreshToken); err != nil {
			log.Error("failed to logout user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("user logged out")

		render.JSON(w, r, Response{Response: resp.OK()})
	}
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(cookies.RefreshTokenName); err == nil && c.Value != "" {
		return c.Value
	}

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}

	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return ""
}
