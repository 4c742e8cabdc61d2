package cookies

import (
	"net/http"
	"time"
)

const (
	AccessTokenName  = "accessToken"
	RefreshTokenName = "refreshToken"
)

const (
	// Access cookie lives shorter than the token it carries, forcing a
	// silent refresh round-trip well before the token itself expires.
	accessMaxAge = 5 * time.Minute
	// Refresh cookie lifetime matches the refresh-token TTL exactly, so
	// cookie and signature never disagree about whether a session is live.
	refreshMaxAge = 7 * 24 * time.Hour
)

func SetAccessToken(w http.ResponseWriter, token string) {
	http.SetCookie(w, newCookie(AccessTokenName, token, int(accessMaxAge.Seconds())))
}

func SetRefreshToken(w http.ResponseWriter, token string) {
	http.SetCookie(w, newCookie(RefreshTokenName, token, int(refreshMaxAge.Seconds())))
}

// Clear expires both token cookies on the client.
func Clear(w http.ResponseWriter) {
	http.SetCookie(w, newCookie(AccessTokenName, "", -1))
	http.SetCookie(w, newCookie(RefreshTokenName, "", -1))
}

func newCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		MaxAge:   maxAge,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}
