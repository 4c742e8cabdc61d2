package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"game_backend/internal/lib/jwt"
	sl "game_backend/internal/lib/logger"
	"game_backend/internal/models"
	"game_backend/internal/storage"
	"game_backend/internal/verification"

	"golang.org/x/crypto/bcrypt"
)

const CodeKindResetPassword = "reset-password"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
)

type Auth struct {
	log      *slog.Logger
	users    UserStore
	sessions SessionStore
	players  PlayerDataSaver
	codes    CodeService
	tokens   *jwt.Manager
}

type UserStore interface {
	SaveUser(ctx context.Context, email, username string, passHash []byte) (uuid.UUID, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByUsername(ctx context.Context, username string) (models.User, error)
}

type SessionStore interface {
	SaveRefreshToken(ctx context.Context, token string, userID uuid.UUID) error
	RefreshToken(ctx context.Context, token string) (models.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) (int64, error)
}

type PlayerDataSaver interface {
	SavePlayerData(ctx context.Context, data models.PlayerData) error
}

type CodeService interface {
	Issue(ctx context.Context, email string) (string, error)
	Consume(ctx context.Context, email, candidate string) error
}

func New(
	log *slog.Logger,
	users UserStore,
	sessions SessionStore,
	players PlayerDataSaver,
	codes CodeService,
	tokens *jwt.Manager,
) *Auth {
	return &Auth{
		log:      log,
		users:    users,
		sessions: sessions,
		players:  players,
		codes:    codes,
		tokens:   tokens,
	}
}

// Login checks a credential pair and opens a session. The identifier is
// tried as an email first, then as a username. Unknown account and wrong
// password collapse into the same error so responses cannot be used to
// enumerate accounts.
func (a *Auth) Login(ctx context.Context, identifier, password string) (accessToken, refreshToken string, err error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.users.UserByEmail(ctx, identifier)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			log.Error("failed to get user", sl.Err(err))
			return "", "", fmt.Errorf("%s: %w", op, err)
		}

		user, err = a.users.UserByUsername(ctx, identifier)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				log.Info("unknown account")
				return "", "", ErrInvalidCredentials
			}

			log.Error("failed to get user", sl.Err(err))
			return "", "", fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))
		return "", "", ErrInvalidCredentials
	}

	accessToken, err = a.tokens.NewAccessToken(user.Email)
	if err != nil {
		log.Error("failed to generate access token", sl.Err(err))
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err = a.tokens.NewRefreshToken(user.Email)
	if err != nil {
		log.Error("failed to generate refresh token", sl.Err(err))
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	if err := a.sessions.SaveRefreshToken(ctx, refreshToken, user.ID); err != nil {
		log.Error("failed to save refresh token", sl.Err(err))
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in successfully", slog.String("uid", user.ID.String()))

	return accessToken, refreshToken, nil
}

// VerifyTokens validates a presented refresh token and silently mints a
// new access token when the client has none. The order matters: a token
// missing from the session store is rejected even when its signature is
// still valid (revoked early), and an expired token evicts its session
// record on the way out. A forged token is rejected without deleting
// anything.
func (a *Auth) VerifyTokens(ctx context.Context, refreshToken string, hasAccessToken bool) (uuid.UUID, string, error) {
	const op = "auth.VerifyTokens"

	log := a.log.With(slog.String("op", op))

	rt, err := a.sessions.RefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			log.Info("refresh token not in session store")
			return uuid.Nil, "", ErrUnauthorized
		}

		log.Error("failed to look up refresh token", sl.Err(err))
		return uuid.Nil, "", fmt.Errorf("%s: %w", op, err)
	}

	claims, err := a.tokens.ParseRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Info("refresh token expired, evicting session")

			if _, delErr := a.sessions.DeleteRefreshToken(ctx, refreshToken); delErr != nil {
				log.Error("failed to delete expired refresh token", sl.Err(delErr))
			}
		} else {
			log.Warn("refresh token failed verification", sl.Err(err))
		}

		return uuid.Nil, "", ErrUnauthorized
	}

	var newAccessToken string

	if !hasAccessToken {
		newAccessToken, err = a.tokens.NewAccessToken(claims.Email)
		if err != nil {
			log.Error("failed to generate access token", sl.Err(err))
			return uuid.Nil, "", fmt.Errorf("%s: %w", op, err)
		}
	}

	return rt.UserID, newAccessToken, nil
}

// Logout revokes a session. Deleting zero rows is still success:
// an already-revoked token stays revoked. An empty token is also fine,
// clearing the client's cookies is all that can be done then.
func (a *Auth) Logout(ctx context.Context, refreshToken string) error {
	const op = "auth.Logout"

	log := a.log.With(slog.String("op", op))

	if refreshToken == "" {
		log.Info("logout without token, nothing to revoke")
		return nil
	}

	removed, err := a.sessions.DeleteRefreshToken(ctx, refreshToken)
	if err != nil {
		log.Error("failed to delete refresh token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if removed == 0 {
		log.Info("logout for unknown token")
	} else {
		log.Info("logout successful")
	}

	return nil
}

// Register creates an account together with its default save data.
func (a *Auth) Register(ctx context.Context, email, username, password string) (uuid.UUID, error) {
	const op = "auth.Register"

	log := a.log.With(slog.String("op", op))

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := a.users.SaveUser(ctx, email, username, passHash)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists")
			return uuid.Nil, ErrUserExists
		}

		log.Error("failed to save user", sl.Err(err))
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := a.players.SavePlayerData(ctx, models.DefaultPlayerData(username)); err != nil {
		log.Error("failed to save default player data", sl.Err(err))
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.String("uid", id.String()))

	return id, nil
}

// SendCode issues a verification code for the email. Password-reset codes
// require an existing account; other kinds are issued blind so signup
// verification works before the account exists.
func (a *Auth) SendCode(ctx context.Context, email, kind string) error {
	const op = "auth.SendCode"

	log := a.log.With(slog.String("op", op))

	if kind == CodeKindResetPassword {
		if _, err := a.users.UserByEmail(ctx, email); err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				log.Info("reset requested for unknown account")
				return ErrUserNotFound
			}

			log.Error("failed to look up user", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if _, err := a.codes.Issue(ctx, email); err != nil {
		if errors.Is(err, verification.ErrDeliveryFailure) {
			return err
		}

		log.Error("failed to issue code", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// VerifyCode consumes a verification code.
func (a *Auth) VerifyCode(ctx context.Context, email, code string) error {
	const op = "auth.VerifyCode"

	log := a.log.With(slog.String("op", op))

	if err := a.codes.Consume(ctx, email, code); err != nil {
		if errors.Is(err, verification.ErrInvalidOrExpiredCode) {
			return err
		}

		log.Error("failed to consume code", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
