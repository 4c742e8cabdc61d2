package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"game_backend/internal/auth"
	"game_backend/internal/config"
	"game_backend/internal/game"
	"game_backend/internal/http_server/handlers/login"
	"game_backend/internal/http_server/handlers/logout"
	"game_backend/internal/http_server/handlers/patchlog"
	"game_backend/internal/http_server/handlers/playerdata"
	"game_backend/internal/http_server/handlers/profile"
	"game_backend/internal/http_server/handlers/register"
	"game_backend/internal/http_server/handlers/releasenote"
	"game_backend/internal/http_server/handlers/reviews"
	"game_backend/internal/http_server/handlers/sendcode"
	"game_backend/internal/http_server/handlers/verifycode"
	"game_backend/internal/http_server/handlers/verifytokens"
	"game_backend/internal/lib/jwt"
	sl "game_backend/internal/lib/logger"
	"game_backend/internal/middleware/cors"
	rateLimit "game_backend/internal/middleware/ratelimit"
	"game_backend/internal/rabbitmq"
	"game_backend/internal/storage/postgres"
	"game_backend/internal/storage/redis"
	"game_backend/internal/verification"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad("./config/config.yaml")

	log := setupLogger(cfg.Env)

	log.Info("starting game backend", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("Shutdown signal received")
		cancel()
	}()

	storage, err := postgres.New(ctx, cfg)
	if err != nil {
		log.Error("failed to connect postgres", sl.Err(err))
		os.Exit(1)
	}
	defer storage.Close()

	codeStore, err := redis.New(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Error("failed to connect redis", sl.Err(err))
		os.Exit(1)
	}
	defer codeStore.Close()

	msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		log.Error("failed to connect rabbitmq", sl.Err(err))
		os.Exit(1)
	}
	defer msgBroker.Close()

	tokens := jwt.NewManager(
		cfg.Tokens.AccessTokenSecret,
		cfg.Tokens.RefreshTokenSecret,
		cfg.Tokens.AccessTokenTTL,
		cfg.Tokens.RefreshTokenTTL,
	)

	codes := verification.New(
		log,
		codeStore,
		msgBroker,
		cfg.Codes.TTL,
		cfg.Codes.DeliveryTimeout,
		cfg.Codes.DeliveryRetries,
	)

	authService := auth.New(log, storage, storage, storage, codes, tokens)
	gameService := game.New(log, storage, storage, storage, storage, storage)

	router := setupRouter(log, authService, gameService, cfg.Admin.PassKey, cfg.HTTPServer.CORSOrigins)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", sl.Err(err))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", sl.Err(err))
	} else {
		log.Info("Server stopped gracefully")
	}

	log.Info("Main service stopped")
}

func setupRouter(
	log *slog.Logger,
	authService *auth.Auth,
	gameService *game.Service,
	adminPassKey string,
	corsOrigins []string,
) *chi.Mux {
	validate := validator.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(corsOrigins))

	r.Route("/api", func(r chi.Router) {
		r.With(rateLimit.Register()).Post("/users",
			register.New(log, validate, authService),
		)
		r.With(rateLimit.Login()).Post("/login",
			login.New(log, validate, authService),
		)
		r.With(rateLimit.VerifyTokens()).Get("/verify-tokens",
			verifytokens.New(log, authService),
		)
		r.With(rateLimit.Logout()).Delete("/logout",
			logout.New(log, authService),
		)
		r.With(rateLimit.SendCode()).Post("/send-code",
			sendcode.New(log, validate, authService),
		)
		r.With(rateLimit.VerifyCode()).Post("/verify-code",
			verifycode.New(log, validate, authService),
		)

		r.Get("/users/{userId}",
			profile.New(log, gameService),
		)
		r.Patch("/player-data",
			playerdata.Update(log, validate, gameService),
		)

		r.Post("/reviews",
			reviews.Create(log, validate, gameService),
		)
		r.Get("/reviews",
			reviews.List(log, gameService),
		)
		r.Patch("/reviews/update",
			reviews.Update(log, validate, gameService),
		)

		r.Post("/patchlog",
			patchlog.Create(log, validate, gameService, adminPassKey),
		)
		r.Get("/patchlog/latest",
			patchlog.Latest(log, gameService),
		)
		r.Get("/patchlog/{mode}/{version}",
			patchlog.ByVersion(log, gameService),
		)

		r.Post("/release-note",
			releasenote.Create(log, validate, gameService, adminPassKey),
		)
		r.Get("/release-note/latest",
			releasenote.Latest(log, gameService),
		)
		r.Get("/release-note/{version}",
			releasenote.ByVersion(log, gameService),
		)
		r.Get("/release-notes",
			releasenote.List(log, gameService),
		)
	})

	return r
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
