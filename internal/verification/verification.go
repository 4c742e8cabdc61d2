package verification

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sl "game_backend/internal/lib/logger"
	"game_backend/internal/lib/random"
	"game_backend/internal/models"
	"game_backend/internal/storage"
)

var (
	// ErrInvalidOrExpiredCode deliberately covers wrong, consumed and
	// expired codes alike, so responses never reveal which one it was.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	ErrDeliveryFailure      = errors.New("failed to deliver code")
)

type CodeStore interface {
	SaveCode(ctx context.Context, email, codeHash string, ttl time.Duration) error
	Code(ctx context.Context, email string) (models.VerificationCode, error)
	DeleteCode(ctx context.Context, email string) error
}

type Publisher interface {
	SendMessage(ctx context.Context, msg models.Message) error
}

type Service struct {
	log             *slog.Logger
	codes           CodeStore
	publisher       Publisher
	codeTTL         time.Duration
	deliveryTimeout time.Duration
	deliveryRetries int
	backoff         time.Duration
	now             func() time.Time
}

func New(
	log *slog.Logger,
	codes CodeStore,
	publisher Publisher,
	codeTTL, deliveryTimeout time.Duration,
	deliveryRetries int,
) *Service {
	// A non-positive budget still means one attempt: the mail has to be
	// tried at least once before Issue may claim success.
	if deliveryRetries < 1 {
		deliveryRetries = 1
	}

	return &Service{
		log:             log,
		codes:           codes,
		publisher:       publisher,
		codeTTL:         codeTTL,
		deliveryTimeout: deliveryTimeout,
		deliveryRetries: deliveryRetries,
		backoff:         time.Second,
		now:             time.Now,
	}
}

// Issue generates a one-time code for the email, stores its hash with a TTL
// and hands the plaintext to the mail queue. Storing the code replaces any
// prior live code for the same email. If delivery ultimately fails, the
// stored record is rolled back so it cannot strand reissuance. Only the
// hash is ever persisted; the plaintext goes to the caller and the mailbox.
func (s *Service) Issue(ctx context.Context, email string) (string, error) {
	const op = "verification.Issue"

	log := s.log.With(slog.String("op", op))

	code, err := random.NewCode()
	if err != nil {
		log.Error("failed to generate code", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.codes.SaveCode(ctx, email, hashCode(code), s.codeTTL); err != nil {
		log.Error("failed to save code", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	msg := models.Message{
		Email:   email,
		Subject: "Your Verification Code",
		Body: fmt.Sprintf(
			"Your verification code for Cosmic Ascension is %s. Enter this code in the website.\n"+
				"If this wasn't you, don't worry, just don't allow anyone access to this code.",
			code,
		),
	}

	if err := s.deliver(ctx, msg); err != nil {
		log.Error("failed to deliver code", sl.Err(err))

		if delErr := s.codes.DeleteCode(ctx, email); delErr != nil {
			log.Error("failed to roll back undelivered code", sl.Err(delErr))
		}

		return "", ErrDeliveryFailure
	}

	log.Info("verification code issued")

	return code, nil
}

// Consume checks a candidate code and deletes the record on match.
// A second call with the same code always fails.
func (s *Service) Consume(ctx context.Context, email, candidate string) error {
	const op = "verification.Consume"

	log := s.log.With(slog.String("op", op))

	rec, err := s.codes.Code(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrCodeNotFound) {
			return ErrInvalidOrExpiredCode
		}

		log.Error("failed to load code", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	// The store expires records on its own, but never trust the sweep:
	// recheck the age before accepting.
	if s.now().Sub(rec.CreatedAt) > s.codeTTL {
		return ErrInvalidOrExpiredCode
	}

	if subtle.ConstantTimeCompare([]byte(hashCode(candidate)), []byte(rec.CodeHash)) != 1 {
		return ErrInvalidOrExpiredCode
	}

	if err := s.codes.DeleteCode(ctx, email); err != nil {
		log.Error("failed to delete consumed code", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("verification code consumed")

	return nil
}

func (s *Service) deliver(ctx context.Context, msg models.Message) error {
	var err error

	for attempt := 1; attempt <= s.deliveryRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.deliveryTimeout)
		err = s.publisher.SendMessage(attemptCtx, msg)
		cancel()

		if err == nil {
			return nil
		}

		if attempt < s.deliveryRetries {
			select {
			case <-time.After(s.backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return err
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
