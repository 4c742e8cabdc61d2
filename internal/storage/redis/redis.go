package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"game_backend/internal/models"
	"game_backend/internal/storage"
)

type RedisRepo struct {
	client *redis.Client
}

func New(ctx context.Context, addr, pass string, db int) (*RedisRepo, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     pass,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisRepo{
		client: client,
	}, nil
}

func codeKey(email string) string {
	return fmt.Sprintf("verify:code:%s", email)
}

// SaveCode stores the hashed code for an email, replacing any prior live
// code. Del+HSet+Expire run in one pipeline so a reissue never leaves two
// codes behind, and the key self-deletes when the TTL elapses.
func (r *RedisRepo) SaveCode(ctx context.Context, email, codeHash string, ttl time.Duration) error {
	const op = "storage.redis.SaveCode"

	key := codeKey(email)

	data := map[string]interface{}{
		"code_hash":  codeHash,
		"created_at": time.Now().Unix(),
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, data)
	pipe.Expire(ctx, key, ttl)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Code returns the live verification record for an email, if any.
func (r *RedisRepo) Code(ctx context.Context, email string) (models.VerificationCode, error) {
	const op = "storage.redis.Code"

	key := codeKey(email)

	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return models.VerificationCode{}, fmt.Errorf("%s: %w", op, err)
	}

	if len(fields) == 0 {
		return models.VerificationCode{}, storage.ErrCodeNotFound
	}

	createdAt, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return models.VerificationCode{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.VerificationCode{
		Email:     email,
		CodeHash:  fields["code_hash"],
		CreatedAt: time.Unix(createdAt, 0),
	}, nil
}

func (r *RedisRepo) DeleteCode(ctx context.Context, email string) error {
	const op = "storage.redis.DeleteCode"

	err := r.client.Del(ctx, codeKey(email)).Err()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisRepo) Close() {
	r.client.Close()
}
