package storage

import "errors"

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("refresh token not found")
	ErrCodeNotFound       = errors.New("verification code not found")
	ErrPlayerDataNotFound = errors.New("player data not found")
	ErrReviewNotFound     = errors.New("review not found")
	ErrUnknownField       = errors.New("unknown field")
	ErrPatchLogNotFound   = errors.New("patch log not found")
	ErrNoteNotFound       = errors.New("release note not found")
)
