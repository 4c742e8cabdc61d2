package random

import (
	"crypto/rand"
	"fmt"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// CodeLength is the number of characters in a verification code.
// 8 characters over a 64-symbol alphabet give 48 bits of entropy.
const CodeLength = 8

// NewCode returns a one-time verification code built from crypto/rand.
func NewCode() (string, error) {
	const op = "random.NewCode"

	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	// 64 symbols, so a byte maps onto the alphabet without modulo bias.
	for i, b := range buf {
		buf[i] = codeAlphabet[b&63]
	}

	return string(buf), nil
}
