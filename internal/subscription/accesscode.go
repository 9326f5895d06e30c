package subscription

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
)

const (
	accessCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	accessCodeLength   = 8
	accessCodeAttempts = 5
)

var ErrAccessCodeExhausted = errors.New("could not generate a unique access code")

func generateAccessCode() (string, error) {
	buf := make([]byte, accessCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	code := make([]byte, accessCodeLength)
	for i, b := range buf {
		code[i] = accessCodeAlphabet[int(b)%len(accessCodeAlphabet)]
	}
	return string(code), nil
}

// newAccessCode produces a code not currently held by any subscription.
// Collisions are rare at 36^8 but must not be ignored; exists is consulted
// for each candidate with a bounded number of attempts.
func newAccessCode(ctx context.Context, exists func(ctx context.Context, code string) (bool, error)) (string, error) {
	for i := 0; i < accessCodeAttempts; i++ {
		code, err := generateAccessCode()
		if err != nil {
			return "", err
		}

		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrAccessCodeExhausted
}
