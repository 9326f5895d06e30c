package subscription

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		code, err := generateAccessCode()
		require.NoError(t, err)
		require.Len(t, code, accessCodeLength)

		for _, c := range code {
			assert.True(t, strings.ContainsRune(accessCodeAlphabet, c),
				"unexpected character %q in code %s", c, code)
		}
		seen[code] = true
	}

	// 100 draws from a 36^8 space colliding would point at broken randomness.
	assert.Greater(t, len(seen), 95)
}

func TestNewAccessCode_RetriesOnCollision(t *testing.T) {
	calls := 0
	code, err := newAccessCode(context.Background(), func(ctx context.Context, code string) (bool, error) {
		calls++
		return calls < 3, nil
	})
	require.NoError(t, err)
	assert.Len(t, code, accessCodeLength)
	assert.Equal(t, 3, calls)
}

func TestNewAccessCode_Exhausted(t *testing.T) {
	code, err := newAccessCode(context.Background(), func(ctx context.Context, code string) (bool, error) {
		return true, nil
	})
	assert.ErrorIs(t, err, ErrAccessCodeExhausted)
	assert.Empty(t, code)
}
