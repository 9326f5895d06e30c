package invoice

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	inv := Invoice{
		SubscriptionID: 42,
		PaymentID:      5,
		GymName:        "Iron Temple",
		PlanName:       "Monthly",
		AmountCents:    100000,
		AccessCode:     "A1B2C3D4",
		IssuedAt:       time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
	}

	body := string(Render(inv))
	assert.Contains(t, body, "payment #5")
	assert.Contains(t, body, "Iron Temple")
	assert.Contains(t, body, "1000.00")
	assert.Contains(t, body, "A1B2C3D4")
	assert.Contains(t, body, "Aug 1, 2026")
}

func TestInvoice_Key(t *testing.T) {
	assert.Equal(t, "invoices/payment-5.txt", Invoice{PaymentID: 5}.Key())
}

func TestDirUploader(t *testing.T) {
	dir := t.TempDir()
	u := NewDirUploader(dir)

	err := u.Upload(context.Background(), "invoices/payment-5.txt", []byte("hello"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "invoices", "payment-5.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}
