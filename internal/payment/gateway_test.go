package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hmacHex(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestClient_VerifySignature(t *testing.T) {
	c := NewClient("key_id", "key_secret", "webhook_secret", "http://unused")

	valid := hmacHex([]byte("order_abc|pay_xyz"), "key_secret")

	assert.True(t, c.VerifySignature("order_abc", "pay_xyz", valid))
	assert.False(t, c.VerifySignature("order_abc", "pay_xyz", "forged"))
	assert.False(t, c.VerifySignature("order_other", "pay_xyz", valid))
	assert.False(t, c.VerifySignature("", "pay_xyz", valid))
	assert.False(t, c.VerifySignature("order_abc", "pay_xyz", ""))
}

func TestClient_VerifyWebhookSignature(t *testing.T) {
	c := NewClient("key_id", "key_secret", "webhook_secret", "http://unused")

	body := []byte(`{"event":"payment.captured","order_id":"order_abc"}`)
	valid := hmacHex(body, "webhook_secret")

	assert.True(t, c.VerifyWebhookSignature(body, valid))
	assert.False(t, c.VerifyWebhookSignature(body, hmacHex(body, "wrong_secret")))
	assert.False(t, c.VerifyWebhookSignature([]byte(`tampered`), valid))
	assert.False(t, c.VerifyWebhookSignature(body, ""))
}

func TestClient_CreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("Idempotence-Key"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key_id", user)
		assert.Equal(t, "key_secret", pass)

		var req createOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(100000), req.Amount)
		assert.Equal(t, "INR", req.Currency)
		assert.Equal(t, "sub_42", req.Receipt)

		json.NewEncoder(w).Encode(Order{
			ID: "order_abc", AmountCents: req.Amount, Currency: req.Currency,
			Receipt: req.Receipt, Status: "created",
		})
	}))
	defer srv.Close()

	c := NewClient("key_id", "key_secret", "webhook_secret", srv.URL)

	order, err := c.CreateOrder(context.Background(), 100000, "sub_42", "INR", map[string]string{"gym": "Iron Temple"})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int64(100000), order.AmountCents)
}

func TestClient_CreateOrder_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("key_id", "key_secret", "webhook_secret", srv.URL)

	order, err := c.CreateOrder(context.Background(), 100000, "sub_42", "INR", nil)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Nil(t, order)
}

func TestClient_CreateOrder_Unreachable(t *testing.T) {
	c := NewClient("key_id", "key_secret", "webhook_secret", "http://127.0.0.1:1")

	order, err := c.CreateOrder(context.Background(), 100000, "sub_42", "INR", nil)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Nil(t, order)
}
