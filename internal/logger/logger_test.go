package logger

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	Init()
	require.NotNil(t, InfoLogger)
	require.NotNil(t, ErrorLogger)
	require.NotNil(t, DebugLogger)
}

func TestFormatKV(t *testing.T) {
	assert.Equal(t, "plain", formatKV("plain", nil))
	assert.Equal(t, "msg a=1 b=two", formatKV("msg", []interface{}{"a", 1, "b", "two"}))
	assert.Equal(t, "msg dangling", formatKV("msg", []interface{}{"dangling"}))
}

func TestInfoWritesToBuffer(t *testing.T) {
	Init()
	var buf bytes.Buffer
	InfoLogger = log.New(&buf, "INFO: ", 0)

	Info("payment completed", "payment_id", 42)

	assert.Contains(t, buf.String(), "payment completed payment_id=42")
}
