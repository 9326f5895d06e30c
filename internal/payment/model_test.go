package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1000.00", FormatAmount(100000))
	assert.Equal(t, "0.50", FormatAmount(50))
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "12345.67", FormatAmount(1234567))
}
