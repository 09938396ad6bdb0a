package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInvoiceNumber(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	number, err := GenerateInvoiceNumber("INV", now)
	require.NoError(t, err)

	parts := strings.Split(number, "-")
	require.Len(t, parts, 4)
	assert.Equal(t, "INV", parts[0])
	assert.Equal(t, "2024", parts[1])
	assert.Len(t, parts[2], 6)
	assert.True(t, VerifyInvoiceNumber(number))
}

func TestVerifyInvoiceNumberRejectsTampering(t *testing.T) {
	assert.False(t, VerifyInvoiceNumber("INV-2024-123456"))
	assert.False(t, VerifyInvoiceNumber("INV-2024-12345x-1"))
	assert.False(t, VerifyInvoiceNumber(""))

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	number, err := GenerateInvoiceNumber("INV", now)
	require.NoError(t, err)

	// Flip the check digit.
	tampered := number[:len(number)-1]
	if number[len(number)-1] == '0' {
		tampered += "1"
	} else {
		tampered += "0"
	}
	assert.False(t, VerifyInvoiceNumber(tampered))
}

func TestInvoiceSignature(t *testing.T) {
	const secret = "test-secret"

	sig := SignInvoice("INV-2024-123456-1", "acme", 1500.50, "2024-07-01", secret)
	assert.NotEmpty(t, sig)

	assert.True(t, VerifyInvoiceSignature("INV-2024-123456-1", "acme", 1500.50, "2024-07-01", secret, sig))
	assert.False(t, VerifyInvoiceSignature("INV-2024-123456-1", "acme", 1500.51, "2024-07-01", secret, sig))
	assert.False(t, VerifyInvoiceSignature("INV-2024-123456-1", "globex", 1500.50, "2024-07-01", secret, sig))
	assert.False(t, VerifyInvoiceSignature("INV-2024-123456-1", "acme", 1500.50, "2024-07-01", "other-secret", sig))
}
