package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// GenerateInvoiceNumber generates an invoice number of the form
// PREFIX-YYYY-DDDDDD-C where C is a mod-10 check digit over the random
// portion.
func GenerateInvoiceNumber(prefix string, now time.Time) (string, error) {
	const digits = 6

	random := make([]byte, digits)
	if _, err := rand.Read(random); err != nil {
		return "", fmt.Errorf("failed to generate random digits: %w", err)
	}

	var builder strings.Builder
	checksum := 0
	for _, b := range random {
		d := int(b % 10)
		checksum += d
		builder.WriteByte(byte(d) + '0')
	}

	return fmt.Sprintf("%s-%d-%s-%d", prefix, now.Year(), builder.String(), checksum%10), nil
}

// VerifyInvoiceNumber checks the embedded check digit of a generated
// invoice number.
func VerifyInvoiceNumber(number string) bool {
	parts := strings.Split(number, "-")
	if len(parts) != 4 || len(parts[3]) != 1 {
		return false
	}
	checksum := 0
	for _, c := range parts[2] {
		if c < '0' || c > '9' {
			return false
		}
		checksum += int(c - '0')
	}
	return byte(checksum%10)+'0' == parts[3][0]
}

// SignInvoice generates an HMAC over the fields that must not change
// after an invoice is issued
func SignInvoice(number, clientID string, amount float64, dueDate, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	data := fmt.Sprintf("%s|%s|%.2f|%s", number, clientID, amount, dueDate)
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyInvoiceSignature checks an invoice HMAC in constant time
func VerifyInvoiceSignature(number, clientID string, amount float64, dueDate, secret, signature string) bool {
	expected := SignInvoice(number, clientID, amount, dueDate, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
