package barcode

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/ERPlora/module-inventory/internal/domain/shared"
)

const (
	// MaxCode128Length is the longest SKU accepted for Code 128
	MaxCode128Length = 80
	ean13Payload     = 12
	ean13Length      = 13
)

// CheckDigit returns the EAN-13 check digit for a 12-digit payload.
// Odd positions weigh 1 and even positions weigh 3, counting from the left.
func CheckDigit(payload string) (int, error) {
	if len(payload) != ean13Payload || !isDigits(payload) {
		return 0, shared.NewDomainError(shared.CodeInvalidSymbolInput, "EAN13 check digit needs exactly 12 digits")
	}
	total := 0
	for i := 0; i < ean13Payload; i++ {
		d := int(payload[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		total += d
	}
	return (10 - total%10) % 10, nil
}

// GenerateEAN13 returns a random valid EAN-13 code.
// A nil source uses the global generator.
func GenerateEAN13(r *rand.Rand) string {
	var sb strings.Builder
	sb.Grow(ean13Length)
	for i := 0; i < ean13Payload; i++ {
		var d int
		if r != nil {
			d = r.IntN(10)
		} else {
			d = rand.IntN(10)
		}
		sb.WriteByte(byte('0' + d))
	}
	payload := sb.String()
	check, _ := CheckDigit(payload)
	return payload + strconv.Itoa(check)
}

// ValidEAN13 reports whether code is 13 digits with a correct check digit
func ValidEAN13(code string) bool {
	if len(code) != ean13Length || !isDigits(code) {
		return false
	}
	check, err := CheckDigit(code[:ean13Payload])
	return err == nil && int(code[ean13Payload]-'0') == check
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
