package domain

import (
	"fmt"
	"strings"
)

// CleanFundCode upper-cases a fund code and strips everything that is not A-Z or 0-9
func CleanFundCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	var b strings.Builder
	b.Grow(len(code))
	for _, r := range code {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidFundCode reports whether code is 2-5 upper-case alphanumerics
func ValidFundCode(code string) bool {
	if len(code) < 2 || len(code) > 5 {
		return false
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// NormalizeFundCode cleans and validates a fund code
func NormalizeFundCode(code string) (string, error) {
	cleaned := CleanFundCode(code)
	if !ValidFundCode(cleaned) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFundCode, code)
	}
	return cleaned, nil
}
