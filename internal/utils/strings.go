package utils

import (
	"strings"

	"github.com/aristath/tefas/internal/domain"
)

// ParseCSV splits a comma-separated string and returns trimmed non-empty values.
// Returns nil for empty/whitespace-only input.
func ParseCSV(s string) []string {
	if s == "" {
		return nil
	}

	var result []string
	for _, v := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return nil
	}

	return result
}

// ParseFundCodes normalises a list of raw fund codes, each of which may itself
// be a comma-separated list. Duplicates are dropped keeping the first
// occurrence; codes that fail validation are returned separately as given.
func ParseFundCodes(raw ...string) (codes []string, invalid []string) {
	seen := make(map[string]bool)
	for _, entry := range raw {
		for _, v := range ParseCSV(entry) {
			code, err := domain.NormalizeFundCode(v)
			if err != nil {
				invalid = append(invalid, v)
				continue
			}
			if seen[code] {
				continue
			}
			seen[code] = true
			codes = append(codes, code)
		}
	}
	return codes, invalid
}
