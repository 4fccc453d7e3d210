package extraction

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aristath/tefas/internal/domain"
)

// ParsePriceList decodes the body of a numeric array such as "100, 102.5,98".
// A single trailing comma is tolerated; any other empty or non-numeric token
// is a structural error since it would shift the date alignment.
func ParsePriceList(content string) ([]float64, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return []float64{}, nil
	}

	tokens := strings.Split(content, ",")
	if strings.TrimSpace(tokens[len(tokens)-1]) == "" {
		tokens = tokens[:len(tokens)-1]
	}

	prices := make([]float64, 0, len(tokens))
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: price token %d (%q) is not a number", domain.ErrStructuralMismatch, i, tok)
		}
		prices = append(prices, v)
	}
	return prices, nil
}

// ParseCategoryList decodes the body of a string array such as
// `"01.01.2024","02.01.2024"` into its unquoted elements.
func ParseCategoryList(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return []string{}
	}

	tokens := strings.Split(content, ",")
	if strings.TrimSpace(tokens[len(tokens)-1]) == "" {
		tokens = tokens[:len(tokens)-1]
	}

	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = strings.Trim(strings.TrimSpace(tok), `"'`)
	}
	return out
}
