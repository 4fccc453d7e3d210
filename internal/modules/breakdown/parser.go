// Package breakdown parses the allocation and benchmark chart objects of a
// fund page into labeled percentage maps.
package breakdown

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"

	"github.com/aristath/tefas/internal/domain"
)

// Allocation sums outside this band are reported as a soft warning
const (
	AllocationSumMin = 90.0
	AllocationSumMax = 110.0
)

// Parser converts structured chart blocks into maps
type Parser struct {
	log zerolog.Logger
}

// NewParser creates a new structured-field parser
func NewParser(log zerolog.Logger) *Parser {
	return &Parser{
		log: log.With().Str("component", "breakdown_parser").Logger(),
	}
}

// decode strictly parses a chart object
func decode(raw string) (any, error) {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", domain.ErrParse, domain.ErrStructuralMismatch, err)
	}
	return doc, nil
}

// lookup evaluates a JSONPath expression against a decoded document
func lookup(path string, doc any) (any, error) {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found: %v", domain.ErrParse, path, err)
	}
	return v, nil
}

// toFloat accepts JSON numbers, numeric strings and {"y": n} point objects
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	case map[string]any:
		if y, ok := x["y"]; ok {
			return toFloat(y)
		}
	}
	return 0, false
}

func label(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
