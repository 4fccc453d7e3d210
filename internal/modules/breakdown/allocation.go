package breakdown

import (
	"fmt"

	"github.com/aristath/tefas/internal/domain"
)

// ParseAllocation parses the asset allocation pie chart object.
//
// Entries under series[0].data may be {name, y} objects or [name, value]
// pairs, mixed within the same array. Unrecognised entries are skipped; an
// allocation with no recognised entry at all is an error.
func (p *Parser) ParseAllocation(raw string) (domain.AllocationMap, error) {
	doc, err := decode(raw)
	if err != nil {
		return nil, err
	}

	data, err := lookup("$.series[0].data", doc)
	if err != nil {
		return nil, err
	}
	entries, ok := data.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: allocation data is not an array", domain.ErrParse)
	}

	allocation := make(domain.AllocationMap, len(entries))
	for i, entry := range entries {
		name, value, ok := allocationEntry(entry)
		if !ok {
			p.log.Debug().Int("index", i).Interface("entry", entry).Msg("Skipping unrecognised allocation entry")
			continue
		}
		allocation[name] = value
	}

	if len(allocation) == 0 {
		return nil, fmt.Errorf("%w: no valid asset allocation entries", domain.ErrParse)
	}

	if sum := allocation.Sum(); sum < AllocationSumMin || sum > AllocationSumMax {
		p.log.Warn().
			Float64("sum", sum).
			Int("assets", len(allocation)).
			Msg("Asset allocation percentages do not sum to ~100%")
	}

	p.log.Debug().Int("assets", len(allocation)).Msg("Parsed asset allocation")
	return allocation, nil
}

func allocationEntry(entry any) (string, float64, bool) {
	switch v := entry.(type) {
	case map[string]any:
		rawName, hasName := v["name"]
		rawY, hasY := v["y"]
		if !hasName || !hasY || rawName == nil {
			return "", 0, false
		}
		y, ok := toFloat(rawY)
		if !ok {
			return "", 0, false
		}
		name := label(rawName)
		return name, y, name != ""
	case []any:
		if len(v) < 2 || v[0] == nil {
			return "", 0, false
		}
		y, ok := toFloat(v[1])
		if !ok {
			return "", 0, false
		}
		name := label(v[0])
		return name, y, name != ""
	}
	return "", 0, false
}
