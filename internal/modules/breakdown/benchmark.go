package breakdown

import (
	"fmt"

	"github.com/aristath/tefas/internal/domain"
)

// ParseBenchmark parses the benchmark comparison column chart object.
//
// xAxis.categories holds the period labels; every named series contributes one
// value per label. With more than one series the key is "<category>_<series>",
// otherwise the bare category. Null values are skipped, never zero-filled.
func (p *Parser) ParseBenchmark(raw string) (domain.BenchmarkMap, error) {
	doc, err := decode(raw)
	if err != nil {
		return nil, err
	}

	rawCategories, err := lookup("$.xAxis.categories", doc)
	if err != nil {
		return nil, err
	}
	categoryList, ok := rawCategories.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: benchmark categories are not an array", domain.ErrParse)
	}
	categories := make([]string, len(categoryList))
	for i, c := range categoryList {
		categories[i] = label(c)
	}

	rawSeries, err := lookup("$.series", doc)
	if err != nil {
		return nil, err
	}
	seriesList, ok := rawSeries.([]any)
	if !ok || len(seriesList) == 0 {
		return nil, fmt.Errorf("%w: benchmark series not found", domain.ErrParse)
	}

	composite := len(seriesList) > 1
	returns := make(domain.BenchmarkMap)

	for _, s := range seriesList {
		obj, ok := s.(map[string]any)
		if !ok {
			continue
		}
		rawName, hasName := obj["name"]
		data, hasData := obj["data"].([]any)
		if !hasName || !hasData {
			continue
		}
		name := label(rawName)

		for i, v := range data {
			if i >= len(categories) {
				break
			}
			if v == nil {
				continue
			}
			f, ok := toFloat(v)
			if !ok {
				continue
			}
			key := categories[i]
			if composite {
				key = categories[i] + "_" + name
			}
			returns[key] = f
		}
	}

	// Unnamed single series: map positionally onto bare categories
	if len(returns) == 0 {
		if obj, ok := seriesList[0].(map[string]any); ok {
			if data, ok := obj["data"].([]any); ok {
				for i, v := range data {
					if i >= len(categories) {
						break
					}
					if f, ok := toFloat(v); ok && v != nil {
						returns[categories[i]] = f
					}
				}
			}
		}
	}

	if len(returns) == 0 {
		return nil, fmt.Errorf("%w: no valid benchmark return entries", domain.ErrParse)
	}

	p.log.Debug().Int("benchmarks", len(returns)).Msg("Parsed benchmark returns")
	return returns, nil
}
