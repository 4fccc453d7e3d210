package extraction

import (
	"regexp"

	"github.com/aristath/tefas/internal/domain"
)

// Matcher is one textual pattern for locating a block. The first capture
// group of Pattern is the block content.
type Matcher struct {
	Name    string
	Pattern *regexp.Regexp
}

// Names of the JavaScript assignments that hold each chart object on a fund page
const (
	PriceChartVar      = "chartMainContent_FonFiyatGrafik"
	AllocationChartVar = "chartMainContent_PieChartFonDagilim"
	BenchmarkChartVar  = "chartMainContent_ColumnChartMatch"
)

// assignmentPattern matches `<name> = {...};` and captures the object literal
func assignmentPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)` + regexp.QuoteMeta(name) + `\s*=\s*(\{.*?\});`)
}

var priceChartPattern = assignmentPattern(PriceChartVar)

// DefaultMatchers lists, per block kind, the patterns tried in priority order.
// Adding a markup variant means adding an entry here.
func DefaultMatchers() map[domain.BlockKind][]Matcher {
	return map[domain.BlockKind][]Matcher{
		domain.BlockPrice: {
			{Name: "quoted-data", Pattern: regexp.MustCompile(`"data":\[([-\d.,\s]+)\]`)},
			{Name: "bare-data", Pattern: regexp.MustCompile(`data:\[([-\d.,\s]+)\]`)},
			{Name: "quoted-data-spaced", Pattern: regexp.MustCompile(`"data":\s*\[([-\d.,\s]+)\]`)},
		},
		domain.BlockCategories: {
			{Name: "quoted-categories", Pattern: regexp.MustCompile(`(?s)"categories":\[(.*?)\]`)},
			{Name: "bare-categories", Pattern: regexp.MustCompile(`(?s)categories:\[(.*?)\]`)},
			{Name: "quoted-categories-spaced", Pattern: regexp.MustCompile(`(?s)"categories":\s*\[(.*?)\]`)},
		},
		domain.BlockAllocation: {
			{Name: "pie-chart-assignment", Pattern: assignmentPattern(AllocationChartVar)},
		},
		domain.BlockBenchmark: {
			{Name: "column-chart-assignment", Pattern: assignmentPattern(BenchmarkChartVar)},
		},
	}
}
