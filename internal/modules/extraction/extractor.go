// Package extraction locates the chart data blocks embedded in a fund page.
//
// A fund page carries its price history, date axis, asset allocation and
// benchmark comparison as JavaScript chart objects. The markup is not stable,
// so every block kind has an ordered list of matchers; the first one that
// matches wins. Nothing here interprets numbers.
package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/aristath/tefas/internal/domain"
)

// Blocks is the result of extracting every block from one page
type Blocks struct {
	Price      domain.RawBlock
	Categories domain.RawBlock
	Allocation *domain.RawBlock // nil when absent
	Benchmark  *domain.RawBlock // nil when absent
}

// Extractor runs the matcher cascade over page text
type Extractor struct {
	matchers map[domain.BlockKind][]Matcher
	log      zerolog.Logger
}

// NewExtractor creates an extractor with the default matchers
func NewExtractor(log zerolog.Logger) *Extractor {
	return NewExtractorWithMatchers(DefaultMatchers(), log)
}

// NewExtractorWithMatchers creates an extractor with a custom matcher table
func NewExtractorWithMatchers(matchers map[domain.BlockKind][]Matcher, log zerolog.Logger) *Extractor {
	return &Extractor{
		matchers: matchers,
		log:      log.With().Str("component", "extractor").Logger(),
	}
}

// source is one view of the page that matchers run against
type source struct {
	name string
	text string
}

// page holds the views of a page, computed once per extraction call
type page struct {
	chart   *source // the price chart assignment, when present
	scripts *source // inline <script> bodies, when the text is HTML
	raw     source
}

func (e *Extractor) prepare(text string) page {
	p := page{raw: source{name: "raw", text: text}}

	if strings.Contains(strings.ToLower(text), "<script") {
		if scripts, err := collectScripts(text); err != nil {
			e.log.Debug().Err(err).Msg("Failed to parse page as HTML, matching raw text only")
		} else if scripts != "" {
			p.scripts = &source{name: "scripts", text: scripts}
		}
	}

	if m := priceChartPattern.FindStringSubmatch(text); m != nil {
		p.chart = &source{name: "price-chart", text: m[1]}
	}

	return p
}

// sources returns the views to search for a block kind, in order
func (p page) sources(kind domain.BlockKind) []source {
	out := make([]source, 0, 3)
	if p.chart != nil && (kind == domain.BlockPrice || kind == domain.BlockCategories) {
		out = append(out, *p.chart)
	}
	if p.scripts != nil {
		out = append(out, *p.scripts)
	}
	return append(out, p.raw)
}

// Extract returns the content of a single block kind, or an error wrapping
// domain.ErrExtraction when no matcher finds it.
func (e *Extractor) Extract(text string, kind domain.BlockKind) (domain.RawBlock, error) {
	return e.extract(e.prepare(text), kind)
}

func (e *Extractor) extract(p page, kind domain.BlockKind) (domain.RawBlock, error) {
	matchers, ok := e.matchers[kind]
	if !ok || len(matchers) == 0 {
		return domain.RawBlock{}, fmt.Errorf("%w: no matchers registered for %s block", domain.ErrExtraction, kind)
	}

	for _, src := range p.sources(kind) {
		for _, m := range matchers {
			match := m.Pattern.FindStringSubmatch(src.text)
			if match == nil || len(match) < 2 {
				continue
			}

			content := match[1]
			if isStructured(kind) && !json.Valid([]byte(content)) {
				// A structured block is all or nothing
				return domain.RawBlock{}, fmt.Errorf("%w: %s block is not valid JSON", domain.ErrExtraction, kind)
			}

			e.log.Debug().
				Str("block", string(kind)).
				Str("pattern", m.Name).
				Str("source", src.name).
				Int("length", len(content)).
				Msg("Block pattern matched")

			return domain.RawBlock{Kind: kind, Content: content}, nil
		}
	}

	return domain.RawBlock{}, fmt.Errorf("%w: %s block not found", domain.ErrExtraction, kind)
}

// ExtractAll extracts every block from a page. Missing price or category
// blocks are fatal; allocation and benchmark blocks are optional and are left
// nil when absent.
func (e *Extractor) ExtractAll(text string) (Blocks, error) {
	p := e.prepare(text)

	price, err := e.extract(p, domain.BlockPrice)
	if err != nil {
		return Blocks{}, err
	}
	categories, err := e.extract(p, domain.BlockCategories)
	if err != nil {
		return Blocks{}, err
	}

	blocks := Blocks{Price: price, Categories: categories}

	if alloc, err := e.extract(p, domain.BlockAllocation); err != nil {
		e.log.Warn().Err(err).Msg("Allocation block unavailable")
	} else {
		blocks.Allocation = &alloc
	}

	if bench, err := e.extract(p, domain.BlockBenchmark); err != nil {
		e.log.Warn().Err(err).Msg("Benchmark block unavailable")
	} else {
		blocks.Benchmark = &bench
	}

	return blocks, nil
}

func isStructured(kind domain.BlockKind) bool {
	return kind == domain.BlockAllocation || kind == domain.BlockBenchmark
}

// collectScripts concatenates the bodies of all inline <script> elements
func collectScripts(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		body := s.Text()
		if strings.TrimSpace(body) == "" {
			return
		}
		b.WriteString(body)
		b.WriteByte('\n')
	})
	return b.String(), nil
}
