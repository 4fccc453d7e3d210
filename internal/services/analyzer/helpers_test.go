package analyzer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aristath/tefas/internal/clients/tefas"
)

var pageStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// fundPage renders a minimal fund page carrying the three chart assignments
func fundPage(prices []float64) string {
	nums := make([]string, len(prices))
	dates := make([]string, len(prices))
	for i, p := range prices {
		nums[i] = fmt.Sprintf("%g", p)
		dates[i] = `"` + pageStart.AddDate(0, 0, i).Format("02.01.2006") + `"`
	}

	return `<html><head><title>Fon Analiz</title></head><body>
<div id="MainContent_FonFiyatGrafik"></div>
<script type="text/javascript">
var chartMainContent_FonFiyatGrafik = {"chart":{"type":"line"},"xAxis":{"categories":[` + strings.Join(dates, ",") + `]},"series":[{"name":"Fiyat","data":[` + strings.Join(nums, ",") + `]}]};
var chartMainContent_PieChartFonDagilim = {"series":[{"data":[["Hisse Senedi",60],{"name":"Devlet Tahvili","y":40}]}]};
var chartMainContent_ColumnChartMatch = {"xAxis":{"categories":["1 Ay","3 Ay"]},"series":[{"name":"Fon","data":[1.5,4.2]},{"name":"Eşik Değer","data":[1.1,null]}]};
</script>
</body></html>`
}

// drift returns n prices climbing with an alternating step
func drift(n int, up, down float64) []float64 {
	out := make([]float64, n)
	p := 100.0
	for i := range out {
		if i%2 == 0 {
			p *= up
		} else {
			p *= down
		}
		out[i] = p
	}
	return out
}

// fakeFetcher serves canned pages and records concurrency
type fakeFetcher struct {
	pages map[string]string
	errs  map[string]error
	delay time.Duration

	mu       sync.Mutex
	calls    map[string]int
	inFlight atomic.Int32
	peak     atomic.Int32
}

var _ tefas.PageFetcher = (*fakeFetcher)(nil)

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: make(map[string]string),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *fakeFetcher) FetchPage(ctx context.Context, code string) (string, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls[code]++
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if err, ok := f.errs[code]; ok {
		return "", err
	}
	page, ok := f.pages[code]
	if !ok {
		return "", tefas.ErrPageNotFound
	}
	return page, nil
}

func (f *fakeFetcher) callsFor(code string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[code]
}
