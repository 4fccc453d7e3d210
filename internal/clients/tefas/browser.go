package tefas

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/aristath/tefas/internal/domain"
	"github.com/aristath/tefas/internal/utils"
)

const (
	// DefaultBaseURL is the fund analysis page
	DefaultBaseURL = "https://www.tefas.gov.tr/FonAnaliz.aspx"

	// periodSelector is the widest period radio button ("5 years") of the price chart
	periodSelector = "#MainContent_RadioButtonListPeriod_7"
	// chartSelector appears once the price chart has been rendered
	chartSelector = "#MainContent_FonFiyatGrafik"
)

// BrowserConfig configures the headless browser fetcher
type BrowserConfig struct {
	BaseURL   string
	Headless  bool
	Timeout   time.Duration
	UserAgent string
}

// BrowserFetcher renders fund pages in a headless Chrome via chromedp.
// Each fetch starts a fresh browser so concurrent fetches never share state.
type BrowserFetcher struct {
	cfg BrowserConfig
	log zerolog.Logger
}

// NewBrowserFetcher creates a browser fetcher, filling defaults for empty fields
func NewBrowserFetcher(cfg BrowserConfig, log zerolog.Logger) *BrowserFetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	return &BrowserFetcher{
		cfg: cfg,
		log: log.With().Str("client", "tefas-browser").Logger(),
	}
}

// PageURL returns the analysis page URL for a fund code
func (f *BrowserFetcher) PageURL(code string) string {
	return f.cfg.BaseURL + "?FonKod=" + url.QueryEscape(code)
}

// FetchPage opens the fund page, selects the widest price period, waits for the
// chart and returns the rendered document. There are no retries.
func (f *BrowserFetcher) FetchPage(ctx context.Context, code string) (string, error) {
	code, err := domain.NormalizeFundCode(code)
	if err != nil {
		return "", err
	}

	timer := utils.NewTimer("fetch page "+code, f.log)
	defer timer.Stop()

	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if f.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(f.cfg.UserAgent))
	}

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocatorCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	defer browserCancel()

	runCtx, cancel := context.WithTimeout(browserCtx, f.cfg.Timeout)
	defer cancel()

	target := f.PageURL(code)
	f.log.Debug().Str("fund", code).Str("url", target).Msg("Fetching fund page")

	var html string
	err = chromedp.Run(runCtx,
		chromedp.Navigate(target),
		chromedp.WaitVisible(periodSelector, chromedp.ByQuery),
		chromedp.Click(periodSelector, chromedp.ByQuery),
		chromedp.WaitVisible(chartSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("browser fetch of %s failed: %w", target, err)
	}

	f.log.Info().Str("fund", code).Int("bytes", len(html)).Msg("Fund page fetched")
	return html, nil
}
