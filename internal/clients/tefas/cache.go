package tefas

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/tefas/internal/clientdata"
	"github.com/aristath/tefas/internal/domain"
)

// CachingFetcher serves pages from the client data cache and falls back to
// the wrapped fetcher when the cached copy is missing or expired.
type CachingFetcher struct {
	next  PageFetcher
	cache *clientdata.Repository
	ttl   time.Duration
	log   zerolog.Logger
}

// cachedPage is the structure stored in the cache
type cachedPage struct {
	HTML      string    `json:"html"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewCachingFetcher wraps next with a page cache. A non-positive ttl uses clientdata.TTLFundPage.
func NewCachingFetcher(next PageFetcher, cache *clientdata.Repository, ttl time.Duration, log zerolog.Logger) *CachingFetcher {
	if ttl <= 0 {
		ttl = clientdata.TTLFundPage
	}
	return &CachingFetcher{
		next:  next,
		cache: cache,
		ttl:   ttl,
		log:   log.With().Str("client", "tefas-cache").Logger(),
	}
}

// FetchPage returns a fresh cached page when one exists, else fetches and caches it.
// If the fetch fails, a stale cached page is returned instead (stale data > no data).
func (f *CachingFetcher) FetchPage(ctx context.Context, code string) (string, error) {
	code, err := domain.NormalizeFundCode(code)
	if err != nil {
		return "", err
	}

	if page, ok := f.lookup(code, true); ok {
		f.log.Debug().Str("fund", code).Time("fetched_at", page.FetchedAt).Msg("Cache hit")
		return page.HTML, nil
	}

	html, err := f.next.FetchPage(ctx, code)
	if err != nil {
		// A cancelled caller wants no answer at all
		if ctx.Err() == nil {
			if page, ok := f.lookup(code, false); ok {
				f.log.Warn().
					Err(err).
					Str("fund", code).
					Time("fetched_at", page.FetchedAt).
					Msg("Fetch failed, using stale cached page")
				return page.HTML, nil
			}
		}
		return "", err
	}

	if err := f.cache.Store(clientdata.TablePages, code, cachedPage{HTML: html, FetchedAt: time.Now()}, f.ttl); err != nil {
		f.log.Warn().Err(err).Str("fund", code).Msg("Failed to cache page")
	}
	return html, nil
}

func (f *CachingFetcher) lookup(code string, fresh bool) (cachedPage, bool) {
	var (
		data json.RawMessage
		err  error
	)
	if fresh {
		data, err = f.cache.GetIfFresh(clientdata.TablePages, code)
	} else {
		data, err = f.cache.Get(clientdata.TablePages, code)
	}
	if err != nil {
		f.log.Warn().Err(err).Str("fund", code).Msg("Page cache lookup failed")
		return cachedPage{}, false
	}
	if data == nil {
		return cachedPage{}, false
	}

	var page cachedPage
	if err := json.Unmarshal(data, &page); err != nil {
		f.log.Warn().Err(err).Str("fund", code).Msg("Discarding unreadable cached page")
		return cachedPage{}, false
	}
	return page, true
}
