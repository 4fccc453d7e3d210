// Package tefas fetches rendered fund analysis pages from tefas.gov.tr.
package tefas

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/aristath/tefas/internal/domain"
)

// ErrPageNotFound is returned when no page exists for a fund code
var ErrPageNotFound = errors.New("page not found")

// PageFetcher returns the fully rendered page text for a fund code
type PageFetcher interface {
	FetchPage(ctx context.Context, code string) (string, error)
}

// DirFetcher reads previously saved pages from <dir>/<CODE>.html
type DirFetcher struct {
	dir string
	log zerolog.Logger
}

// NewDirFetcher creates a fetcher that serves pages from dir
func NewDirFetcher(dir string, log zerolog.Logger) *DirFetcher {
	return &DirFetcher{
		dir: dir,
		log: log.With().Str("client", "tefas-dir").Logger(),
	}
}

// FetchPage reads the saved page for code
func (f *DirFetcher) FetchPage(ctx context.Context, code string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	code, err := domain.NormalizeFundCode(code)
	if err != nil {
		return "", err
	}

	path := filepath.Join(f.dir, code+".html")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrPageNotFound, path)
		}
		return "", fmt.Errorf("failed to read page %s: %w", path, err)
	}

	f.log.Debug().Str("fund", code).Str("path", path).Int("bytes", len(data)).Msg("Page loaded from disk")
	return string(data), nil
}
