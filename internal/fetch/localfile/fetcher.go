// Package localfile fetches content from files on the local filesystem.
package localfile

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/chatvat/chatvat/internal/domain"
	"github.com/chatvat/chatvat/internal/fetch"
)

var _ fetch.Fetcher = (*Fetcher)(nil)

// Fetcher reads a whole file as one RawUnit.
type Fetcher struct{}

// NewFetcher creates a local file fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{}
}

// Fetch implements fetch.Fetcher for local_file sources.
func (f *Fetcher) Fetch(_ context.Context, src domain.Source) ([]domain.RawUnit, error) {
	data, err := os.ReadFile(src.Target)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Target, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("file %s is empty: %w", src.Target, domain.ErrEmptyResult)
	}

	return []domain.RawUnit{{
		Text:         text,
		SourceTarget: src.Target,
		SourceKind:   src.Kind,
	}}, nil
}
