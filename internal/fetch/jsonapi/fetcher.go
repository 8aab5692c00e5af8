// Package jsonapi fetches JSON API endpoints and flattens the payload
// into embeddable "path: value" text chunks.
package jsonapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chatvat/chatvat/internal/domain"
	"github.com/chatvat/chatvat/internal/fetch"
)

// DefaultTimeout bounds a single API fetch when the caller's context
// carries no deadline.
const DefaultTimeout = 30 * time.Second

var _ fetch.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves JSON documents with optional auth headers and
// flattens them. One flattened chunk yields one RawUnit so retrieval
// stays granular.
type Fetcher struct {
	client *http.Client
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient replaces the HTTP client (tests).
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// NewFetcher creates a JSON API fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{client: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch implements fetch.Fetcher for json_api sources.
func (f *Fetcher) Fetch(ctx context.Context, src domain.Source) ([]domain.RawUnit, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range src.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", src.Target, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("HTTP %d for %s: %w", resp.StatusCode, src.Target, domain.ErrAuthDenied)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, src.Target)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parse json from %s: %w", src.Target, err)
	}

	chunks := Flatten(data)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no text extracted from %s: %w", src.Target, domain.ErrEmptyResult)
	}

	units := make([]domain.RawUnit, len(chunks))
	for i, c := range chunks {
		units[i] = domain.RawUnit{
			Text:         c,
			SourceTarget: src.Target,
			SourceKind:   src.Kind,
		}
	}
	return units, nil
}

// Flatten recursively reduces nested JSON into "a > b: value" strings.
// Map keys are visited in sorted order so output is deterministic; array
// elements flatten under the parent prefix; null and blank scalars are
// skipped.
func Flatten(data any) []string {
	return flatten(data, "")
}

func flatten(data any, prefix string) []string {
	var chunks []string

	switch v := data.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			childPrefix := k
			if prefix != "" {
				childPrefix = prefix + " > " + k
			}
			chunks = append(chunks, flatten(v[k], childPrefix)...)
		}

	case []any:
		for _, item := range v {
			chunks = append(chunks, flatten(item, prefix)...)
		}

	case nil:
		// skip

	default:
		if s := scalarString(v); s != "" {
			chunks = append(chunks, prefix+": "+s)
		}
	}

	return chunks
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
