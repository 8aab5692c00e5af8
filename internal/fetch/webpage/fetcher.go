// Package webpage fetches web pages over HTTP and reduces them to
// Markdown text suitable for embedding. It does not execute JavaScript;
// pages that require rendering should be fronted by a prerender proxy.
package webpage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/chatvat/chatvat/internal/domain"
	"github.com/chatvat/chatvat/internal/fetch"
)

// DefaultTimeout bounds a single page fetch when the caller's context
// carries no deadline.
const DefaultTimeout = 30 * time.Second

var _ fetch.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves a page, strips non-content chrome, and converts the
// remainder to Markdown. One page yields one RawUnit.
type Fetcher struct {
	client   *http.Client
	conv     *htmltomarkdown.Converter
	limiter  *rate.Limiter
	minWords int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient replaces the HTTP client (tests).
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithRateLimit caps outgoing page fetches at rps requests per second,
// shared across all sources served by this fetcher.
func WithRateLimit(rps float64) Option {
	return func(f *Fetcher) {
		if rps > 0 {
			f.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithMinWords sets the minimum word count below which a page is
// rejected as empty (error pages, cookie walls, blank shells).
func WithMinWords(n int) Option {
	return func(f *Fetcher) { f.minWords = n }
}

// NewFetcher creates a web page fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: DefaultTimeout},
		minWords: 10,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.conv = htmltomarkdown.NewConverter(
		htmltomarkdown.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)
	return f
}

// Fetch implements fetch.Fetcher for crawled_page sources.
func (f *Fetcher) Fetch(ctx context.Context, src domain.Source) ([]domain.RawUnit, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
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

	markdown, err := f.toMarkdown(string(body))
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", src.Target, err)
	}

	if wordCount(markdown) < f.minWords {
		return nil, fmt.Errorf("page %s below %d words: %w", src.Target, f.minWords, domain.ErrEmptyResult)
	}

	return []domain.RawUnit{{
		Text:         markdown,
		SourceTarget: src.Target,
		SourceKind:   src.Kind,
	}}, nil
}

// toMarkdown drops script/style/navigation chrome before conversion so
// only readable content reaches the embedding model.
func (f *Fetcher) toMarkdown(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript, nav, header, footer, iframe, svg").Remove()

	cleaned, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("serialize html: %w", err)
	}

	markdown, err := f.conv.ConvertString(cleaned)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(markdown), nil
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
