// Package fetch defines the source-fetching contract. One implementation
// exists per source kind; the ingestion orchestrator dispatches on kind.
package fetch

import (
	"context"

	"github.com/chatvat/chatvat/internal/domain"
)

// Fetcher produces zero or more raw text units from a configured source.
// The context bounds the fetch; a timeout is treated by callers like any
// other per-source failure.
type Fetcher interface {
	Fetch(ctx context.Context, src domain.Source) ([]domain.RawUnit, error)
}

// Map routes source kinds to their fetch strategy.
type Map map[domain.SourceKind]Fetcher
