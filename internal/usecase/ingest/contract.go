package ingest

import (
	"context"

	"github.com/chatvat/chatvat/internal/domain"
)

// Store receives the deduplicated batch. Implemented by usecase/knowledge,
// which serializes concurrent upserts.
type Store interface {
	Upsert(ctx context.Context, units []domain.RawUnit) error
}
