package knowledge

import (
	"context"

	"github.com/chatvat/chatvat/internal/domain"
	"github.com/chatvat/chatvat/internal/repository/knowledge"
)

// Repository defines the storage contract for knowledge documents.
type Repository interface {
	UpsertBatch(ctx context.Context, entries []knowledge.Entry) error
	Search(ctx context.Context, vector []float32, k int) ([]domain.Hit, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
