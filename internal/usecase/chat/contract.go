package chat

import (
	"context"

	"github.com/chatvat/chatvat/internal/domain"
)

// Retriever returns the k stored documents nearest to the query text.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]domain.Hit, error)
}

// Completer generates the final answer from composed prompts.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}
