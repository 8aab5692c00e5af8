// Package knowledge wraps the external vector store with the process-wide
// write discipline: at most one upsert in flight, queries never blocked.
package knowledge

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/chatvat/chatvat/internal/dedup"
	"github.com/chatvat/chatvat/internal/domain"
	"github.com/chatvat/chatvat/internal/repository/knowledge"
)

// Service is the single store instance shared by the ingestion loop and
// the query path. Construct exactly one per process and pass it
// explicitly; there is no hidden singleton.
type Service struct {
	repo   Repository
	embed  Embedder
	logger *zap.Logger

	// mu serializes upserts. A second writer blocks until the first
	// completes. Query deliberately does not take it: reads may observe
	// a mix of pre- and post-upsert documents during a write, trading
	// snapshot isolation for read availability.
	mu sync.Mutex
}

// New creates the knowledge service.
func New(repo Repository, embed Embedder, logger *zap.Logger) *Service {
	return &Service{repo: repo, embed: embed, logger: logger}
}

// Upsert embeds every unit and writes the whole batch as one pipelined
// store call. Identity is the content fingerprint, so identical content
// across runs overwrites instead of duplicating. Empty batches are a
// no-op. Blocks while another upsert is in flight.
func (s *Service) Upsert(ctx context.Context, units []domain.RawUnit) error {
	if len(units) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]knowledge.Entry, len(units))
	for i, u := range units {
		res, err := s.embed.Embed(ctx, u.Text)
		if err != nil {
			return fmt.Errorf("embed unit %d/%d: %w", i+1, len(units), err)
		}
		entries[i] = knowledge.Entry{
			Fingerprint:  dedup.FingerprintOf(u.Text),
			Text:         u.Text,
			Vector:       res.Embedding,
			SourceTarget: u.SourceTarget,
			SourceKind:   u.SourceKind,
		}
	}

	if err := s.repo.UpsertBatch(ctx, entries); err != nil {
		return fmt.Errorf("upsert batch: %w: %w", err, domain.ErrStoreUnavailable)
	}

	s.logger.Info("knowledge batch upserted", zap.Int("units", len(units)))
	return nil
}

// Query embeds the text and returns the k nearest stored documents.
// Runs without the writer lock.
func (s *Service) Query(ctx context.Context, text string, k int) ([]domain.Hit, error) {
	res, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.repo.Search(ctx, res.Embedding, k)
	if err != nil {
		return nil, fmt.Errorf("search: %w: %w", err, domain.ErrStoreUnavailable)
	}
	return hits, nil
}
