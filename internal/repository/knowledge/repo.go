// Package knowledge persists ingested content as fingerprint-keyed hash
// documents and serves nearest-neighbor queries over them.
package knowledge

import (
	"context"
	"errors"
	"fmt"

	"github.com/chatvat/chatvat/internal/db"
	"github.com/chatvat/chatvat/internal/domain"
)

// store is the consumer interface for knowledge documents (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Entry is one embedded unit ready for storage.
type Entry struct {
	Fingerprint  domain.Fingerprint
	Text         string
	Vector       []float32
	SourceTarget string
	SourceKind   domain.SourceKind
}

// HNSWConfig tunes the vector index build.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements usecase/knowledge.Repository.
type Repo struct {
	store     store
	keyPrefix string
	indexName string
	vectorDim int
	hnsw      HNSWConfig
}

// New creates a knowledge repository.
func New(s store, keyPrefix, indexName string, vectorDim int) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix, indexName: indexName, vectorDim: vectorDim}
}

// WithHNSW overrides HNSW build parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// EnsureIndex creates the FT index if it does not exist yet. Idempotent.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.indexName, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     r.indexName,
		Prefixes: []string{r.keyPrefix},
		Fields: []db.IndexField{
			{Name: "source", Type: db.IndexFieldTag},
			{Name: "kind", Type: db.IndexFieldTag},
			{
				Name:              "vector",
				Type:              db.IndexFieldVector,
				VectorDim:         r.vectorDim,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		// Lost a create race with another process; the index is there.
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", r.indexName, err)
	}
	return nil
}

// UpsertBatch writes all entries in one pipelined round-trip. Keys are
// derived from content fingerprints, so re-writing identical content
// overwrites the existing document instead of duplicating it.
func (r *Repo) UpsertBatch(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(entries))
	for i, e := range entries {
		items[i] = db.HashSetItem{
			Key:    r.docKey(e.Fingerprint),
			Fields: buildHashFields(e),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %d entries: %w", len(entries), err)
	}
	return nil
}

// Search runs a KNN query and maps hits back to domain values.
func (r *Repo) Search(ctx context.Context, vector []float32, k int) ([]domain.Hit, error) {
	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName,
		Vector:       vector,
		K:            k,
		ReturnFields: []string{"__content", "source", "kind"},
	})
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.indexName, err)
	}

	hits := make([]domain.Hit, 0, len(res.Entries))
	for _, e := range res.Entries {
		hits = append(hits, domain.Hit{
			Text:         e.Fields["__content"],
			SourceTarget: e.Fields["source"],
			SourceKind:   domain.SourceKind(e.Fields["kind"]),
			Score:        e.Score,
		})
	}
	return hits, nil
}

func (r *Repo) docKey(fp domain.Fingerprint) string {
	return r.keyPrefix + string(fp)
}
