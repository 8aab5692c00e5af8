// Package ingest orchestrates one fetch -> dedup -> upsert cycle over the
// configured sources. One bad source never prevents good sources from
// being ingested, and nothing below Run ever reaches the caller as an
// error: the scheduler only sees RunOutcome values.
package ingest

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chatvat/chatvat/internal/dedup"
	"github.com/chatvat/chatvat/internal/domain"
	"github.com/chatvat/chatvat/internal/fetch"
	"github.com/chatvat/chatvat/internal/metrics"
)

// Service is the ingestion orchestrator.
type Service struct {
	sources       []domain.Source
	fetchers      fetch.Map
	store         Store
	logger        *zap.Logger
	concurrency   int
	sourceTimeout time.Duration
}

// New creates an orchestrator over a fixed source list.
func New(sources []domain.Source, fetchers fetch.Map, store Store, logger *zap.Logger) *Service {
	return &Service{
		sources:       sources,
		fetchers:      fetchers,
		store:         store,
		logger:        logger,
		concurrency:   1,
		sourceTimeout: 30 * time.Second,
	}
}

// WithConcurrency sets how many sources may be fetched in parallel.
// 1 keeps the sequential reference behavior.
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// WithSourceTimeout bounds each individual source fetch.
func (s *Service) WithSourceTimeout(d time.Duration) *Service {
	if d > 0 {
		s.sourceTimeout = d
	}
	return s
}

// Run executes one full ingestion cycle and reports its outcome. A fault
// in orchestration logic itself is recovered here so the background loop
// stays alive; the store is only mutated by the single upsert call.
func (s *Service) Run(ctx context.Context) (out domain.RunOutcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("ingestion run panicked", zap.Any("panic", r), zap.Stack("stacktrace"))
			out = domain.RunOutcome{
				Status:           domain.RunFailed,
				SourcesAttempted: len(s.sources),
			}
			metrics.IngestionRunsTotal.WithLabelValues(string(domain.RunFailed)).Inc()
		}
	}()

	start := time.Now()
	s.logger.Info("ingestion run starting", zap.Int("sources", len(s.sources)))

	batch, failed := s.fetchAll(ctx)

	out = domain.RunOutcome{
		Status:           domain.RunNoOp,
		SourcesAttempted: len(s.sources),
		SourcesFailed:    failed,
	}

	if len(batch) == 0 {
		s.logger.Info("ingestion run produced nothing, store unchanged",
			zap.Int("sources_failed", failed))
		metrics.IngestionRunsTotal.WithLabelValues(string(domain.RunNoOp)).Inc()
		return out
	}

	units, dropped := dedup.Deduplicate(batch)
	out.DuplicatesDropped = dropped

	upsertStart := time.Now()
	if err := s.store.Upsert(ctx, units); err != nil {
		s.logger.Error("ingestion upsert failed", zap.Error(err), zap.Int("units", len(units)))
		out.Status = domain.RunFailed
		metrics.IngestionRunsTotal.WithLabelValues(string(domain.RunFailed)).Inc()
		return out
	}
	metrics.UpsertDuration.Observe(time.Since(upsertStart).Seconds())

	out.Status = domain.RunCompleted
	out.UnitsWritten = len(units)
	metrics.IngestionRunsTotal.WithLabelValues(string(domain.RunCompleted)).Inc()
	metrics.UnitsWrittenTotal.Add(float64(len(units)))
	metrics.DuplicatesDroppedTotal.Add(float64(dropped))

	s.logger.Info("ingestion run complete",
		zap.Int("sources_attempted", out.SourcesAttempted),
		zap.Int("sources_failed", out.SourcesFailed),
		zap.Int("units_written", out.UnitsWritten),
		zap.Int("duplicates_dropped", out.DuplicatesDropped),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out
}

// fetchAll collects the units of every source that succeeds, counting
// failures instead of propagating them. Results are assembled in source
// order regardless of fetch concurrency so dedup stays deterministic.
func (s *Service) fetchAll(ctx context.Context) ([]domain.RawUnit, int) {
	results := make([][]domain.RawUnit, len(s.sources))
	failures := make([]bool, len(s.sources))

	if s.concurrency <= 1 {
		for i, src := range s.sources {
			results[i], failures[i] = s.fetchOne(ctx, src)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.concurrency)
		for i, src := range s.sources {
			g.Go(func() error {
				results[i], failures[i] = s.fetchOne(gctx, src)
				return nil // per-source failures never cancel the group
			})
		}
		_ = g.Wait()
	}

	var batch []domain.RawUnit
	failed := 0
	for i := range s.sources {
		if failures[i] {
			failed++
			continue
		}
		batch = append(batch, results[i]...)
	}
	return batch, failed
}

// fetchOne runs a single source fetch with its own timeout. Any failure,
// including a missing strategy for the kind, is logged and counted.
func (s *Service) fetchOne(ctx context.Context, src domain.Source) ([]domain.RawUnit, bool) {
	fetcher, ok := s.fetchers[src.Kind]
	if !ok {
		s.logger.Error("no fetcher for source kind",
			zap.String("source", src.String()),
			zap.Error(domain.ErrUnsupportedKind))
		metrics.SourceFailuresTotal.WithLabelValues(string(src.Kind)).Inc()
		return nil, true
	}

	fctx, cancel := context.WithTimeout(ctx, s.sourceTimeout)
	defer cancel()

	units, err := fetcher.Fetch(fctx, src)
	if err != nil {
		s.logger.Error("source fetch failed, continuing with remaining sources",
			zap.String("source", src.String()),
			zap.Error(err))
		metrics.SourceFailuresTotal.WithLabelValues(string(src.Kind)).Inc()
		return nil, true
	}

	s.logger.Debug("source fetched",
		zap.String("source", src.String()),
		zap.Int("units", len(units)))
	return units, false
}
