// Package rebuild reindexes every record of a type from scratch.
package rebuild

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/searchsync/internal/domain/record"
	"github.com/kailas-cloud/searchsync/internal/metrics"
)

// DefaultPageSize is the number of records fetched per page.
const DefaultPageSize = 1000

// ProgressFunc observes the running count of reindexed records.
type ProgressFunc func(indexed int)

// Summary is the outcome of a rebuild.
type Summary struct {
	Type      string
	Indexed   int
	Supported bool
	Duration  time.Duration
}

// Service drives full rebuilds through the create path of the sync engine.
type Service struct {
	creator  Creator
	logger   *zap.Logger
	workers  int
	progress ProgressFunc
	marker   Marker
}

// New creates a rebuild service. logger may be nil.
func New(creator Creator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{creator: creator, logger: logger, workers: 1}
}

// WithWorkers sets how many records of a page are indexed concurrently.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// WithProgress sets a callback invoked after every reindexed record.
// Calls are serialized.
func (s *Service) WithProgress(fn ProgressFunc) *Service {
	s.progress = fn
	return s
}

// WithMarker records the completion time of every successful rebuild in m.
func (s *Service) WithMarker(m Marker) *Service {
	s.marker = m
	return s
}

// LastRebuilt returns the last recorded rebuild of typeName. ok is false
// without a marker or when none was recorded.
func (s *Service) LastRebuilt(ctx context.Context, typeName string) (time.Time, bool, error) {
	if s.marker == nil {
		return time.Time{}, false, nil
	}
	return s.marker.LastRebuilt(ctx, typeName)
}

// RebuildAll reindexes every record of src, page by page, bypassing the
// reindex check. src must implement BatchFinder or Pager; any other source is
// reported as unsupported with zero records and a nil error. The first store
// failure aborts the rebuild and is returned with the count reached so far.
func (s *Service) RebuildAll(ctx context.Context, typeName string, src any, pageSize int) (Summary, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	sum := Summary{Type: typeName, Supported: true}
	start := time.Now()
	c := &counter{progress: s.progress}

	var err error
	switch source := src.(type) {
	case BatchFinder:
		err = source.FindInBatches(ctx, pageSize, func(recs []record.Record) error {
			return s.indexPage(ctx, recs, c)
		})
	case Pager:
		err = s.walkPages(ctx, source, pageSize, c)
	default:
		s.logger.Warn("rebuild skipped, record source supports neither batch iteration nor paging",
			zap.String("type", typeName),
			zap.String("source", fmt.Sprintf("%T", src)),
		)
		sum.Supported = false
		return sum, nil
	}

	sum.Indexed = c.total()
	sum.Duration = time.Since(start)
	metrics.RebuildDuration.WithLabelValues(typeName, metrics.Status(err)).Observe(sum.Duration.Seconds())
	metrics.RebuildRecordsTotal.WithLabelValues(typeName).Add(float64(sum.Indexed))

	if err != nil {
		s.logger.Error("rebuild failed",
			zap.String("type", typeName),
			zap.Int("indexed", sum.Indexed),
			zap.Error(err),
		)
		return sum, fmt.Errorf("rebuild %s: %w", typeName, err)
	}

	if s.marker != nil {
		if err := s.marker.MarkRebuilt(ctx, typeName, start.Add(sum.Duration)); err != nil {
			s.logger.Warn("rebuild marker not recorded", zap.String("type", typeName), zap.Error(err))
		}
	}

	s.logger.Info("rebuild finished",
		zap.String("type", typeName),
		zap.Int("indexed", sum.Indexed),
		zap.Duration("duration", sum.Duration),
	)
	return sum, nil
}

// RebuildType resolves the source of typeName and rebuilds it.
func (s *Service) RebuildType(
	ctx context.Context, typeName string, sources SourceProvider, pageSize int,
) (Summary, error) {
	src, err := sources.Source(typeName)
	if err != nil {
		return Summary{Type: typeName}, fmt.Errorf("source for %s: %w", typeName, err)
	}
	return s.RebuildAll(ctx, typeName, src, pageSize)
}

// RebuildRegistered rebuilds each type in order with the source provided for it.
// It stops at the first failing type.
func (s *Service) RebuildRegistered(
	ctx context.Context, types []string, sources SourceProvider, pageSize int,
) ([]Summary, error) {
	out := make([]Summary, 0, len(types))
	for _, typeName := range types {
		src, err := sources.Source(typeName)
		if err != nil {
			return out, fmt.Errorf("source for %s: %w", typeName, err)
		}
		sum, err := s.RebuildAll(ctx, typeName, src, pageSize)
		out = append(out, sum)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// Runner binds a Service to its record sources and page size.
type Runner struct {
	svc      *Service
	sources  SourceProvider
	pageSize int
}

// Bind returns a Runner rebuilding types from sources.
func (s *Service) Bind(sources SourceProvider, pageSize int) *Runner {
	return &Runner{svc: s, sources: sources, pageSize: pageSize}
}

// Rebuild reindexes every record of typeName.
func (r *Runner) Rebuild(ctx context.Context, typeName string) (Summary, error) {
	return r.svc.RebuildType(ctx, typeName, r.sources, r.pageSize)
}

// LastRebuilt returns the last recorded rebuild of typeName.
func (r *Runner) LastRebuilt(ctx context.Context, typeName string) (time.Time, bool, error) {
	return r.svc.LastRebuilt(ctx, typeName)
}

func (s *Service) walkPages(ctx context.Context, src Pager, pageSize int, c *counter) error {
	for offset := 0; ; {
		if err := ctx.Err(); err != nil {
			return err
		}
		recs, err := src.Page(ctx, offset, pageSize)
		if err != nil {
			return fmt.Errorf("page at offset %d: %w", offset, err)
		}
		if len(recs) == 0 {
			return nil
		}
		if err := s.indexPage(ctx, recs, c); err != nil {
			return err
		}
		if len(recs) < pageSize {
			return nil
		}
		offset += len(recs)
	}
}

func (s *Service) indexPage(ctx context.Context, recs []record.Record, c *counter) error {
	if s.workers <= 1 {
		for _, rec := range recs {
			if err := s.creator.OnCreate(ctx, rec); err != nil {
				return fmt.Errorf("index %s: %w", rec.RecordID(), err)
			}
			c.inc()
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, rec := range recs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := s.creator.OnCreate(gctx, rec); err != nil {
				return fmt.Errorf("index %s: %w", rec.RecordID(), err)
			}
			c.inc()
			return nil
		})
	}
	return g.Wait() //nolint:wrapcheck // errors are wrapped per record above
}

// counter tracks reindexed records and serializes progress callbacks.
type counter struct {
	mu       sync.Mutex
	n        int
	progress ProgressFunc
}

func (c *counter) inc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	if c.progress != nil {
		c.progress(c.n)
	}
}

func (c *counter) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
