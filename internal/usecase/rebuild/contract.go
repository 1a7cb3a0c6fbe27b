package rebuild

import (
	"context"
	"time"

	"github.com/kailas-cloud/searchsync/internal/domain/record"
)

// Creator writes a fresh index document for a record.
type Creator interface {
	OnCreate(ctx context.Context, rec record.Record) error
}

// BatchFinder is a record source with native batch iteration. fn is called
// once per batch of at most batchSize records; an error from fn stops it.
type BatchFinder interface {
	FindInBatches(ctx context.Context, batchSize int, fn func([]record.Record) error) error
}

// Pager is a record source with offset paging.
type Pager interface {
	Page(ctx context.Context, offset, limit int) ([]record.Record, error)
}

// SourceProvider returns the record source of a registered type.
type SourceProvider interface {
	Source(typeName string) (any, error)
}

// Marker records completed rebuilds per type.
type Marker interface {
	MarkRebuilt(ctx context.Context, typeName string, at time.Time) error
	LastRebuilt(ctx context.Context, typeName string) (time.Time, bool, error)
}
