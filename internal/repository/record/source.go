package record

import (
	"context"

	domrec "github.com/kailas-cloud/searchsync/internal/domain/record"
)

// Source is the rebuild view of one record type.
type Source struct {
	repo     *Repo
	typeName string
}

// Source returns the rebuild source of typeName.
func (r *Repo) Source(typeName string) (any, error) {
	if _, err := r.table(typeName); err != nil {
		return nil, err
	}
	return &Source{repo: r, typeName: typeName}, nil
}

// FindInBatches walks every row of the type in id order.
func (s *Source) FindInBatches(
	ctx context.Context, batchSize int, fn func([]domrec.Record) error,
) error {
	return s.repo.FindInBatches(ctx, s.typeName, batchSize, fn)
}

// Page returns one page of rows of the type.
func (s *Source) Page(ctx context.Context, offset, limit int) ([]domrec.Record, error) {
	return s.repo.Page(ctx, s.typeName, offset, limit)
}
