package query

import (
	"context"
	"fmt"
	"slices"

	"github.com/kailas-cloud/searchsync/internal/domain"
	domdoc "github.com/kailas-cloud/searchsync/internal/domain/document"
)

// Limits for prefix matches.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Options narrows a prefix match. Conditions keys must be registered
// condition fields of the type.
type Options struct {
	Limit      int
	Conditions map[string]string
}

// Service passes prefix-match queries through to the index store.
type Service struct {
	configs ConfigLookup
	index   Completer
}

// New creates a query service.
func New(configs ConfigLookup, index Completer) *Service {
	return &Service{configs: configs, index: index}
}

// PrefixMatch returns the documents of typeName whose title or aliases start
// with q. A blank q matches nothing.
func (s *Service) PrefixMatch(
	ctx context.Context, typeName, q string, opts Options,
) ([]domdoc.Document, error) {
	cfg, err := s.configs.Lookup(typeName)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", typeName, err)
	}

	limit := opts.Limit
	switch {
	case limit < 0 || limit > MaxLimit:
		return nil, fmt.Errorf("limit %d out of range [1, %d]: %w", limit, MaxLimit, domain.ErrInvalidQuery)
	case limit == 0:
		limit = DefaultLimit
	}

	allowed := cfg.ConditionFields()
	for field := range opts.Conditions {
		if !slices.Contains(allowed, field) {
			return nil, fmt.Errorf("%q is not a condition field of %s: %w", field, typeName, domain.ErrInvalidQuery)
		}
	}

	docs, err := s.index.Complete(ctx, cfg.IndexType(), q, limit, opts.Conditions)
	if err != nil {
		return nil, fmt.Errorf("complete %s: %w", typeName, err)
	}
	return docs, nil
}
