package query

import (
	"context"

	domdoc "github.com/kailas-cloud/searchsync/internal/domain/document"
	"github.com/kailas-cloud/searchsync/internal/registry"
)

// Completer runs prefix lookups against the index store.
type Completer interface {
	Complete(
		ctx context.Context, typeName, prefix string, limit int, conditions map[string]string,
	) ([]domdoc.Document, error)
}

// ConfigLookup resolves the index configuration of a record type.
type ConfigLookup interface {
	Lookup(typeName string) (registry.Config, error)
}
