package indexsync

import (
	"context"

	domdoc "github.com/kailas-cloud/searchsync/internal/domain/document"
	"github.com/kailas-cloud/searchsync/internal/registry"
)

// IndexStore persists index documents. Save fully replaces the document stored
// for the same (id, type); Remove is a no-op for entries that do not exist.
type IndexStore interface {
	Save(ctx context.Context, doc *domdoc.Document) error
	Remove(ctx context.Context, id, title, typeName string) error
}

// ConfigLookup resolves the index configuration of a record type.
type ConfigLookup interface {
	Lookup(typeName string) (registry.Config, error)
}
