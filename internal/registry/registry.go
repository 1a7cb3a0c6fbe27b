// Package registry holds the per-type index configuration of every record
// type bound to the search index. A Registry is built once at startup and
// passed to the sync engine and the rebuild tooling.
package registry

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/domain"
)

// Registry is an additive table of record type configurations.
type Registry struct {
	mu      sync.RWMutex
	configs map[string]Config
	order   []string
	logger  *zap.Logger
}

// New creates an empty Registry. logger may be nil.
func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		configs: make(map[string]Config),
		logger:  logger,
	}
}

// Register binds a record type to the index. Each type registers once.
func (r *Registry) Register(typeName string, opts Options) (Config, error) {
	cfg, err := NewConfig(typeName, opts)
	if err != nil {
		return Config{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.configs[typeName]; ok {
		return Config{}, fmt.Errorf("%s: %w", typeName, domain.ErrAlreadyRegistered)
	}
	r.configs[typeName] = cfg
	r.order = append(r.order, typeName)

	r.logger.Debug("record type registered",
		zap.String("type", typeName),
		zap.String("index_type", cfg.IndexType()),
		zap.String("title_field", cfg.TitleField()),
		zap.String("alias_field", cfg.AliasField()),
		zap.Strings("ext_fields", cfg.ExtFields()),
	)
	return cfg, nil
}

// RegisterIndex is the old name of Register.
//
// Deprecated: use Register.
func (r *Registry) RegisterIndex(typeName string, opts Options) (Config, error) {
	r.logger.Warn("RegisterIndex is deprecated, use Register instead",
		zap.String("type", typeName))
	return r.Register(typeName, opts)
}

// MustRegister calls Register and panics on error.
func (r *Registry) MustRegister(typeName string, opts Options) Config {
	cfg, err := r.Register(typeName, opts)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Lookup returns the configuration of a registered type.
func (r *Registry) Lookup(typeName string) (Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[typeName]
	if !ok {
		return Config{}, fmt.Errorf("%s: %w", typeName, domain.ErrTypeNotRegistered)
	}
	return cfg, nil
}

// Types returns the registered type names in registration order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
