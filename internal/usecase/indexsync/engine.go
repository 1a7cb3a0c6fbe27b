// Package indexsync keeps index documents in step with record lifecycle events.
//
// The persistence layer calls AfterSave after creating a record, OnUpdate after
// updating one and OnDestroy before deleting one. The engine keeps no state
// between calls; the remove-then-save sequence of an update is not atomic and a
// failure in between leaves stale entries until the next reindex or rebuild.
package indexsync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/alias"
	domdoc "github.com/kailas-cloud/searchsync/internal/domain/document"
	"github.com/kailas-cloud/searchsync/internal/domain/record"
	"github.com/kailas-cloud/searchsync/internal/metrics"
	"github.com/kailas-cloud/searchsync/internal/registry"
)

// Engine reacts to record lifecycle events by updating the index store.
type Engine struct {
	configs ConfigLookup
	store   IndexStore
	logger  *zap.Logger

	// warned dedups capability warnings per "type.field".
	warned sync.Map
}

// New creates an Engine. logger may be nil.
func New(configs ConfigLookup, store IndexStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{configs: configs, store: store, logger: logger}
}

// NeedsReindex reports whether the most recent save of rec touched anything
// the index document depends on. Unregistered types never need a reindex.
func (e *Engine) NeedsReindex(rec record.Record) bool {
	cfg, err := e.configs.Lookup(rec.TypeName())
	if err != nil {
		e.logger.Warn("reindex check on unregistered type",
			zap.String("type", rec.TypeName()), zap.Error(err))
		return false
	}
	return e.needsReindex(cfg, rec)
}

func (e *Engine) needsReindex(cfg registry.Config, rec record.Record) bool {
	changed := false
	for _, name := range cfg.ExtFields() {
		if name == record.IDField {
			continue
		}
		c, err := cfg.Field(name).Changed(rec)
		if err != nil {
			e.warnChangeCapability(cfg, name, err)
			continue
		}
		if c {
			changed = true
		}
	}

	if titleOrAliasTriggered(cfg, rec) {
		changed = true
	}

	outcome := "skip"
	if changed {
		outcome = "reindex"
	}
	metrics.ReindexDecisionsTotal.WithLabelValues(cfg.TypeName(), outcome).Inc()
	return changed
}

// titleOrAliasTriggered fires when the title changed or the alias field holds
// a truthy value. Any failure while answering counts as false.
func titleOrAliasTriggered(cfg registry.Config, rec record.Record) bool {
	titleChanged, err := cfg.Field(cfg.TitleField()).Changed(rec)
	if err != nil {
		return false
	}
	if titleChanged {
		return true
	}
	if cfg.AliasField() == "" {
		return false
	}
	v, err := cfg.Field(cfg.AliasField()).Value(rec)
	if err != nil {
		return false
	}
	return truthy(v)
}

// truthy treats only nil and false as false.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	default:
		return true
	}
}

func (e *Engine) warnChangeCapability(cfg registry.Config, field string, err error) {
	key := cfg.TypeName() + "." + field
	metrics.ChangeCapabilityMissingTotal.WithLabelValues(cfg.TypeName(), field).Inc()
	if _, loaded := e.warned.LoadOrStore(key, struct{}{}); loaded {
		return
	}
	e.logger.Warn("record type cannot report saved changes for ext field, reindex on update ignores it",
		zap.String("type", cfg.TypeName()),
		zap.String("field", field),
		zap.Error(err),
	)
}

// BuildDocument reads the current state of rec into a fresh index document.
func (e *Engine) BuildDocument(rec record.Record) (domdoc.Document, error) {
	cfg, err := e.configs.Lookup(rec.TypeName())
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("lookup config: %w", err)
	}
	return buildDocument(cfg, rec)
}

func buildDocument(cfg registry.Config, rec record.Record) (domdoc.Document, error) {
	title, err := titleValue(cfg, rec, false)
	if err != nil {
		return domdoc.Document{}, err
	}
	aliases, err := aliasValue(cfg, rec, false)
	if err != nil {
		return domdoc.Document{}, err
	}

	extFields := cfg.ExtFields()
	exts := make(map[string]any, len(extFields))
	for _, name := range extFields {
		v, err := cfg.Field(name).Value(rec)
		if err != nil {
			return domdoc.Document{}, fieldErr(cfg, name, err)
		}
		exts[name] = v
	}

	scoreRaw, err := cfg.Field(cfg.ScoreField()).Value(rec)
	if err != nil {
		return domdoc.Document{}, fieldErr(cfg, cfg.ScoreField(), err)
	}

	doc, err := domdoc.New(
		rec.RecordID(), title, aliases, cfg.IndexType(),
		exts, cfg.ConditionFields(), domdoc.CoerceScore(scoreRaw),
	)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("build document: %w", err)
	}
	return doc, nil
}

// OnCreate saves a fresh index document for rec, replacing any stored one.
func (e *Engine) OnCreate(ctx context.Context, rec record.Record) error {
	cfg, err := e.configs.Lookup(rec.TypeName())
	if err != nil {
		return fmt.Errorf("lookup config: %w", err)
	}

	doc, err := buildDocument(cfg, rec)
	if err != nil {
		return err
	}

	err = e.store.Save(ctx, &doc)
	metrics.IndexOperationsTotal.WithLabelValues(doc.Type(), "save", metrics.Status(err)).Inc()
	if err != nil {
		return fmt.Errorf("save %s/%s: %w", doc.Type(), doc.ID(), err)
	}
	return nil
}

// AfterSave saves the index document when rec is new or needs a reindex.
func (e *Engine) AfterSave(ctx context.Context, rec record.Record, isNewRecord bool) error {
	cfg, err := e.configs.Lookup(rec.TypeName())
	if err != nil {
		return fmt.Errorf("lookup config: %w", err)
	}
	return e.afterSave(ctx, rec, isNewRecord || e.needsReindex(cfg, rec))
}

func (e *Engine) afterSave(ctx context.Context, rec record.Record, reindex bool) error {
	if !reindex {
		return nil
	}
	return e.OnCreate(ctx, rec)
}

// OnUpdate removes the entries indexed under the title and aliases rec had
// before the update, when the update warrants a reindex, then saves the new
// document. The reindex decision is made once per update.
func (e *Engine) OnUpdate(ctx context.Context, rec record.Record) error {
	cfg, err := e.configs.Lookup(rec.TypeName())
	if err != nil {
		return fmt.Errorf("lookup config: %w", err)
	}

	reindex := e.needsReindex(cfg, rec)
	if reindex {
		title, err := titleValue(cfg, rec, true)
		if err != nil {
			return err
		}
		aliases, err := aliasValue(cfg, rec, true)
		if err != nil {
			return err
		}
		if err := e.remove(ctx, cfg, rec, title, aliases); err != nil {
			return err
		}
	}

	return e.afterSave(ctx, rec, rec.IsNewRecord() || reindex)
}

// OnDestroy removes every entry indexed under the current title and aliases.
func (e *Engine) OnDestroy(ctx context.Context, rec record.Record) error {
	cfg, err := e.configs.Lookup(rec.TypeName())
	if err != nil {
		return fmt.Errorf("lookup config: %w", err)
	}

	title, err := titleValue(cfg, rec, false)
	if err != nil {
		return err
	}
	aliases, err := aliasValue(cfg, rec, false)
	if err != nil {
		return err
	}
	return e.remove(ctx, cfg, rec, title, aliases)
}

// remove issues one store removal per unique non-blank title.
func (e *Engine) remove(
	ctx context.Context, cfg registry.Config, rec record.Record, title string, aliases []string,
) error {
	typeName := cfg.IndexType()
	for _, t := range alias.Titles(title, aliases) {
		err := e.store.Remove(ctx, rec.RecordID(), t, typeName)
		metrics.IndexOperationsTotal.WithLabelValues(typeName, "remove", metrics.Status(err)).Inc()
		if err != nil {
			return fmt.Errorf("remove %s/%s %q: %w", typeName, rec.RecordID(), t, err)
		}
	}
	return nil
}

// titleValue reads the title, as it was before the last save when previous is set.
func titleValue(cfg registry.Config, rec record.Record, previous bool) (string, error) {
	v, err := readField(cfg, cfg.TitleField(), rec, previous)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return domdoc.FormatValue(v), nil
}

// aliasValue reads and resolves the aliases, as they were before the last save
// when previous is set. Types without an alias field have no aliases.
func aliasValue(cfg registry.Config, rec record.Record, previous bool) ([]string, error) {
	if cfg.AliasField() == "" {
		return []string{}, nil
	}
	v, err := readField(cfg, cfg.AliasField(), rec, previous)
	if err != nil {
		return nil, err
	}
	return alias.Resolve(v), nil
}

// readField falls back to the current value when the field cannot report its
// previous one.
func readField(cfg registry.Config, name string, rec record.Record, previous bool) (any, error) {
	f := cfg.Field(name)
	if previous {
		v, err := f.Previous(rec)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, domain.ErrChangeUnsupported) {
			return nil, fieldErr(cfg, name, err)
		}
	}
	v, err := f.Value(rec)
	if err != nil {
		return nil, fieldErr(cfg, name, err)
	}
	return v, nil
}

func fieldErr(cfg registry.Config, name string, err error) error {
	return &domain.FieldError{Type: cfg.TypeName(), Field: name, Err: err}
}
