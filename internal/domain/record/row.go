package record

import (
	"maps"
	"reflect"
	"slices"
)

// IDField is the attribute name under which a Row exposes its identifier.
const IDField = "id"

// Row is a map-backed record with saved-change tracking. Assignments stay
// pending until MarkSaved, which turns them into the saved changes reported
// through the Attributes capability.
type Row struct {
	typeName  string
	id        string
	attrs     map[string]any
	pending   map[string]any
	was       map[string]any
	newRecord bool
}

var (
	_ Record     = (*Row)(nil)
	_ Attributes = (*Row)(nil)
)

// NewRow creates an unsaved row. Every attribute is pending until MarkSaved.
func NewRow(typeName string, attrs map[string]any) *Row {
	return &Row{
		typeName: typeName,
		attrs:    make(map[string]any),
		pending:  maps.Clone(attrs),
		was:      make(map[string]any),
	}
}

// LoadRow hydrates a persisted row with no pending or saved changes.
func LoadRow(typeName, id string, attrs map[string]any) *Row {
	a := maps.Clone(attrs)
	if a == nil {
		a = make(map[string]any)
	}
	return &Row{
		typeName: typeName,
		id:       id,
		attrs:    a,
		pending:  make(map[string]any),
		was:      make(map[string]any),
	}
}

// RecordID returns the row identifier.
func (r *Row) RecordID() string { return r.id }

// TypeName returns the record type the row belongs to.
func (r *Row) TypeName() string { return r.typeName }

// IsNewRecord reports whether the most recent save created the row.
func (r *Row) IsNewRecord() bool { return r.newRecord }

// Set assigns a value; it becomes a saved change on the next MarkSaved.
func (r *Row) Set(name string, value any) {
	r.pending[name] = value
}

// Pending returns a copy of the assignments not yet saved.
func (r *Row) Pending() map[string]any {
	return maps.Clone(r.pending)
}

// Values returns a copy of the saved attribute values.
func (r *Row) Values() map[string]any {
	return maps.Clone(r.attrs)
}

// Names returns the saved attribute names in sorted order.
func (r *Row) Names() []string {
	return slices.Sorted(maps.Keys(r.attrs))
}

// MarkSaved applies pending assignments. Assignments that changed a value are
// recorded as the saved changes of this save; earlier saved changes are dropped.
func (r *Row) MarkSaved(id string, created bool) {
	if id != "" {
		r.id = id
	}
	r.newRecord = created
	r.was = make(map[string]any, len(r.pending))
	for k, v := range r.pending {
		old, had := r.attrs[k]
		if had && reflect.DeepEqual(old, v) {
			continue
		}
		r.was[k] = old
		r.attrs[k] = v
	}
	r.pending = make(map[string]any)
}

// Attribute returns the saved value of name.
func (r *Row) Attribute(name string) (any, bool) {
	if name == IDField {
		return r.id, true
	}
	v, ok := r.attrs[name]
	return v, ok
}

// AttributeChanged reports whether name changed on the most recent save.
func (r *Row) AttributeChanged(name string) bool {
	_, ok := r.was[name]
	return ok
}

// AttributeWas returns the value name held before the most recent save.
// Unchanged attributes report their current value.
func (r *Row) AttributeWas(name string) (any, bool) {
	if v, ok := r.was[name]; ok {
		return v, true
	}
	return r.Attribute(name)
}
