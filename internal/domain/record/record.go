// Package record defines the capability contract an indexable record exposes
// and the accessor table used to read its fields.
package record

import (
	"fmt"
	"reflect"

	"github.com/kailas-cloud/searchsync/internal/domain"
)

// Record is the minimal identity every indexable record provides.
type Record interface {
	RecordID() string
	TypeName() string
	IsNewRecord() bool
}

// Attributes is implemented by records that resolve fields by name at runtime
// and track the values changed by their most recent save.
type Attributes interface {
	Attribute(name string) (any, bool)
	AttributeChanged(name string) bool
	AttributeWas(name string) (any, bool)
}

// Field reads one field of a record. A Field without a change getter cannot
// report whether the field changed on the last save.
type Field struct {
	value    func(Record) (any, error)
	changed  func(Record) (bool, error)
	previous func(Record) (any, error)
}

// IsZero reports whether the field has no getters at all.
func (f Field) IsZero() bool { return f.value == nil }

// CanReportChange reports whether the field exposes saved-change status.
func (f Field) CanReportChange() bool { return f.changed != nil }

// Value returns the current value of the field.
func (f Field) Value(r Record) (any, error) {
	if f.value == nil {
		return nil, domain.ErrFieldNotFound
	}
	return f.value(r)
}

// Changed reports whether the field changed on the most recent save.
func (f Field) Changed(r Record) (bool, error) {
	if f.changed == nil {
		return false, domain.ErrChangeUnsupported
	}
	return f.changed(r)
}

// Previous returns the value the field held before the most recent save.
func (f Field) Previous(r Record) (any, error) {
	if f.previous == nil {
		return nil, domain.ErrChangeUnsupported
	}
	return f.previous(r)
}

// Attr builds a read-only field from a typed getter.
func Attr[T Record](get func(T) any) Field {
	return Field{value: typed(get)}
}

// Tracked builds a field with saved-change tracking from typed getters.
func Tracked[T Record](get func(T) any, changed func(T) bool, was func(T) any) Field {
	f := Field{value: typed(get), previous: typed(was)}
	if changed != nil {
		f.changed = func(r Record) (bool, error) {
			t, ok := r.(T)
			if !ok {
				return false, mismatch[T](r)
			}
			return changed(t), nil
		}
	}
	return f
}

// Identity builds the field that reads the record identifier. It never
// reports a change since identifiers are stable.
func Identity() Field {
	return Field{
		value:    func(r Record) (any, error) { return r.RecordID(), nil },
		changed:  func(Record) (bool, error) { return false, nil },
		previous: func(r Record) (any, error) { return r.RecordID(), nil },
	}
}

// Dynamic builds a field resolved by name through the Attributes capability.
func Dynamic(name string) Field {
	return Field{
		value: func(r Record) (any, error) {
			a, ok := r.(Attributes)
			if !ok {
				return nil, fmt.Errorf("%s on %T: %w", name, r, domain.ErrFieldNotFound)
			}
			v, ok := a.Attribute(name)
			if !ok {
				return nil, fmt.Errorf("%s on %s: %w", name, r.TypeName(), domain.ErrFieldNotFound)
			}
			return v, nil
		},
		changed: func(r Record) (bool, error) {
			a, ok := r.(Attributes)
			if !ok {
				return false, domain.ErrChangeUnsupported
			}
			return a.AttributeChanged(name), nil
		},
		previous: func(r Record) (any, error) {
			a, ok := r.(Attributes)
			if !ok {
				return nil, domain.ErrChangeUnsupported
			}
			v, _ := a.AttributeWas(name)
			return v, nil
		},
	}
}

func typed[T Record](get func(T) any) func(Record) (any, error) {
	if get == nil {
		return nil
	}
	return func(r Record) (any, error) {
		t, ok := r.(T)
		if !ok {
			return nil, mismatch[T](r)
		}
		return get(t), nil
	}
}

func mismatch[T Record](r Record) error {
	return fmt.Errorf("accessor for %s applied to %T: %w", reflect.TypeFor[T](), r, domain.ErrFieldNotFound)
}
