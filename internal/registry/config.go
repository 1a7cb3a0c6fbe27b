package registry

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/searchsync/internal/domain"
	"github.com/kailas-cloud/searchsync/internal/domain/record"
)

// Registration defaults.
const (
	DefaultTitleField = "title"
	DefaultScoreField = "created_at"
)

// Options is the registration input for one record type. Empty fields take
// their defaults.
type Options struct {
	TitleField      string
	AliasField      string
	ExtFields       []string
	ScoreField      string
	ConditionFields []string
	ClassName       string

	// Fields is the accessor table. Names missing from it are read through
	// the record.Attributes capability.
	Fields map[string]record.Field
}

// Config is the immutable index configuration of one registered record type.
type Config struct {
	typeName        string
	titleField      string
	aliasField      string
	extFields       []string
	scoreField      string
	conditionFields []string
	className       string
	fields          map[string]record.Field
}

// NewConfig applies defaults and builds a Config. The score field and the
// condition fields are always appended to the ext fields, even when already
// listed.
func NewConfig(typeName string, opts Options) (Config, error) {
	if !isValidName(typeName) {
		return Config{}, fmt.Errorf("type name %q: %w", typeName, domain.ErrInvalidConfig)
	}

	title := opts.TitleField
	if title == "" {
		title = DefaultTitleField
	}
	score := opts.ScoreField
	if score == "" {
		score = DefaultScoreField
	}
	if opts.ClassName != "" && !isValidName(opts.ClassName) {
		return Config{}, fmt.Errorf("class name %q: %w", opts.ClassName, domain.ErrInvalidConfig)
	}
	for _, f := range opts.ConditionFields {
		if f == "" {
			return Config{}, fmt.Errorf("empty condition field: %w", domain.ErrInvalidConfig)
		}
	}

	ext := make([]string, 0, len(opts.ExtFields)+1+len(opts.ConditionFields))
	ext = append(ext, opts.ExtFields...)
	ext = append(ext, score)
	ext = append(ext, opts.ConditionFields...)

	fields := make(map[string]record.Field, len(opts.Fields))
	for name, f := range opts.Fields {
		if f.IsZero() {
			return Config{}, fmt.Errorf("accessor %q has no getter: %w", name, domain.ErrInvalidConfig)
		}
		fields[name] = f
	}

	return Config{
		typeName:        typeName,
		titleField:      title,
		aliasField:      opts.AliasField,
		extFields:       ext,
		scoreField:      score,
		conditionFields: slices.Clone(opts.ConditionFields),
		className:       opts.ClassName,
		fields:          fields,
	}, nil
}

// TypeName returns the registered record type.
func (c Config) TypeName() string { return c.typeName }

// TitleField returns the title field name.
func (c Config) TitleField() string { return c.titleField }

// AliasField returns the alias field name, empty when aliases are disabled.
func (c Config) AliasField() string { return c.aliasField }

// ExtFields returns the ext fields, score and condition fields included.
func (c Config) ExtFields() []string { return slices.Clone(c.extFields) }

// ScoreField returns the score field name.
func (c Config) ScoreField() string { return c.scoreField }

// ConditionFields returns the condition fields.
func (c Config) ConditionFields() []string { return slices.Clone(c.conditionFields) }

// ClassName returns the configured class name override.
func (c Config) ClassName() string { return c.className }

// IndexType returns the type under which documents are stored in the index.
func (c Config) IndexType() string {
	if c.className != "" {
		return c.className
	}
	return c.typeName
}

// Field returns the accessor for name. Names outside the accessor table read
// the identifier for "id" and go through record.Attributes otherwise.
func (c Config) Field(name string) record.Field {
	if f, ok := c.fields[name]; ok {
		return f
	}
	if name == record.IDField {
		return record.Identity()
	}
	return record.Dynamic(name)
}

// isValidName matches [a-zA-Z0-9_:.-]+, safe for use inside index keys.
func isValidName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-' || r == '.'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
