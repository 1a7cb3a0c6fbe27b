// Package document holds the index document: one record's searchable state.
package document

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/searchsync/internal/domain/alias"
)

// Document is the index document of one record (immutable value object).
// A new Document always replaces the stored one for the same (id, type).
type Document struct {
	id              string
	title           string
	aliases         []string
	typeName        string
	exts            map[string]any
	conditionFields []string
	score           int64
}

// New validates and creates a Document. ID and type are required.
func New(
	id, title string, aliases []string, typeName string,
	exts map[string]any, conditionFields []string, score int64,
) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document id is required")
	}
	if typeName == "" {
		return Document{}, fmt.Errorf("document type is required")
	}
	return Reconstruct(id, title, aliases, typeName, exts, conditionFields, score), nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(
	id, title string, aliases []string, typeName string,
	exts map[string]any, conditionFields []string, score int64,
) Document {
	return Document{
		id:              id,
		title:           title,
		aliases:         slices.Clone(aliases),
		typeName:        typeName,
		exts:            maps.Clone(exts),
		conditionFields: slices.Clone(conditionFields),
		score:           score,
	}
}

// ID returns the record identifier.
func (d *Document) ID() string { return d.id }

// Title returns the indexed title.
func (d *Document) Title() string { return d.title }

// Aliases returns the alias search terms.
func (d *Document) Aliases() []string { return d.aliases }

// Type returns the index type name.
func (d *Document) Type() string { return d.typeName }

// Exts returns the extra fields carried with the document.
func (d *Document) Exts() map[string]any { return d.exts }

// ConditionFields returns the fields available for query-time filtering.
func (d *Document) ConditionFields() []string { return d.conditionFields }

// Score returns the sort score.
func (d *Document) Score() int64 { return d.score }

// Terms returns the unique non-blank search terms: aliases and title.
func (d *Document) Terms() []string {
	return alias.Titles(d.title, d.aliases)
}

// Conditions returns the string form of each condition field value.
// Fields missing from exts or holding nil are skipped.
func (d *Document) Conditions() map[string]string {
	out := make(map[string]string, len(d.conditionFields))
	for _, f := range d.conditionFields {
		v, ok := d.exts[f]
		if !ok || v == nil {
			continue
		}
		out[f] = FormatValue(v)
	}
	return out
}

// FormatValue renders a field value as a condition key component.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return strconv.FormatInt(x.Unix(), 10)
	default:
		return fmt.Sprint(x)
	}
}

// CoerceScore converts a score field value to an integer. Times become Unix
// seconds, floats truncate, strings parse their leading number. Anything else
// scores zero.
func CoerceScore(v any) int64 {
	switch x := v.(type) {
	case nil:
		return 0
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return clampUint(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return clampUint(x)
	case float32:
		return truncFloat(float64(x))
	case float64:
		return truncFloat(x)
	case time.Time:
		if x.IsZero() {
			return 0
		}
		return x.Unix()
	case *time.Time:
		if x == nil || x.IsZero() {
			return 0
		}
		return x.Unix()
	case string:
		return parseLeadingInt(x)
	case []byte:
		return parseLeadingInt(string(x))
	default:
		return 0
	}
}

func clampUint(u uint64) int64 {
	if u > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(u)
}

func truncFloat(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// parseLeadingInt reads an optional sign and the leading digits of s.
func parseLeadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		if s[0] == '-' {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	return n
}
