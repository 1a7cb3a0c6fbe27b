package searchindex

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/searchsync/internal/db"
	"github.com/kailas-cloud/searchsync/internal/domain"
	domdoc "github.com/kailas-cloud/searchsync/internal/domain/document"
)

const (
	// DefaultKeyPrefix namespaces every key written by the repository.
	DefaultKeyPrefix = "searchsync:"
	// DefaultLimit caps completion results when no limit is given.
	DefaultLimit = 10

	lexMax = "\xff"
)

// store is the consumer interface for the search index (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGet(ctx context.Context, key, field string) ([]byte, error)
	HMGet(ctx context.Context, key string, fields ...string) (map[string]string, error)
	HDel(ctx context.Context, key string, fields ...string) error
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SCard(ctx context.Context, key string) (int64, error)
	SUnion(ctx context.Context, keys ...string) ([]string, error)
	SInter(ctx context.Context, keys ...string) ([]string, error)
	ZAdd(ctx context.Context, key string, score float64, members ...string) error
	ZRem(ctx context.Context, key string, members ...string) error
	ZRangeByLex(ctx context.Context, key, minLex, maxLex string, offset, count int64) ([]string, error)
}

// Repo implements the index store over Redis sets and sorted sets.
type Repo struct {
	store  store
	prefix string
}

// New creates a search index repository. An empty prefix selects DefaultKeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// Save writes doc and replaces whatever was stored for the same id and type.
func (r *Repo) Save(ctx context.Context, doc *domdoc.Document) error {
	typeName, id := doc.Type(), doc.ID()

	prev, found, err := r.load(ctx, typeName, id)
	if err != nil {
		return err
	}

	terms := normalizeAll(doc.Terms())
	if found {
		stale := make([]string, 0)
		for _, t := range normalizeAll(prev.doc.Terms()) {
			if !slices.Contains(terms, t) {
				stale = append(stale, t)
			}
		}
		if err := r.dropTerms(ctx, typeName, id, stale); err != nil {
			return err
		}
		if err := r.dropConditions(ctx, typeName, id, prev.conds); err != nil {
			return err
		}
	}

	data, err := encodeDoc(doc)
	if err != nil {
		return err
	}
	if err := r.store.HSet(ctx, r.docsKey(typeName), map[string]string{id: string(data)}); err != nil {
		return fmt.Errorf("save %s/%s: %w", typeName, id, err)
	}

	for _, t := range terms {
		if err := r.store.SAdd(ctx, r.termKey(typeName, t), id); err != nil {
			return fmt.Errorf("index term %q: %w", t, err)
		}
	}
	if len(terms) > 0 {
		if err := r.store.ZAdd(ctx, r.complKey(typeName), 0, terms...); err != nil {
			return fmt.Errorf("index completions %s: %w", typeName, err)
		}
	}

	for field, value := range doc.Conditions() {
		if err := r.store.SAdd(ctx, r.condKey(typeName, field, value), id); err != nil {
			return fmt.Errorf("index condition %s=%s: %w", field, value, err)
		}
	}
	return nil
}

// Remove drops the entry indexed for id under title. Missing entries are ignored.
func (r *Repo) Remove(ctx context.Context, id, title, typeName string) error {
	prev, found, err := r.load(ctx, typeName, id)
	if err != nil {
		return err
	}

	terms := []string{}
	if t := normalize(title); t != "" {
		terms = append(terms, t)
	}
	if found {
		for _, t := range normalizeAll(prev.doc.Terms()) {
			if !slices.Contains(terms, t) {
				terms = append(terms, t)
			}
		}
		if err := r.dropConditions(ctx, typeName, id, prev.conds); err != nil {
			return err
		}
		if err := r.store.HDel(ctx, r.docsKey(typeName), id); err != nil {
			return fmt.Errorf("remove %s/%s: %w", typeName, id, err)
		}
	}
	return r.dropTerms(ctx, typeName, id, terms)
}

// Complete returns up to limit documents of typeName with a term starting with
// prefix, highest score first. Every condition must match the stored value.
func (r *Repo) Complete(
	ctx context.Context, typeName, prefix string, limit int, conditions map[string]string,
) ([]domdoc.Document, error) {
	p := normalize(prefix)
	if p == "" {
		return []domdoc.Document{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	terms, err := r.store.ZRangeByLex(ctx, r.complKey(typeName), "["+p, "["+p+lexMax, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("match prefix %q: %w", p, err)
	}
	if len(terms) == 0 {
		return []domdoc.Document{}, nil
	}

	termKeys := make([]string, len(terms))
	for i, t := range terms {
		termKeys[i] = r.termKey(typeName, t)
	}
	ids, err := r.store.SUnion(ctx, termKeys...)
	if err != nil {
		return nil, fmt.Errorf("collect ids %s: %w", typeName, err)
	}

	if len(conditions) > 0 {
		ids, err = r.filterConditions(ctx, typeName, ids, conditions)
		if err != nil {
			return nil, err
		}
	}
	if len(ids) == 0 {
		return []domdoc.Document{}, nil
	}

	raw, err := r.store.HMGet(ctx, r.docsKey(typeName), ids...)
	if err != nil {
		return nil, fmt.Errorf("load documents %s: %w", typeName, err)
	}

	docs := make([]domdoc.Document, 0, len(raw))
	for _, id := range ids {
		data, ok := raw[id]
		if !ok {
			continue
		}
		stored, err := decodeDoc([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", typeName, id, err)
		}
		docs = append(docs, stored.doc)
	}

	slices.SortFunc(docs, func(a, b domdoc.Document) int {
		switch {
		case a.Score() > b.Score():
			return -1
		case a.Score() < b.Score():
			return 1
		default:
			return strings.Compare(a.ID(), b.ID())
		}
	})
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (r *Repo) load(ctx context.Context, typeName, id string) (storedDoc, bool, error) {
	data, err := r.store.HGet(ctx, r.docsKey(typeName), id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return storedDoc{}, false, nil
		}
		return storedDoc{}, false, fmt.Errorf("load %s/%s: %w", typeName, id, err)
	}
	stored, err := decodeDoc(data)
	if err != nil {
		return storedDoc{}, false, fmt.Errorf("decode %s/%s: %w", typeName, id, err)
	}
	return stored, true, nil
}

func (r *Repo) dropTerms(ctx context.Context, typeName, id string, terms []string) error {
	for _, t := range terms {
		key := r.termKey(typeName, t)
		if err := r.store.SRem(ctx, key, id); err != nil {
			return fmt.Errorf("unindex term %q: %w", t, err)
		}
		n, err := r.store.SCard(ctx, key)
		if err != nil {
			return fmt.Errorf("count term %q: %w", t, err)
		}
		if n > 0 {
			continue
		}
		if err := r.store.ZRem(ctx, r.complKey(typeName), t); err != nil {
			return fmt.Errorf("unindex completion %q: %w", t, err)
		}
	}
	return nil
}

func (r *Repo) dropConditions(ctx context.Context, typeName, id string, conds map[string]string) error {
	for field, value := range conds {
		if err := r.store.SRem(ctx, r.condKey(typeName, field, value), id); err != nil {
			return fmt.Errorf("unindex condition %s=%s: %w", field, value, err)
		}
	}
	return nil
}

func (r *Repo) filterConditions(
	ctx context.Context, typeName string, ids []string, conds map[string]string,
) ([]string, error) {
	keys := make([]string, 0, len(conds))
	for field, value := range conds {
		if field == "" {
			return nil, fmt.Errorf("empty condition field: %w", domain.ErrInvalidQuery)
		}
		keys = append(keys, r.condKey(typeName, field, value))
	}
	slices.Sort(keys)

	matched, err := r.store.SInter(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("match conditions %s: %w", typeName, err)
	}

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if slices.Contains(matched, id) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *Repo) docsKey(typeName string) string {
	return r.prefix + typeName
}

func (r *Repo) termKey(typeName, term string) string {
	return fmt.Sprintf("%s%s:term:%s", r.prefix, typeName, term)
}

func (r *Repo) complKey(typeName string) string {
	return fmt.Sprintf("%s%s:compl", r.prefix, typeName)
}

func (r *Repo) condKey(typeName, field, value string) string {
	return fmt.Sprintf("%s%s:cond:%s:%s", r.prefix, typeName, field, value)
}

func normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// normalizeAll lowercases terms and drops blanks and duplicates, keeping order.
func normalizeAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		n := normalize(t)
		if n == "" || slices.Contains(out, n) {
			continue
		}
		out = append(out, n)
	}
	return out
}
