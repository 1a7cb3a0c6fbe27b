package searchindex

import (
	"context"
	"slices"
	"strings"

	"github.com/kailas-cloud/searchsync/internal/db"
)

// memStore is an in-memory implementation of the consumer interface.
// failOn makes the named command return failErr.
type memStore struct {
	hashes  map[string]map[string]string
	sets    map[string]map[string]struct{}
	zsets   map[string]map[string]struct{}
	kv      map[string][]byte
	failOn  string
	failErr error
	calls   []string
}

func newMemStore() *memStore {
	return &memStore{
		hashes: map[string]map[string]string{},
		sets:   map[string]map[string]struct{}{},
		zsets:  map[string]map[string]struct{}{},
		kv:     map[string][]byte{},
	}
}

func (m *memStore) fail(op string) error {
	m.calls = append(m.calls, op)
	if m.failOn == op {
		return &db.Error{Op: op, Err: m.failErr}
	}
	return nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := m.fail(db.OpGet); err != nil {
		return nil, err
	}
	v, ok := m.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	if err := m.fail(db.OpSet); err != nil {
		return err
	}
	m.kv[key] = value
	return nil
}

func (m *memStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if err := m.fail(db.OpHSet); err != nil {
		return err
	}
	h, ok := m.hashes[key]
	if !ok {
		h = map[string]string{}
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (m *memStore) HGet(_ context.Context, key, field string) ([]byte, error) {
	if err := m.fail(db.OpHGet); err != nil {
		return nil, err
	}
	v, ok := m.hashes[key][field]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return []byte(v), nil
}

func (m *memStore) HMGet(_ context.Context, key string, fields ...string) (map[string]string, error) {
	if err := m.fail(db.OpHMGet); err != nil {
		return nil, err
	}
	out := map[string]string{}
	for _, f := range fields {
		if v, ok := m.hashes[key][f]; ok {
			out[f] = v
		}
	}
	return out, nil
}

func (m *memStore) HDel(_ context.Context, key string, fields ...string) error {
	if err := m.fail(db.OpHDel); err != nil {
		return err
	}
	for _, f := range fields {
		delete(m.hashes[key], f)
	}
	return nil
}

func (m *memStore) SAdd(_ context.Context, key string, members ...string) error {
	if err := m.fail(db.OpSAdd); err != nil {
		return err
	}
	s, ok := m.sets[key]
	if !ok {
		s = map[string]struct{}{}
		m.sets[key] = s
	}
	for _, v := range members {
		s[v] = struct{}{}
	}
	return nil
}

func (m *memStore) SRem(_ context.Context, key string, members ...string) error {
	if err := m.fail(db.OpSRem); err != nil {
		return err
	}
	for _, v := range members {
		delete(m.sets[key], v)
	}
	if len(m.sets[key]) == 0 {
		delete(m.sets, key)
	}
	return nil
}

func (m *memStore) SCard(_ context.Context, key string) (int64, error) {
	if err := m.fail(db.OpSCard); err != nil {
		return 0, err
	}
	return int64(len(m.sets[key])), nil
}

func (m *memStore) SUnion(_ context.Context, keys ...string) ([]string, error) {
	if err := m.fail(db.OpSUnion); err != nil {
		return nil, err
	}
	var out []string
	for _, k := range keys {
		for v := range m.sets[k] {
			if !slices.Contains(out, v) {
				out = append(out, v)
			}
		}
	}
	slices.Sort(out)
	return out, nil
}

func (m *memStore) SInter(_ context.Context, keys ...string) ([]string, error) {
	if err := m.fail(db.OpSInter); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}
	var out []string
	for v := range m.sets[keys[0]] {
		all := true
		for _, k := range keys[1:] {
			if _, ok := m.sets[k][v]; !ok {
				all = false
				break
			}
		}
		if all {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (m *memStore) ZAdd(_ context.Context, key string, _ float64, members ...string) error {
	if err := m.fail(db.OpZAdd); err != nil {
		return err
	}
	z, ok := m.zsets[key]
	if !ok {
		z = map[string]struct{}{}
		m.zsets[key] = z
	}
	for _, v := range members {
		z[v] = struct{}{}
	}
	return nil
}

func (m *memStore) ZRem(_ context.Context, key string, members ...string) error {
	if err := m.fail(db.OpZRem); err != nil {
		return err
	}
	for _, v := range members {
		delete(m.zsets[key], v)
	}
	return nil
}

// ZRangeByLex supports inclusive "[" bounds only.
func (m *memStore) ZRangeByLex(
	_ context.Context, key, minLex, maxLex string, _, _ int64,
) ([]string, error) {
	if err := m.fail(db.OpZRangeByLex); err != nil {
		return nil, err
	}
	lo := strings.TrimPrefix(minLex, "[")
	hi := strings.TrimPrefix(maxLex, "[")
	var out []string
	for v := range m.zsets[key] {
		if v >= lo && v <= hi {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (m *memStore) members(key string) []string {
	out := make([]string, 0, len(m.sets[key]))
	for v := range m.sets[key] {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func (m *memStore) hasCompletion(key, term string) bool {
	_, ok := m.zsets[key][term]
	return ok
}
