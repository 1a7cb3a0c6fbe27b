package query

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/domain"
	domdoc "github.com/kailas-cloud/searchsync/internal/domain/document"
	"github.com/kailas-cloud/searchsync/internal/registry"
)

type completeCall struct {
	typeName, prefix string
	limit            int
	conditions       map[string]string
}

type mockCompleter struct {
	calls []completeCall
	docs  []domdoc.Document
	err   error
}

func (m *mockCompleter) Complete(
	_ context.Context, typeName, prefix string, limit int, conditions map[string]string,
) ([]domdoc.Document, error) {
	m.calls = append(m.calls, completeCall{typeName, prefix, limit, conditions})
	return m.docs, m.err
}

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New(zap.NewNop())
	reg.MustRegister("Post", registry.Options{ConditionFields: []string{"lang"}})
	reg.MustRegister("Article", registry.Options{ClassName: "Post"})
	return reg
}

func TestPrefixMatch_DefaultLimit(t *testing.T) {
	doc, _ := domdoc.New("1", "Go", nil, "Post", nil, nil, 0)
	idx := &mockCompleter{docs: []domdoc.Document{doc}}
	svc := New(newRegistry(t), idx)

	got, err := svc.PrefixMatch(context.Background(), "Post", "g", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID() != "1" {
		t.Errorf("unexpected docs: %v", got)
	}
	if len(idx.calls) != 1 || idx.calls[0].limit != DefaultLimit || idx.calls[0].prefix != "g" {
		t.Errorf("unexpected call: %+v", idx.calls)
	}
}

func TestPrefixMatch_UsesIndexType(t *testing.T) {
	idx := &mockCompleter{}
	svc := New(newRegistry(t), idx)

	if _, err := svc.PrefixMatch(context.Background(), "Article", "g", Options{Limit: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.calls[0].typeName != "Post" || idx.calls[0].limit != 3 {
		t.Errorf("expected class name override, got %+v", idx.calls[0])
	}
}

func TestPrefixMatch_Conditions(t *testing.T) {
	idx := &mockCompleter{}
	svc := New(newRegistry(t), idx)

	_, err := svc.PrefixMatch(context.Background(), "Post", "g", Options{
		Conditions: map[string]string{"lang": "en"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.calls[0].conditions["lang"] != "en" {
		t.Errorf("conditions not forwarded: %+v", idx.calls[0])
	}
}

func TestPrefixMatch_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"negative limit", Options{Limit: -1}},
		{"limit too large", Options{Limit: MaxLimit + 1}},
		{"unknown condition", Options{Conditions: map[string]string{"author": "x"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			idx := &mockCompleter{}
			svc := New(newRegistry(t), idx)

			_, err := svc.PrefixMatch(context.Background(), "Post", "g", tc.opts)
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Fatalf("expected ErrInvalidQuery, got %v", err)
			}
			if len(idx.calls) != 0 {
				t.Error("store must not be queried")
			}
		})
	}
}

func TestPrefixMatch_UnknownType(t *testing.T) {
	svc := New(newRegistry(t), &mockCompleter{})

	_, err := svc.PrefixMatch(context.Background(), "Nope", "g", Options{})
	if !errors.Is(err, domain.ErrTypeNotRegistered) {
		t.Fatalf("expected ErrTypeNotRegistered, got %v", err)
	}
}

func TestPrefixMatch_StoreError(t *testing.T) {
	boom := errors.New("boom")
	svc := New(newRegistry(t), &mockCompleter{err: boom})

	if _, err := svc.PrefixMatch(context.Background(), "Post", "g", Options{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
