package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/domain"
	domdoc "github.com/kailas-cloud/searchsync/internal/domain/document"
	domrec "github.com/kailas-cloud/searchsync/internal/domain/record"
	"github.com/kailas-cloud/searchsync/internal/registry"
	healthuc "github.com/kailas-cloud/searchsync/internal/usecase/health"
	"github.com/kailas-cloud/searchsync/internal/usecase/query"
	"github.com/kailas-cloud/searchsync/internal/usecase/rebuild"
)

// --- Mocks ---

type prefixCall struct {
	typeName, q string
	opts        query.Options
}

type mockCompleter struct {
	calls []prefixCall
	docs  []domdoc.Document
	err   error
}

func (m *mockCompleter) PrefixMatch(
	_ context.Context, typeName, q string, opts query.Options,
) ([]domdoc.Document, error) {
	m.calls = append(m.calls, prefixCall{typeName, q, opts})
	return m.docs, m.err
}

type mockRebuilder struct {
	sum       rebuild.Summary
	err       error
	rebuiltAt time.Time
}

func (m *mockRebuilder) Rebuild(_ context.Context, typeName string) (rebuild.Summary, error) {
	m.sum.Type = typeName
	return m.sum, m.err
}

func (m *mockRebuilder) LastRebuilt(_ context.Context, _ string) (time.Time, bool, error) {
	return m.rebuiltAt, !m.rebuiltAt.IsZero(), m.err
}

type mockRecords struct {
	attrs     map[string]any
	updatedID string
	destroyed string
	err       error
}

func (m *mockRecords) Create(_ context.Context, typeName string, attrs map[string]any) (*domrec.Row, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.attrs = attrs
	row := domrec.NewRow(typeName, attrs)
	row.MarkSaved("7", true)
	return row, nil
}

func (m *mockRecords) Update(_ context.Context, typeName, id string, attrs map[string]any) (*domrec.Row, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.updatedID = id
	m.attrs = attrs
	return domrec.LoadRow(typeName, id, attrs), nil
}

func (m *mockRecords) Destroy(_ context.Context, _, id string) error {
	if m.err != nil {
		return m.err
	}
	m.destroyed = id
	return nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

type fixture struct {
	completer *mockCompleter
	rebuilder *mockRebuilder
	records   *mockRecords
	health    *mockHealth
	handler   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := registry.New(zap.NewNop())
	reg.MustRegister("Post", registry.Options{AliasField: "aliases", ConditionFields: []string{"lang"}})

	f := &fixture{
		completer: &mockCompleter{},
		rebuilder: &mockRebuilder{},
		records:   &mockRecords{},
		health: &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{healthuc.ComponentIndex: healthuc.CheckOK},
		}},
	}
	srv := NewServer(reg, f.completer, f.rebuilder, f.records, f.health, zap.NewNop())
	f.handler = srv.Router(nil)
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// --- Tests ---

func TestHealthCheck(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := decode[healthResponse](t, rr); got.Status != healthuc.Healthy {
		t.Errorf("unexpected status %q", got.Status)
	}

	f.health.report.Status = healthuc.Unhealthy
	if rr := f.do(http.MethodGet, "/health", ""); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rr.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	rr := newFixture(t).do(http.MethodGet, "/health", "")
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header")
	}
}

func TestListTypes(t *testing.T) {
	rr := newFixture(t).do(http.MethodGet, "/types", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	got := decode[typeListResponse](t, rr)
	if len(got.Items) != 1 || got.Items[0].Name != "Post" || got.Items[0].AliasField != "aliases" {
		t.Errorf("unexpected types: %+v", got)
	}
	want := []string{"created_at", "lang"}
	if ext := got.Items[0].ExtFields; len(ext) != 2 || ext[0] != want[0] || ext[1] != want[1] {
		t.Errorf("ext fields = %v, want %v", ext, want)
	}
}

func TestComplete_ParsesQuery(t *testing.T) {
	f := newFixture(t)
	doc, _ := domdoc.New("1", "Go", []string{"golang"}, "Post", map[string]any{"lang": "en"}, []string{"lang"}, 3)
	f.completer.docs = []domdoc.Document{doc}

	rr := f.do(http.MethodGet, "/types/Post/complete?q=go&limit=5&cond.lang=en", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	call := f.completer.calls[0]
	if call.typeName != "Post" || call.q != "go" || call.opts.Limit != 5 || call.opts.Conditions["lang"] != "en" {
		t.Errorf("unexpected call %+v", call)
	}
	got := decode[completeResponse](t, rr)
	if len(got.Items) != 1 || got.Items[0].ID != "1" || got.Items[0].Aliases[0] != "golang" || got.Items[0].Score != 3 {
		t.Errorf("unexpected items %+v", got.Items)
	}
}

func TestComplete_BadLimit(t *testing.T) {
	f := newFixture(t)
	rr := f.do(http.MethodGet, "/types/Post/complete?q=go&limit=ten", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if len(f.completer.calls) != 0 {
		t.Error("query must not run")
	}
}

func TestComplete_DomainErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   errorCode
	}{
		{"invalid query", domain.ErrInvalidQuery, http.StatusBadRequest, codeValidationFailed},
		{"store failure", errors.New("dial tcp: refused"), http.StatusInternalServerError, codeInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.completer.err = tc.err

			rr := f.do(http.MethodGet, "/types/Post/complete?q=go", "")
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rr.Code)
			}
			got := decode[errorResponse](t, rr)
			if got.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, got.Code)
			}
			if strings.Contains(got.Message, "dial tcp") {
				t.Error("internal error message leaked")
			}
		})
	}
}

func TestUnknownType_404(t *testing.T) {
	f := newFixture(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/types/Nope/complete?q=x"},
		{http.MethodPost, "/types/Nope/rebuild"},
		{http.MethodDelete, "/types/Nope/records/1"},
	} {
		rr := f.do(tc.method, tc.path, "")
		if rr.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tc.method, tc.path, rr.Code)
		}
		if got := decode[errorResponse](t, rr); got.Code != codeTypeNotFound {
			t.Errorf("%s %s: expected %s, got %s", tc.method, tc.path, codeTypeNotFound, got.Code)
		}
	}
}

func TestRebuild(t *testing.T) {
	f := newFixture(t)
	f.rebuilder.sum = rebuild.Summary{Indexed: 12, Supported: true, Duration: 1500 * time.Microsecond}

	rr := f.do(http.MethodPost, "/types/Post/rebuild", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	got := decode[rebuildResponse](t, rr)
	if got.Type != "Post" || got.Indexed != 12 || !got.Supported || got.DurationMS != 1.5 {
		t.Errorf("unexpected summary %+v", got)
	}
}

func TestRebuildStatus(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodGet, "/types/Post/rebuild", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := decode[rebuildStatusResponse](t, rr); got.RebuiltAt != nil {
		t.Errorf("expected no rebuild, got %v", got.RebuiltAt)
	}

	f.rebuilder.rebuiltAt = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rr = f.do(http.MethodGet, "/types/Post/rebuild", "")
	got := decode[rebuildStatusResponse](t, rr)
	if got.RebuiltAt == nil || !got.RebuiltAt.Equal(f.rebuilder.rebuiltAt) {
		t.Errorf("unexpected rebuilt_at %v", got.RebuiltAt)
	}
}

func TestCreateRecord(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPost, "/types/Post/records", `{"attributes":{"title":"Go","aliases":"golang"}}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/types/Post/records/7" {
		t.Errorf("unexpected location %q", loc)
	}
	if f.records.attrs["title"] != "Go" {
		t.Errorf("attributes not forwarded: %v", f.records.attrs)
	}
	if got := decode[recordResponse](t, rr); got.ID != "7" || got.Attributes["aliases"] != "golang" {
		t.Errorf("unexpected record %+v", got)
	}
}

func TestCreateRecord_BadBody(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{`{`, `{"attributes":{}}`} {
		if rr := f.do(http.MethodPost, "/types/Post/records", body); rr.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rr.Code)
		}
	}
}

func TestUpdateRecord(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodPatch, "/types/Post/records/3", `{"attributes":{"title":"Rust"}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if f.records.updatedID != "3" {
		t.Errorf("unexpected id %q", f.records.updatedID)
	}
}

func TestUpdateRecord_NotFound(t *testing.T) {
	f := newFixture(t)
	f.records.err = domain.ErrRecordNotFound

	rr := f.do(http.MethodPatch, "/types/Post/records/3", `{"attributes":{"title":"Rust"}}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if got := decode[errorResponse](t, rr); got.Code != codeRecordNotFound {
		t.Errorf("unexpected code %s", got.Code)
	}
}

func TestDestroyRecord(t *testing.T) {
	f := newFixture(t)

	rr := f.do(http.MethodDelete, "/types/Post/records/9", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if f.records.destroyed != "9" {
		t.Errorf("unexpected id %q", f.records.destroyed)
	}
}

func TestNotFoundRoute(t *testing.T) {
	rr := newFixture(t).do(http.MethodGet, "/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rr := newFixture(t).do(http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
