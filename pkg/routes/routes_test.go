package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestDerivePathPlainNames(t *testing.T) {
	cases := []struct{ name, want string }{
		{"index", "/api"},
		{"widgets", "/api/widgets"},
		{"health", "/api/health"},
	}
	for _, tc := range cases {
		got, err := DerivePath(tc.name)
		if err != nil {
			t.Fatalf("DerivePath(%q): %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("DerivePath(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestDerivePathDynamicSegment(t *testing.T) {
	got, err := DerivePath("[id]")
	if err != nil {
		t.Fatalf("DerivePath([id]): %v", err)
	}
	if got != "/api/{id}" {
		t.Errorf("DerivePath([id]) = %q, want /api/{id}", got)
	}

	got, err = DerivePath("user-[name]")
	if err != nil {
		t.Fatalf("DerivePath(user-[name]): %v", err)
	}
	if got != "/api/user-{name}" {
		t.Errorf("DerivePath(user-[name]) = %q", got)
	}
}

func TestDerivePathRejectsBadNames(t *testing.T) {
	for _, name := range []string{"", "a/b", "[a][b]", "[]"} {
		if _, err := DerivePath(name); err == nil {
			t.Errorf("DerivePath(%q): expected error", name)
		}
	}
}

func serveTable(t *testing.T, reg *Registry) http.Handler {
	t.Helper()
	mux := chi.NewRouter()
	Mount(mux, reg.Build(nil))
	return mux
}

func TestMountedRouteDispatch(t *testing.T) {
	reg := NewRegistry()
	reg.Register("widgets", Module{
		Get: func() any { return map[string]any{"widgets": []string{"a", "b"}} },
	})

	mux := serveTable(t, reg)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/widgets", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	if len(body["widgets"]) != 2 {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestIndexModuleServesCollectionRoot(t *testing.T) {
	reg := NewRegistry()
	reg.Register("index", Module{
		Get: func() any { return map[string]string{"status": "API is running"} },
	})

	mux := serveTable(t, reg)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 at /api, got %d", rec.Code)
	}
}

func TestDynamicSegmentParams(t *testing.T) {
	reg := NewRegistry()
	var seen Params
	reg.Register("[id]", Module{
		Get: func(r *http.Request, p Params) any {
			seen = p
			return map[string]string{"id": p["id"]}
		},
	})

	mux := serveTable(t, reg)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/42", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen["id"] != "42" {
		t.Errorf("expected path param id=42, got %v", seen)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	reg := NewRegistry()
	reg.Register("widgets", Module{
		Get: func() any { return "ok" },
	})

	mux := serveTable(t, reg)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/widgets", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("405 body not JSON: %v", err)
	}
	if body["error"] == "" {
		t.Errorf("expected error field in 405 body, got %s", rec.Body.String())
	}
	if rec.Header().Get("Allow") != "GET" {
		t.Errorf("expected Allow: GET, got %q", rec.Header().Get("Allow"))
	}
}

func TestEmptyModuleProducesNoRoute(t *testing.T) {
	reg := NewRegistry()
	reg.Register("ghost", Module{})

	if table := reg.Build(nil); len(table) != 0 {
		t.Errorf("expected empty table, got %d routes", len(table))
	}
}

func TestInvalidHandlerSkipsModuleOnly(t *testing.T) {
	reg := NewRegistry()
	reg.Register("bad", Module{Get: 42}) // not a function
	reg.Register("good", Module{Get: func() any { return nil }})

	table := reg.Build(nil)
	if len(table) != 1 || table[0].Name != "good" {
		t.Fatalf("expected only the good module, got %+v", table)
	}
}

func TestHandlerErrorBecomes500(t *testing.T) {
	reg := NewRegistry()
	reg.Register("boom", Module{
		Get: func() (any, error) { return nil, http.ErrAbortHandler },
	})

	mux := serveTable(t, reg)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
