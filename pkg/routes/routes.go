// Package routes turns a generated project's api files into HTTP routes.
//
// Each file under app/api/ registers a Module named after its own base
// name; the URL path is derived from that name:
//
//	index      → /api
//	widgets    → /api/widgets
//	[id]       → /api/{id}
//
// A Module lists one handler per HTTP verb. Handler functions come from a
// closed set of signatures (see adapter.go) and are validated when the
// route table is built, not on first request.
//
//	func init() {
//	    routes.Register("widgets", routes.Module{
//	        Get:  listWidgets,
//	        Post: routes.Blocking(createWidget),
//	    })
//	}
package routes

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/onramp-dev/onramp/pkg/logger"
	"github.com/onramp-dev/onramp/pkg/workerpool"
)

// Module holds the verb handlers exported by one api file. Any field may
// be nil; a module with no handlers at all produces a warning and no route.
type Module struct {
	Get     any
	Post    any
	Put     any
	Delete  any
	Patch   any
	Head    any
	Options any
}

func (m Module) verbs() map[string]any {
	return map[string]any{
		http.MethodGet:     m.Get,
		http.MethodPost:    m.Post,
		http.MethodPut:     m.Put,
		http.MethodDelete:  m.Delete,
		http.MethodPatch:   m.Patch,
		http.MethodHead:    m.Head,
		http.MethodOptions: m.Options,
	}
}

// Route is one built entry of the route table.
type Route struct {
	Name     string // module name, e.g. "index" or "[id]"
	Path     string // derived chi pattern, e.g. "/api/{id}"
	handlers map[string]*adapted
	allow    string // precomputed Allow header value
}

// Methods returns the verbs this route answers, sorted.
func (rt *Route) Methods() []string {
	out := make([]string, 0, len(rt.handlers))
	for m := range rt.handlers {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Registry collects module registrations until the route table is built.
type Registry struct {
	mu      sync.Mutex
	modules map[string]Module
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Module)}
}

// defaultRegistry serves the generated-code path: api files call the
// package-level Register from init() and pkg/app builds from here.
var defaultRegistry = NewRegistry()

// Default returns the registry generated api files register into.
func Default() *Registry { return defaultRegistry }

// Register adds a module under its file base name. Registering the same
// name twice keeps the last registration and logs the collision.
func Register(name string, m Module) { defaultRegistry.Register(name, m) }

// Register adds a module to this registry.
func (reg *Registry) Register(name string, m Module) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.modules[name]; exists {
		logger.Warn("routes: module registered twice, keeping last", "name", name)
	} else {
		reg.order = append(reg.order, name)
	}
	reg.modules[name] = m
}

// DerivePath maps a module name to its URL pattern. Exactly one literal
// name, "index", maps to the collection root. A name containing both "["
// and "]" defines a single dynamic segment; multi-segment dynamic routes
// and regex constraints are not supported.
func DerivePath(name string) (string, error) {
	if name == "" || strings.ContainsRune(name, '/') {
		return "", fmt.Errorf("invalid module name %q", name)
	}
	if name == "index" {
		return "/api", nil
	}
	if strings.Contains(name, "[") && strings.Contains(name, "]") {
		if strings.Count(name, "[") > 1 || strings.Count(name, "]") > 1 {
			return "", fmt.Errorf("module %q: only one dynamic segment is supported", name)
		}
		open := strings.Index(name, "[")
		close := strings.Index(name, "]")
		if close < open || close-open < 2 {
			return "", fmt.Errorf("module %q: malformed dynamic segment", name)
		}
		converted := strings.ReplaceAll(strings.ReplaceAll(name, "[", "{"), "]", "}")
		return "/api/" + converted, nil
	}
	return "/api/" + name, nil
}

// Build validates every registered module and returns the route table.
// A module whose handlers fail validation is logged and skipped; a module
// with no handlers contributes no route. Build never fails as a whole:
// one broken api file must not take the server down.
func (reg *Registry) Build(pool *workerpool.Pool) []*Route {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	var table []*Route
	for _, name := range reg.order {
		rt, err := buildRoute(name, reg.modules[name], pool)
		if err != nil {
			logger.Error("routes: skipping module", "name", name, "err", err)
			continue
		}
		if rt == nil {
			logger.Warn("routes: module has no verb handlers", "name", name)
			continue
		}
		logger.Info("routes: registered", "path", rt.Path, "methods", strings.Join(rt.Methods(), ","))
		table = append(table, rt)
	}
	return table
}

func buildRoute(name string, m Module, pool *workerpool.Pool) (*Route, error) {
	path, err := DerivePath(name)
	if err != nil {
		return nil, err
	}

	handlers := make(map[string]*adapted)
	for verb, fn := range m.verbs() {
		if fn == nil {
			continue
		}
		h, err := adapt(fn, pool)
		if err != nil {
			return nil, fmt.Errorf("%s handler: %w", verb, err)
		}
		handlers[verb] = h
	}
	if len(handlers) == 0 {
		return nil, nil
	}

	rt := &Route{Name: name, Path: path, handlers: handlers}
	rt.allow = strings.Join(rt.Methods(), ", ")
	return rt, nil
}

// ServeHTTP dispatches to the verb handler, runs it in its execution
// class, and converts the return value into a response.
func (rt *Route) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h, ok := rt.handlers[r.Method]
	if !ok {
		w.Header().Set("Allow", rt.allow)
		writeJSONStatus(w, http.StatusMethodNotAllowed,
			map[string]string{"error": fmt.Sprintf("Method %s not allowed", r.Method)})
		return
	}

	result, err := h.invoke(r, pathParams(r))
	if err != nil {
		logger.WithCtx(r.Context()).Error("routes: handler failed", "path", rt.Path, "method", r.Method, "err", err)
		writeJSONStatus(w, http.StatusInternalServerError,
			map[string]string{"error": "internal server error"})
		return
	}

	WriteResult(w, r, result)
}

// pathParams collects chi URL params into the Params map handed to
// two-argument handlers.
func pathParams(r *http.Request) Params {
	params := Params{}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if key == "*" {
				continue
			}
			params[key] = rctx.URLParams.Values[i]
		}
	}
	return params
}

// Mount attaches the route table to a chi router. Each path is mounted
// for all methods so the route itself can answer 405 with the structured
// body and Allow header.
func Mount(mux chi.Router, table []*Route) {
	for _, rt := range table {
		mux.Handle(rt.Path, rt)
	}
}

// Audit cross-checks the registry against the api directory of a project.
// It warns about source files with no registered module (the analog of a
// route file exposing no verb functions) and about modules with no backing
// file. A missing directory is logged and ignored.
func (reg *Registry) Audit(apiDir string) {
	entries, err := os.ReadDir(apiDir)
	if err != nil {
		logger.Warn("routes: api directory not readable", "dir", apiDir, "err", err)
		return
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	onDisk := make(map[string]bool)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		base := strings.TrimSuffix(filepath.Base(name), ".go")
		onDisk[base] = true
		if _, ok := reg.modules[base]; !ok {
			logger.Warn("routes: api file registers no module", "file", name)
		}
	}
	for name := range reg.modules {
		if !onDisk[name] {
			logger.Warn("routes: module has no api file", "name", name)
		}
	}
}
