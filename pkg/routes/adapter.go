package routes

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/onramp-dev/onramp/pkg/logger"
	"github.com/onramp-dev/onramp/pkg/metrics"
	"github.com/onramp-dev/onramp/pkg/workerpool"
)

// Params carries the dynamic path segment values of a request, keyed by
// parameter name ("[id]" → params["id"]).
type Params map[string]string

// Handler signatures. A handler declares zero, one, or two parameters and
// optionally returns an error alongside its result:
//
//	func() any                             // no request access
//	func(*http.Request) any                // request only
//	func(*http.Request, routes.Params) any // request + path parameters
//
// plus the (any, error) variants of each. Anything else is rejected when
// the route table is built.
type (
	Func0  = func() any
	Func1  = func(*http.Request) any
	Func2  = func(*http.Request, Params) any
	Func0E = func() (any, error)
	Func1E = func(*http.Request) (any, error)
	Func2E = func(*http.Request, Params) (any, error)
)

// execClass decides where a handler body runs.
type execClass int

const (
	// execPooled runs the handler on the bounded worker pool so blocking
	// work cannot monopolize request goroutines. This is the default.
	execPooled execClass = iota
	// execInline runs the handler directly on the request goroutine.
	execInline
)

// marker wraps a handler func with an explicit execution class.
type marker struct {
	fn    any
	class execClass
}

// Inline marks a handler as non-blocking: it runs directly on the request
// goroutine instead of the worker pool. Use it for handlers that only do
// quick in-memory work or already delegate their waiting elsewhere.
func Inline(fn any) any { return marker{fn: fn, class: execInline} }

// Blocking marks a handler as deliberately synchronous. Behavior matches
// the default (worker pool), but the intent is visible at the call site.
func Blocking(fn any) any { return marker{fn: fn, class: execPooled} }

// adapted is a handler normalized to a uniform call shape plus its
// execution class.
type adapted struct {
	call  func(r *http.Request, p Params) (any, error)
	class execClass
	pool  *workerpool.Pool
}

// adapt validates fn against the supported signatures and normalizes it.
func adapt(fn any, pool *workerpool.Pool) (*adapted, error) {
	class := execPooled
	if m, ok := fn.(marker); ok {
		fn = m.fn
		class = m.class
	}

	var call func(*http.Request, Params) (any, error)
	switch f := fn.(type) {
	case Func0:
		call = func(*http.Request, Params) (any, error) { return f(), nil }
	case Func1:
		call = func(r *http.Request, _ Params) (any, error) { return f(r), nil }
	case Func2:
		call = func(r *http.Request, p Params) (any, error) { return f(r, p), nil }
	case Func0E:
		call = func(*http.Request, Params) (any, error) { return f() }
	case Func1E:
		call = func(r *http.Request, _ Params) (any, error) { return f(r) }
	case Func2E:
		call = func(r *http.Request, p Params) (any, error) { return f(r, p) }
	case nil:
		return nil, fmt.Errorf("handler is nil")
	default:
		return nil, fmt.Errorf("unsupported handler signature %T", fn)
	}

	return &adapted{call: call, class: class, pool: pool}, nil
}

// invoke runs the handler in its execution class. Pooled handlers block
// the request goroutine until a worker picks the task up and finishes;
// the pool bound is the backpressure limit for blocking handlers.
func (h *adapted) invoke(r *http.Request, p Params) (any, error) {
	if h.class == execInline || h.pool == nil {
		return h.call(r, p)
	}

	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)

	queued := time.Now()
	err := h.pool.SubmitWait(func() {
		metrics.HandlerPoolWait.Observe(time.Since(queued).Seconds())
		// A panic on a worker goroutine would leave the request hanging:
		// surface it as a handler error instead.
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("handler panic",
					"error", fmt.Sprintf("%v", rec),
					"stack", string(debug.Stack()),
					"path", r.URL.Path,
				)
				done <- outcome{err: fmt.Errorf("handler panic: %v", rec)}
			}
		}()
		res, err := h.call(r, p)
		done <- outcome{result: res, err: err}
	})
	if err != nil {
		return nil, fmt.Errorf("worker pool: %w", err)
	}

	select {
	case out := <-done:
		return out.result, out.err
	case <-r.Context().Done():
		// Client went away; the task still finishes on its worker, the
		// buffered channel keeps it from leaking.
		return nil, r.Context().Err()
	}
}
