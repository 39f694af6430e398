package app

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/onramp-dev/onramp/pkg/logger"
	"github.com/onramp-dev/onramp/pkg/metrics"
	"github.com/onramp-dev/onramp/pkg/middleware"
	"github.com/onramp-dev/onramp/pkg/reqid"
	"github.com/onramp-dev/onramp/pkg/routes"
	"github.com/onramp-dev/onramp/pkg/workerpool"
)

// buildHandler assembles the HTTP kernel: global middleware, the
// /metrics endpoint, and the route table derived from registered api
// files. The returned pool must be shut down when the server stops.
func buildHandler(a *Application) (http.Handler, *workerpool.Pool) {
	mux := chi.NewRouter()

	// Middleware stack, outermost first:
	//  1. Prometheus metrics, outermost for accurate total latency
	//  2. Recovery, catches panics before they kill the goroutine
	//  3. Request ID, injected before anything logs
	//  4. Logger, tags every line with the request_id
	//  5. CORS, permissive for local development
	mux.Use(metrics.Middleware())
	mux.Use(middleware.Recovery)
	mux.Use(reqid.Middleware())
	mux.Use(middleware.Logger)
	mux.Use(middleware.CORS(middleware.DefaultCORSOptions()))

	mux.Get("/metrics", metrics.Handler())

	if staticDir := filepath.Join(a.settings.ProjectRoot, "app", "static"); dirExists(staticDir) {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir)))
		mux.Handle("/static/*", fs)
	}

	pool := workerpool.New(a.poolSize)
	table := a.registry.Build(pool)
	routes.Mount(mux, table)

	// Flag api files that exist on disk but never registered; usually a
	// missing init() or a file with no exported verbs.
	a.registry.Audit(filepath.Join(a.settings.ProjectRoot, "app", "api"))

	logger.Info("kernel built", "routes", len(table), "pool_size", a.poolSize)
	return mux, pool
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
