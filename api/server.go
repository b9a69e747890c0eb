/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and routes for the read-only
  reporting surface. This is the wiring layer that connects URLs to
  handlers.

MIDDLEWARE STACK:
  1. Logger:     request logging
  2. Recoverer:  panic recovery (500 instead of crash)
  3. RequestID:  unique ID per request for tracing
  4. CORS:       the dashboard may be served from a different origin

STATIC FILE SERVING:
  When a dashboard directory is configured, it is served at /. The
  dashboard is plain HTML/JS that fetches /api/* documents; there is no
  server-side rendering.

SECURITY NOTE:
  No authentication. Every endpoint is a read of already-published report
  documents.

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/payrollengine: server startup
*/
package api

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions configures the read-only surface.
type RouterOptions struct {
	// AllowedOrigins for CORS; empty means same-origin only.
	AllowedOrigins []string
	// DashboardDir, when set and present, is served as static files at /.
	DashboardDir string
}

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/index", h.GetIndex)
		r.Get("/aggregates", h.GetAggregates)
		r.Get("/people/{bucket}", h.GetPeopleBucket)

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", h.ListRuns)
			r.Get("/{id}/employees", h.GetRunEmployees)
		})
	})

	if opts.DashboardDir != "" {
		if _, err := os.Stat(opts.DashboardDir); err == nil {
			fileServer := http.FileServer(http.Dir(opts.DashboardDir))
			r.Get("/*", fileServer.ServeHTTP)
			return r
		}
	}

	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Payroll Aggregation Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Payroll Aggregation Engine</h1>
<p>No dashboard directory configured. The report API is available:</p>
<ul>
<li><a href="/api/index">/api/index</a> - employee summary index</li>
<li><a href="/api/aggregates">/api/aggregates</a> - payroll aggregates</li>
<li><a href="/api/runs">/api/runs</a> - archived runs</li>
</ul>
</body>
</html>`))
	})

	return r
}
