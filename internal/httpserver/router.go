package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"opsdash-api/internal/handlers"
	"opsdash-api/internal/metrics"
	"opsdash-api/internal/middleware"
)

func SetupRouter(r *chi.Mux, baseLogger *zap.Logger, dash *handlers.DashboardHandler, hooks *handlers.HookHandler) {

	r.Use(metrics.Middleware)

	// base middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	r.Use(middleware.LoggingContext(baseLogger))
	r.Use(middleware.Recoverer())               // panic recovery
	r.Use(middleware.Timeout(30 * time.Second)) // request timeout, covers slow aggregations
	r.Use(middleware.MaxBodySize(256 * 1024))   // 256 KB max body

	// routes
	r.Route("/v1", func(r chi.Router) {
		r.Get("/dashboards/{name}", dash.Get)
		r.Post("/hooks/orders", hooks.OrderChange)
	})

	// health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler())
}
