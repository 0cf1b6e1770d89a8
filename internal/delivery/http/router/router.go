package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/report-service/internal/delivery/http/handler"
	"github.com/user/report-service/internal/delivery/http/middleware"
)

// New builds the service router. publicDir is served under /reports/ so
// the public URLs the HTML exporter hands out resolve.
func New(h *handler.Handler, publicDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)

	r.Get("/api/health", h.HandleHealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/reports", func(r chi.Router) {
		r.Post("/", h.HandleSubmitReport)
		r.Get("/{id}", h.HandleGetReportStatus)
		r.Get("/{id}/download", h.HandleDownloadReport)
	})

	r.Handle("/reports/*", http.StripPrefix("/reports/", http.FileServer(http.Dir(publicDir))))

	return r
}
