package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GetRouter initialises a new http router and applies all routes
func GetRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	return applyRoutes(r, h)
}

func applyRoutes(r chi.Router, h *Handler) chi.Router {
	r.Route("/", func(r chi.Router) {
		r.Get("/", h.getIndex)
		r.Get("/healthz", getHealth)
		r.Get("/images/{key}", h.getImage)
		r.Get("/charts/project-area.png", h.getProjectChart)
		r.Get("/charts/room-area.png", h.getRoomChart)
		r.Get("/export", h.getExport)
		r.Get("/export.{format}", h.getExport)
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/options", h.getOptions)
		r.Get("/rows", h.getRows)
		r.Get("/images", h.getImages)
		r.Get("/totals", h.getTotals)
	})

	return r
}
