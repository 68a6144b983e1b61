package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/legaldoc-crawler/internal/delivery/http/handler"
	"github.com/user/legaldoc-crawler/internal/delivery/http/middleware"
)

func New(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.HandleHealthCheck)
	mux.HandleFunc("POST /api/links", h.HandleUpsertLinks)
	mux.HandleFunc("POST /api/crawl", h.HandleSubmitCrawl)
	mux.HandleFunc("POST /api/crawl/run", h.HandleRunSession)
	mux.HandleFunc("GET /api/status", h.HandleGetCrawlStatus)
	mux.HandleFunc("GET /api/documents/versions", h.HandleGetDocumentVersions)
	mux.HandleFunc("GET /api/sessions/{id}", h.HandleGetSession)
	mux.HandleFunc("POST /api/catalog/dedup", h.HandleCatalogDedup)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Apply middlewares
	var chainedHandler http.Handler = mux
	chainedHandler = middleware.Metrics(chainedHandler)
	chainedHandler = middleware.Logging(chainedHandler)

	return chainedHandler
}
