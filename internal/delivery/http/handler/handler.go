package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/user/legaldoc-crawler/internal/delivery/http/request"
	"github.com/user/legaldoc-crawler/internal/delivery/http/response"
	"github.com/user/legaldoc-crawler/internal/entity"
	"github.com/user/legaldoc-crawler/internal/extractor"
	"github.com/user/legaldoc-crawler/internal/repository"
	"github.com/user/legaldoc-crawler/internal/usecase"
)

type Handler struct {
	links     usecase.LinkManager
	documents usecase.DocumentStore
	sessions  usecase.SessionTracker
	catalog   usecase.CatalogService
	crawler   usecase.Crawler
	batchSize int
}

func NewHandler(
	links usecase.LinkManager,
	documents usecase.DocumentStore,
	sessions usecase.SessionTracker,
	catalog usecase.CatalogService,
	crawler usecase.Crawler,
	batchSize int,
) *Handler {
	return &Handler{
		links:     links,
		documents: documents,
		sessions:  sessions,
		catalog:   catalog,
		crawler:   crawler,
		batchSize: batchSize,
	}
}

func (h *Handler) HandleUpsertLinks(w http.ResponseWriter, r *http.Request) {
	var req request.UpsertLinksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Links) == 0 {
		h.writeJSONError(w, "At least one link is required", http.StatusBadRequest)
		return
	}

	links := make([]entity.DiscoveredLink, 0, len(req.Links))
	for _, l := range req.Links {
		links = append(links, entity.DiscoveredLink{
			URL:                l.URL,
			Title:              l.Title,
			ReportedUpdateDate: extractor.ParseSiteDate(l.UpdatedOn),
		})
	}

	stats, err := h.links.UpsertLinks(r.Context(), links)
	if err != nil {
		slog.Error("Failed to upsert discovered links", "count", len(links), "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.UpsertLinksResponse{
		Inserted: stats.Inserted,
		Updated:  stats.Updated,
		Skipped:  stats.Skipped,
		Total:    stats.Total,
	})
}

func (h *Handler) HandleSubmitCrawl(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitCrawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := url.ParseRequestURI(req.URL); err != nil {
		h.writeJSONError(w, "Invalid URL format", http.StatusBadRequest)
		return
	}

	crawlID, err := h.links.Submit(r.Context(), req.URL, req.ForceCrawl)
	if err != nil {
		if errors.Is(err, usecase.ErrURLRecentlyCrawled) {
			h.writeJSONError(w, err.Error(), http.StatusConflict)
			return
		}
		slog.Error("Failed to submit URL", "url", req.URL, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusAccepted, response.SubmitCrawlResponse{
		Status:         "success",
		Message:        "URL submitted for crawling",
		CrawlRequestID: crawlID,
	})
}

func (h *Handler) HandleRunSession(w http.ResponseWriter, r *http.Request) {
	var req request.RunSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = h.batchSize
	}

	session, err := h.crawler.RunSession(r.Context(), limit)
	if err != nil {
		slog.Error("Crawl session failed to run", "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *Handler) HandleGetCrawlStatus(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		h.writeJSONError(w, "URL query parameter is required", http.StatusBadRequest)
		return
	}

	status, err := h.links.GetStatus(r.Context(), rawURL)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.writeJSONError(w, "Crawl status not found for the given URL", http.StatusNotFound)
			return
		}
		slog.Error("Failed to get crawl status", "url", rawURL, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.CrawlStatusResponse{
		URL:            status.URL,
		DocID:          status.DocID,
		Title:          status.Title,
		CurrentStatus:  string(status.Status),
		LastUpdateDate: status.LastUpdateDate,
		Priority:       status.Priority,
		RetryCount:     status.RetryCount,
		UpdatedAt:      status.UpdatedAt,
	})
}

func (h *Handler) HandleGetDocumentVersions(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		h.writeJSONError(w, "URL query parameter is required", http.StatusBadRequest)
		return
	}

	versions, err := h.documents.Versions(r.Context(), rawURL)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.writeJSONError(w, "No document found for the given URL", http.StatusNotFound)
			return
		}
		slog.Error("Failed to list document versions", "url", rawURL, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := response.DocumentVersionsResponse{
		URL:      rawURL,
		Versions: make([]response.DocumentVersionResponse, 0, len(versions)),
	}
	for _, v := range versions {
		resp.Versions = append(resp.Versions, response.DocumentVersionResponse{
			Version:     v.Version,
			ContentHash: v.ContentHash,
			ExtraData:   v.ExtraData,
			CreatedAt:   v.CreatedAt,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeJSONError(w, "Invalid session id", http.StatusBadRequest)
		return
	}

	session, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.writeJSONError(w, "Session not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to get session", "session_id", sessionID, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *Handler) HandleCatalogDedup(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.catalog.ResolveDuplicates(r.Context())
	if err != nil {
		slog.Error("Failed to deduplicate catalog", "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, response.DedupResponse{Deleted: deleted})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func toSessionResponse(s *entity.CrawlSession) response.SessionResponse {
	return response.SessionResponse{
		SessionID:      s.SessionID,
		Status:         string(s.Status),
		StartedAt:      s.StartedAt,
		CompletedAt:    s.CompletedAt,
		TotalItems:     s.TotalItems,
		NewItems:       s.NewItems,
		UpdatedItems:   s.UpdatedItems,
		UnchangedItems: s.UnchangedItems,
		FailedItems:    s.FailedItems,
		Notes:          s.Notes,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
