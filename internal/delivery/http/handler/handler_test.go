package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/user/legaldoc-crawler/internal/adapter/memory"
	"github.com/user/legaldoc-crawler/internal/delivery/http/handler"
	"github.com/user/legaldoc-crawler/internal/delivery/http/router"
	"github.com/user/legaldoc-crawler/internal/entity"
	"github.com/user/legaldoc-crawler/internal/usecase"
	"github.com/user/legaldoc-crawler/pkg/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

type stubVisited struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (v *stubVisited) MarkVisited(ctx context.Context, url string, expiry time.Duration) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seen[url] = true
	return nil
}

func (v *stubVisited) IsVisited(ctx context.Context, url string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.seen[url], nil
}

func (v *stubVisited) RemoveVisited(ctx context.Context, url string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.seen, url)
	return nil
}

type stubQueue struct {
	mu    sync.Mutex
	items []string
}

func (q *stubQueue) Push(ctx context.Context, url string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, url)
	return nil
}

func (q *stubQueue) Pop(ctx context.Context) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return "", nil
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head, nil
}

func (q *stubQueue) Size(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.items)), nil
}

type failFetcher struct{}

func (failFetcher) Fetch(ctx context.Context, url string) (string, error) {
	return "", errors.New("no browser in tests")
}

type failExtractor struct{}

func (failExtractor) Extract(url, html string) (*entity.DocumentSnapshot, error) {
	return nil, errors.New("no content in tests")
}

type fixture struct {
	server    http.Handler
	urlRepo   *memory.CrawlURLRepo
	documents usecase.DocumentStore
	sessions  usecase.SessionTracker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	urlRepo := memory.NewCrawlURLRepo()
	versionRepo := memory.NewDocumentVersionRepo()
	relRepo := memory.NewRelationshipRepo()
	catRepo := memory.NewCatalogRepo()
	sessionRepo := memory.NewSessionRepo()

	queue := &stubQueue{}
	sessions := usecase.NewSessionTracker(sessionRepo)
	links := usecase.NewLinkManager(urlRepo, &stubVisited{seen: make(map[string]bool)}, queue, 48*time.Hour, 3)
	documents := usecase.NewDocumentStore(urlRepo, versionRepo)
	relationships := usecase.NewRelationshipResolver(relRepo, urlRepo, versionRepo)
	catalog := usecase.NewCatalogService(catRepo)
	crawler := usecase.NewCrawler(sessions, links, documents, relationships, catalog,
		urlRepo, queue, failFetcher{}, failExtractor{}, 1)

	h := handler.NewHandler(links, documents, sessions, catalog, crawler, 50)
	return &fixture{
		server:    router.New(h),
		urlRepo:   urlRepo,
		documents: documents,
		sessions:  sessions,
	}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUpsertLinksEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/links", `{
		"links": [
			{"url": "https://example.com/van-ban-1.aspx", "title": "Decree 1", "updated_on": "05/01/2024"},
			{"url": "https://example.com/van-ban-2.aspx", "title": "Decree 2"}
		]
	}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"inserted":2,"updated":0,"skipped":0,"total":2}`, rec.Body.String())

	u, err := f.urlRepo.FindByURL(context.Background(), "https://example.com/van-ban-1.aspx")
	require.NoError(t, err)
	require.NotNil(t, u.LastUpdateDate)
	require.Equal(t, entity.StatusPending, u.Status)
}

func TestUpsertLinksEndpointRejectsEmptyBatch(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/links", `{"links": []}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitCrawlEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/crawl", `{"url": "https://example.com/van-ban-3.aspx"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Contains(t, rec.Body.String(), "crawl_request_id")

	// Second submit within the window conflicts.
	rec = f.do(t, http.MethodPost, "/api/crawl", `{"url": "https://example.com/van-ban-3.aspx"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/crawl", `{"url": ""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCrawlStatusEndpoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.urlRepo.Create(ctx, &entity.CrawlURL{
		URL:    "https://example.com/van-ban-4.aspx",
		Title:  "Decree 4",
		Status: entity.StatusCompleted,
	}))

	rec := f.do(t, http.MethodGet, "/api/status?url=https://example.com/van-ban-4.aspx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"current_status":"completed"`)

	rec = f.do(t, http.MethodGet, "/api/status?url=https://example.com/unknown.aspx", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentVersionsEndpoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	url := "https://example.com/van-ban-5.aspx"

	_, err := f.documents.Upsert(ctx, url, map[string]any{"title": "Decree 5", "status": "draft"})
	require.NoError(t, err)
	_, err = f.documents.Upsert(ctx, url, map[string]any{"title": "Decree 5", "status": "in force"})
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/api/documents/versions?url="+url, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"version":1`)
	require.Contains(t, rec.Body.String(), `"version":2`)

	rec = f.do(t, http.MethodGet, "/api/documents/versions?url=https://example.com/none.aspx", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionEndpoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.sessions.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, f.sessions.RecordOutcome(ctx, id, entity.OutcomeNew))
	require.NoError(t, f.sessions.Complete(ctx, id, "done"))

	rec := f.do(t, http.MethodGet, "/api/sessions/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"COMPLETED"`)
	require.Contains(t, rec.Body.String(), `"new_items":1`)

	rec = f.do(t, http.MethodGet, "/api/sessions/999", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/sessions/abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogDedupEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/catalog/dedup", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"deleted":0}`, rec.Body.String())
}

func TestMetricsUseRoutePatternLabels(t *testing.T) {
	f := newFixture(t)

	// Two different session ids must land in the same metric series.
	f.do(t, http.MethodGet, "/api/sessions/123", "")
	f.do(t, http.MethodGet, "/api/sessions/456", "")

	rec := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `path="GET /api/sessions/{id}"`)
	require.NotContains(t, body, `path="/api/sessions/123"`)
	require.NotContains(t, body, `path="/api/sessions/456"`)
}

func TestRunSessionEndpointEmptyBacklog(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/crawl/run", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"COMPLETED"`)
	require.Contains(t, rec.Body.String(), `"total_items":0`)
}
