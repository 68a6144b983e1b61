package usecase_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/user/legaldoc-crawler/internal/adapter/memory"
	"github.com/user/legaldoc-crawler/internal/entity"
	"github.com/user/legaldoc-crawler/internal/usecase"
)

type stubFetcher struct {
	pages map[string]string
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	html, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("connection refused fetching %s", url)
	}
	return html, nil
}

type stubExtractor struct {
	snaps map[string]*entity.DocumentSnapshot
}

func (e *stubExtractor) Extract(url, html string) (*entity.DocumentSnapshot, error) {
	snap, ok := e.snaps[url]
	if !ok {
		return nil, fmt.Errorf("no extractable content at %s", url)
	}
	return snap, nil
}

type crawlerFixture struct {
	crawler  usecase.Crawler
	links    usecase.LinkManager
	urlRepo  *memory.CrawlURLRepo
	relRepo  *memory.RelationshipRepo
	catRepo  *memory.CatalogRepo
	queue    *fakeQueue
	store    usecase.DocumentStore
	fetcher  *stubFetcher
	extract  *stubExtractor
	sessions usecase.SessionTracker
}

func newCrawlerFixture(workers int) *crawlerFixture {
	urlRepo := memory.NewCrawlURLRepo()
	versionRepo := memory.NewDocumentVersionRepo()
	relRepo := memory.NewRelationshipRepo()
	catRepo := memory.NewCatalogRepo()
	queue := &fakeQueue{}

	sessions := usecase.NewSessionTracker(memory.NewSessionRepo())
	links := usecase.NewLinkManager(urlRepo, newFakeVisited(), queue, 48*time.Hour, 3)
	documents := usecase.NewDocumentStore(urlRepo, versionRepo)
	relationships := usecase.NewRelationshipResolver(relRepo, urlRepo, versionRepo)
	catalog := usecase.NewCatalogService(catRepo)

	fetcher := &stubFetcher{pages: make(map[string]string)}
	extract := &stubExtractor{snaps: make(map[string]*entity.DocumentSnapshot)}

	return &crawlerFixture{
		crawler: usecase.NewCrawler(sessions, links, documents, relationships, catalog,
			urlRepo, queue, fetcher, extract, workers),
		links:    links,
		urlRepo:  urlRepo,
		relRepo:  relRepo,
		catRepo:  catRepo,
		queue:    queue,
		store:    documents,
		fetcher:  fetcher,
		extract:  extract,
		sessions: sessions,
	}
}

func (f *crawlerFixture) addPage(t *testing.T, url string, snap *entity.DocumentSnapshot) {
	t.Helper()
	require.NoError(t, f.urlRepo.Create(context.Background(), &entity.CrawlURL{
		URL:    url,
		Status: entity.StatusPending,
	}))
	f.fetcher.pages[url] = "<html></html>"
	f.extract.snaps[url] = snap
}

func TestRunSessionOutcomes(t *testing.T) {
	f := newCrawlerFixture(2)
	ctx := context.Background()

	urlA := "https://example.com/van-ban-1.aspx"
	urlB := "https://example.com/van-ban-2.aspx"
	urlC := "https://example.com/van-ban-3.aspx"

	f.addPage(t, urlA, &entity.DocumentSnapshot{
		URL:    urlA,
		Fields: map[string]any{"title": "Decree 1", "status": "in force"},
		Relations: []entity.ExtractedRelation{
			{TargetURL: urlB, TargetTitle: "Decree 2", Type: "amended_by"},
		},
		Terms: []entity.Term{
			{Name: "Force majeure", Definition: "An unforeseeable event.", URL: "https://example.com/thuat-ngu-1.aspx"},
		},
	})
	f.addPage(t, urlB, &entity.DocumentSnapshot{
		URL:    urlB,
		Fields: map[string]any{"title": "Decree 2"},
	})

	// urlC has a crawl_url row but no page behind it, so the fetch fails.
	require.NoError(t, f.urlRepo.Create(ctx, &entity.CrawlURL{URL: urlC, Status: entity.StatusPending}))

	session, err := f.crawler.RunSession(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, entity.SessionCompleted, session.Status)
	require.Equal(t, 3, session.TotalItems)
	require.Equal(t, 2, session.NewItems)
	require.Equal(t, 1, session.FailedItems)
	require.Equal(t, 0, session.UpdatedItems)
	require.Equal(t, 0, session.UnchangedItems)

	done, err := f.urlRepo.FindByURL(ctx, urlA)
	require.NoError(t, err)
	require.Equal(t, entity.StatusCompleted, done.Status)

	failed, err := f.urlRepo.FindByURL(ctx, urlC)
	require.NoError(t, err)
	require.Equal(t, entity.StatusFailed, failed.Status)
	require.Equal(t, 1, failed.RetryCount)

	// The edge to urlB is already backfilled because urlB was crawled in the
	// same session.
	edges := f.relRepo.All()
	require.Len(t, edges, 1)
	require.Equal(t, urlB, edges[0].TargetDocURL)
	require.NotNil(t, edges[0].TargetDocID)

	terms, err := f.catRepo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, terms, 1)
	require.Equal(t, "Force majeure", terms[0].Name)
	require.Equal(t, session.SessionID, terms[0].SourceSession)
}

func TestRunSessionUpdatedAndUnchanged(t *testing.T) {
	f := newCrawlerFixture(1)
	ctx := context.Background()

	urlA := "https://example.com/van-ban-10.aspx"
	urlB := "https://example.com/van-ban-11.aspx"
	f.addPage(t, urlA, &entity.DocumentSnapshot{URL: urlA, Fields: map[string]any{"title": "Decree 10", "status": "draft"}})
	f.addPage(t, urlB, &entity.DocumentSnapshot{URL: urlB, Fields: map[string]any{"title": "Decree 11"}})

	_, err := f.crawler.RunSession(ctx, 10)
	require.NoError(t, err)

	// The next listing pass re-queues both, but only urlA actually changed.
	require.NoError(t, f.urlRepo.Requeue(ctx, urlA, "Decree 10", nil, 0))
	require.NoError(t, f.urlRepo.Requeue(ctx, urlB, "Decree 11", nil, 0))
	f.extract.snaps[urlA] = &entity.DocumentSnapshot{URL: urlA, Fields: map[string]any{"title": "Decree 10", "status": "in force"}}

	session, err := f.crawler.RunSession(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 2, session.TotalItems)
	require.Equal(t, 1, session.UpdatedItems)
	require.Equal(t, 1, session.UnchangedItems)

	versions, err := f.store.Versions(ctx, urlA)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	require.Equal(t, "in force", versions[1].ExtraData["status"])

	versions, err = f.store.Versions(ctx, urlB)
	require.NoError(t, err)
	require.Len(t, versions, 1)
}

func TestRunSessionExtractFailureCountsAsFailed(t *testing.T) {
	f := newCrawlerFixture(1)
	ctx := context.Background()

	url := "https://example.com/van-ban-20.aspx"
	require.NoError(t, f.urlRepo.Create(ctx, &entity.CrawlURL{URL: url, Status: entity.StatusPending}))
	f.fetcher.pages[url] = "<html>garbage</html>"
	// No extractor snapshot registered, so extraction fails.

	session, err := f.crawler.RunSession(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, session.FailedItems)
	require.Equal(t, 1, session.TotalItems)
}

func TestRunSessionEmptyBacklog(t *testing.T) {
	f := newCrawlerFixture(4)

	session, err := f.crawler.RunSession(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, entity.SessionCompleted, session.Status)
	require.Equal(t, 0, session.TotalItems)
}

func TestRunSessionDrainsSubmittedQueue(t *testing.T) {
	f := newCrawlerFixture(2)
	ctx := context.Background()

	// queued is in the fetch queue AND the pending backlog; it must be
	// processed exactly once.
	queued := "https://example.com/van-ban-40.aspx"
	f.addPage(t, queued, &entity.DocumentSnapshot{URL: queued, Fields: map[string]any{"title": "Decree 40"}})
	_, err := f.links.Submit(ctx, queued, false)
	require.NoError(t, err)

	// submitted has no pending row until Submit creates one; it reaches the
	// session only through the queue.
	submitted := "https://example.com/van-ban-41.aspx"
	f.fetcher.pages[submitted] = "<html></html>"
	f.extract.snaps[submitted] = &entity.DocumentSnapshot{URL: submitted, Fields: map[string]any{"title": "Decree 41"}}
	_, err = f.links.Submit(ctx, submitted, false)
	require.NoError(t, err)

	session, err := f.crawler.RunSession(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 2, session.TotalItems)
	require.Equal(t, 2, session.NewItems)

	size, err := f.queue.Size(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, size)

	done, err := f.urlRepo.FindByURL(ctx, submitted)
	require.NoError(t, err)
	require.Equal(t, entity.StatusCompleted, done.Status)
}

func TestRunSessionQueueFillsAheadOfBacklog(t *testing.T) {
	f := newCrawlerFixture(1)
	ctx := context.Background()

	backlog := "https://example.com/van-ban-45.aspx"
	f.addPage(t, backlog, &entity.DocumentSnapshot{URL: backlog, Fields: map[string]any{"title": "Decree 45"}})

	direct := "https://example.com/van-ban-46.aspx"
	f.fetcher.pages[direct] = "<html></html>"
	f.extract.snaps[direct] = &entity.DocumentSnapshot{URL: direct, Fields: map[string]any{"title": "Decree 46"}}
	_, err := f.links.Submit(ctx, direct, false)
	require.NoError(t, err)

	// With room for only one item, the directly submitted URL wins.
	session, err := f.crawler.RunSession(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, session.TotalItems)

	processed, err := f.urlRepo.FindByURL(ctx, direct)
	require.NoError(t, err)
	require.Equal(t, entity.StatusCompleted, processed.Status)

	waiting, err := f.urlRepo.FindByURL(ctx, backlog)
	require.NoError(t, err)
	require.Equal(t, entity.StatusPending, waiting.Status)
}

func TestRunSessionHonorsLimit(t *testing.T) {
	f := newCrawlerFixture(2)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		url := fmt.Sprintf("https://example.com/van-ban-%d.aspx", 30+i)
		f.addPage(t, url, &entity.DocumentSnapshot{URL: url, Fields: map[string]any{"title": fmt.Sprintf("Decree %d", 30+i)}})
	}

	session, err := f.crawler.RunSession(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 3, session.TotalItems)

	pending, err := f.urlRepo.FindPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
}
