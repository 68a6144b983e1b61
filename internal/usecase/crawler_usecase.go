package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/user/legaldoc-crawler/internal/entity"
	"github.com/user/legaldoc-crawler/internal/repository"
	"github.com/user/legaldoc-crawler/pkg/metrics"
)

// Crawler drives one full crawl session: it drains the pending URL set
// through a worker pool, versions each fetched document, records its
// relations and terms, and closes the session with outcome counters.
type Crawler interface {
	RunSession(ctx context.Context, limit int) (*entity.CrawlSession, error)
}

type crawlerUseCase struct {
	sessions      SessionTracker
	links         LinkManager
	documents     DocumentStore
	relationships RelationshipResolver
	catalog       CatalogService
	urlRepo       repository.CrawlURLRepository
	queueRepo     repository.QueueRepository
	fetcher       repository.PageFetcher
	extractor     repository.DocumentExtractor
	workers       int
}

// NewCrawler creates a new Crawler use case.
func NewCrawler(
	sessions SessionTracker,
	links LinkManager,
	documents DocumentStore,
	relationships RelationshipResolver,
	catalog CatalogService,
	urlRepo repository.CrawlURLRepository,
	queueRepo repository.QueueRepository,
	fetcher repository.PageFetcher,
	extractor repository.DocumentExtractor,
	workers int,
) Crawler {
	if workers < 1 {
		workers = 1
	}
	return &crawlerUseCase{
		sessions:      sessions,
		links:         links,
		documents:     documents,
		relationships: relationships,
		catalog:       catalog,
		urlRepo:       urlRepo,
		queueRepo:     queueRepo,
		fetcher:       fetcher,
		extractor:     extractor,
		workers:       workers,
	}
}

func (uc *crawlerUseCase) RunSession(ctx context.Context, limit int) (*entity.CrawlSession, error) {
	sessionID, err := uc.sessions.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start crawl session: %w", err)
	}

	batch, err := uc.collectBatch(ctx, limit)
	if err != nil {
		_ = uc.sessions.Fail(ctx, sessionID, fmt.Sprintf("could not load pending urls: %v", err))
		return nil, err
	}

	jobs := make(chan *entity.CrawlURL)
	var wg sync.WaitGroup

	for i := 0; i < uc.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				uc.processItem(ctx, sessionID, item)
			}
		}()
	}

	for _, item := range batch {
		select {
		case jobs <- item:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		_ = uc.sessions.Fail(ctx, sessionID, fmt.Sprintf("session interrupted: %v", err))
		return uc.sessions.Get(context.WithoutCancel(ctx), sessionID)
	}

	backfilled, err := uc.relationships.BackfillUnresolved(ctx)
	if err != nil {
		slog.Warn("Relationship backfill did not finish", "session_id", sessionID, "error", err)
	}

	notes := fmt.Sprintf("processed %d urls, backfilled %d relationship targets", len(batch), backfilled)
	if err := uc.sessions.Complete(ctx, sessionID, notes); err != nil {
		return nil, err
	}

	return uc.sessions.Get(ctx, sessionID)
}

// collectBatch builds the session's work list: directly submitted URLs are
// drained from the fetch queue first, then the pending backlog fills the
// remaining slots. A URL appearing in both places is processed once.
func (uc *crawlerUseCase) collectBatch(ctx context.Context, limit int) ([]*entity.CrawlURL, error) {
	seen := make(map[string]struct{}, limit)
	batch := make([]*entity.CrawlURL, 0, limit)

	for len(batch) < limit {
		url, err := uc.queueRepo.Pop(ctx)
		if err != nil {
			slog.Warn("Failed to pop fetch queue, falling back to pending backlog", "error", err)
			break
		}
		if url == "" {
			break
		}
		if _, dup := seen[url]; dup {
			continue
		}
		item, err := uc.urlRepo.GetOrCreate(ctx, url)
		if err != nil {
			slog.Warn("Failed to resolve queued URL", "url", url, "error", err)
			continue
		}
		seen[url] = struct{}{}
		batch = append(batch, item)
	}

	if size, err := uc.queueRepo.Size(ctx); err == nil {
		metrics.URLsInQueue.Set(float64(size))
	}

	if len(batch) < limit {
		pending, err := uc.links.NextPending(ctx, limit-len(batch))
		if err != nil {
			return nil, err
		}
		for _, item := range pending {
			if _, dup := seen[item.URL]; dup {
				continue
			}
			seen[item.URL] = struct{}{}
			batch = append(batch, item)
		}
	}

	return batch, nil
}

// processItem runs the fetch -> extract -> version -> relations pipeline for
// one URL and books exactly one outcome on the session.
func (uc *crawlerUseCase) processItem(ctx context.Context, sessionID int64, item *entity.CrawlURL) {
	start := time.Now()

	html, err := uc.fetcher.Fetch(ctx, item.URL)
	metrics.FetchDuration.WithLabelValues(hostOf(item.URL)).Observe(time.Since(start).Seconds())
	if err != nil {
		uc.failItem(ctx, sessionID, item.URL, "fetch", err)
		return
	}

	snapshot, err := uc.extractor.Extract(item.URL, html)
	if err != nil {
		uc.failItem(ctx, sessionID, item.URL, "extract", err)
		return
	}

	result, err := uc.documents.Upsert(ctx, item.URL, snapshot.Fields)
	if err != nil {
		uc.failItem(ctx, sessionID, item.URL, "upsert", err)
		return
	}

	if err := uc.urlRepo.SetStatus(ctx, item.URL, entity.StatusCrawled); err != nil {
		slog.Warn("Failed to mark URL crawled", "url", item.URL, "error", err)
	}

	for _, rel := range snapshot.Relations {
		if err := uc.relationships.RecordEdge(ctx, result.VersionID, rel.TargetURL, rel.Type); err != nil {
			slog.Warn("Failed to record relationship edge",
				"url", item.URL, "target", rel.TargetURL, "type", rel.Type, "error", err)
		}
	}

	if len(snapshot.Terms) > 0 {
		if _, err := uc.catalog.SaveTerms(ctx, sessionID, snapshot.Terms); err != nil {
			slog.Warn("Failed to save glossary terms", "url", item.URL, "error", err)
		}
	}

	if err := uc.urlRepo.SetStatus(ctx, item.URL, entity.StatusCompleted); err != nil {
		slog.Warn("Failed to mark URL completed", "url", item.URL, "error", err)
	}

	outcome := entity.OutcomeUnchanged
	if result.Created {
		if result.Version == 1 {
			outcome = entity.OutcomeNew
		} else {
			outcome = entity.OutcomeUpdated
		}
	}
	uc.bookOutcome(ctx, sessionID, item.URL, outcome)

	slog.Info("Processed document",
		"url", item.URL, "outcome", string(outcome), "version", result.Version,
		"relations", len(snapshot.Relations), "duration", time.Since(start).String())
}

func (uc *crawlerUseCase) failItem(ctx context.Context, sessionID int64, url, stage string, cause error) {
	slog.Error("Failed to process document", "url", url, "stage", stage, "error", cause)
	if err := uc.urlRepo.MarkFailed(ctx, url); err != nil {
		slog.Warn("Failed to mark URL failed", "url", url, "error", err)
	}
	uc.bookOutcome(ctx, sessionID, url, entity.OutcomeFailed)
}

func (uc *crawlerUseCase) bookOutcome(ctx context.Context, sessionID int64, url string, outcome entity.Outcome) {
	if err := uc.sessions.RecordOutcome(ctx, sessionID, outcome); err != nil {
		slog.Warn("Failed to record session outcome", "session_id", sessionID, "url", url, "error", err)
	}
	metrics.DocumentsTotal.WithLabelValues(string(outcome)).Inc()
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
