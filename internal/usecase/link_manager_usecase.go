package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/legaldoc-crawler/internal/entity"
	"github.com/user/legaldoc-crawler/internal/repository"
	"github.com/user/legaldoc-crawler/pkg/metrics"
	"github.com/user/legaldoc-crawler/pkg/utils"
)

var (
	ErrURLRecentlyCrawled = errors.New("URL has been fetched recently and force is false")
)

// LinkUpsertStats reports how a batch of discovered links was reconciled
// against the crawl_url table.
type LinkUpsertStats struct {
	Inserted int
	Updated  int
	Skipped  int
	Total    int
}

// LinkManager applies the two-tier re-crawl policy to discovered links and
// feeds the fetch queue.
type LinkManager interface {
	// UpsertLinks reconciles listing-page hits against the crawl_url table:
	// unknown URLs are inserted pending; completed URLs are re-queued only
	// when the site reports a strictly later update date; pending or failed
	// URLs are always refreshed and re-queued.
	UpsertLinks(ctx context.Context, links []entity.DiscoveredLink) (LinkUpsertStats, error)
	// Submit pushes a single URL onto the fetch queue, guarded by the
	// recently-fetched gate unless force is set.
	Submit(ctx context.Context, url string, force bool) (string, error)
	// NextPending returns up to limit pending URLs, highest priority first.
	NextPending(ctx context.Context, limit int) ([]*entity.CrawlURL, error)
	// GetStatus returns the crawl_url row for a URL.
	GetStatus(ctx context.Context, url string) (*entity.CrawlURL, error)
}

type linkManagerUseCase struct {
	urlRepo     repository.CrawlURLRepository
	visitedRepo repository.VisitedRepository
	queueRepo   repository.QueueRepository
	dedupWindow time.Duration
	maxRetries  int
}

// NewLinkManager creates a new LinkManager use case. dedupWindow is how long
// a fetched URL stays gated against re-submission; maxRetries caps how often
// a failed URL is re-queued by listing passes.
func NewLinkManager(
	urlRepo repository.CrawlURLRepository,
	visitedRepo repository.VisitedRepository,
	queueRepo repository.QueueRepository,
	dedupWindow time.Duration,
	maxRetries int,
) LinkManager {
	return &linkManagerUseCase{
		urlRepo:     urlRepo,
		visitedRepo: visitedRepo,
		queueRepo:   queueRepo,
		dedupWindow: dedupWindow,
		maxRetries:  maxRetries,
	}
}

func (uc *linkManagerUseCase) UpsertLinks(ctx context.Context, links []entity.DiscoveredLink) (LinkUpsertStats, error) {
	stats := LinkUpsertStats{Total: len(links)}

	for _, link := range links {
		if link.URL == "" {
			stats.Skipped++
			continue
		}

		existing, err := uc.urlRepo.FindByURL(ctx, link.URL)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			err := uc.urlRepo.Create(ctx, &entity.CrawlURL{
				URL:            link.URL,
				DocID:          utils.ExtractDocID(link.URL),
				Title:          link.Title,
				LastUpdateDate: link.ReportedUpdateDate,
				Status:         entity.StatusPending,
				Priority:       0,
			})
			if err != nil {
				return stats, fmt.Errorf("failed to insert discovered url %s: %w", link.URL, err)
			}
			stats.Inserted++

		case err != nil:
			return stats, fmt.Errorf("failed to look up url %s: %w", link.URL, err)

		case existing.Status == entity.StatusCompleted:
			// Date-gate: a completed document is only re-queued when the
			// site itself declares it newer. A missing date on either side
			// means skip, avoiding a fetch the source says is pointless.
			if link.ReportedUpdateDate != nil && existing.LastUpdateDate != nil &&
				link.ReportedUpdateDate.After(*existing.LastUpdateDate) {
				if err := uc.urlRepo.Requeue(ctx, link.URL, link.Title, link.ReportedUpdateDate, existing.Priority+1); err != nil {
					return stats, fmt.Errorf("failed to requeue url %s: %w", link.URL, err)
				}
				stats.Updated++
			} else {
				stats.Skipped++
			}

		case existing.Status == entity.StatusFailed && uc.maxRetries > 0 && existing.RetryCount >= uc.maxRetries:
			// The URL has burned through its retry budget; listing passes
			// stop resurrecting it.
			stats.Skipped++

		default:
			// Stale pending or failed entries are eligible again.
			if err := uc.urlRepo.Requeue(ctx, link.URL, link.Title, link.ReportedUpdateDate, existing.Priority); err != nil {
				return stats, fmt.Errorf("failed to refresh url %s: %w", link.URL, err)
			}
			stats.Updated++
		}
	}

	return stats, nil
}

func (uc *linkManagerUseCase) Submit(ctx context.Context, url string, force bool) (string, error) {
	crawlID := utils.HashURL(url)

	if force {
		if err := uc.visitedRepo.RemoveVisited(ctx, url); err != nil {
			slog.Warn("Failed to remove fetched gate for forced crawl", "url", url, "error", err)
		}
	} else {
		isVisited, err := uc.visitedRepo.IsVisited(ctx, url)
		if err != nil {
			return "", err
		}
		if isVisited {
			return crawlID, ErrURLRecentlyCrawled
		}
	}

	if _, err := uc.urlRepo.GetOrCreate(ctx, url); err != nil {
		return "", err
	}
	if err := uc.queueRepo.Push(ctx, url); err != nil {
		return "", err
	}
	if size, err := uc.queueRepo.Size(ctx); err == nil {
		metrics.URLsInQueue.Set(float64(size))
	}

	if err := uc.visitedRepo.MarkVisited(ctx, url, uc.dedupWindow); err != nil {
		// Non-critical: the URL is queued but might be queued again before
		// a worker picks it up.
		slog.Error("Failed to mark URL as fetched after queueing", "url", url, "error", err)
	}

	return crawlID, nil
}

func (uc *linkManagerUseCase) NextPending(ctx context.Context, limit int) ([]*entity.CrawlURL, error) {
	return uc.urlRepo.FindPending(ctx, limit)
}

func (uc *linkManagerUseCase) GetStatus(ctx context.Context, url string) (*entity.CrawlURL, error) {
	return uc.urlRepo.FindByURL(ctx, url)
}
