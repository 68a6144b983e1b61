package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/user/legaldoc-crawler/internal/entity"
	"github.com/user/legaldoc-crawler/internal/repository"
	"github.com/user/legaldoc-crawler/pkg/metrics"
)

// CatalogStats reports how a batch of extracted terms was persisted.
type CatalogStats struct {
	New     int
	Updated int
}

// CatalogService persists glossary terms with a URL upsert guard and cleans
// up the duplicate rows that historic guard-less crawls produced.
type CatalogService interface {
	// SaveTerms stores a batch of terms: a URL seen before updates the
	// existing row, a new URL inserts one.
	SaveTerms(ctx context.Context, sessionID int64, terms []entity.Term) (CatalogStats, error)
	// FindDuplicateURLs groups entries by URL and returns only the groups
	// with more than one member, each group ordered by created_at.
	FindDuplicateURLs(ctx context.Context) (map[string][]*entity.CatalogEntry, error)
	// ResolveDuplicates keeps the earliest-created entry of every duplicate
	// group and deletes the rest, one transaction per group. Returns how
	// many rows were deleted.
	ResolveDuplicates(ctx context.Context) (int, error)
}

type catalogServiceUseCase struct {
	catalogRepo repository.CatalogRepository
}

// NewCatalogService creates a new CatalogService use case.
func NewCatalogService(catalogRepo repository.CatalogRepository) CatalogService {
	return &catalogServiceUseCase{catalogRepo: catalogRepo}
}

func (uc *catalogServiceUseCase) SaveTerms(ctx context.Context, sessionID int64, terms []entity.Term) (CatalogStats, error) {
	var stats CatalogStats

	for _, term := range terms {
		if term.URL == "" || term.Name == "" {
			continue
		}

		existing, err := uc.catalogRepo.FindByURL(ctx, term.URL)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			entry := &entity.CatalogEntry{
				Name:          term.Name,
				Definition:    term.Definition,
				URL:           term.URL,
				SourceSession: sessionID,
			}
			if err := uc.catalogRepo.Insert(ctx, entry); err != nil {
				return stats, fmt.Errorf("failed to insert term %q: %w", term.Name, err)
			}
			stats.New++

		case err != nil:
			return stats, fmt.Errorf("failed to look up term url %s: %w", term.URL, err)

		default:
			existing.Name = term.Name
			existing.Definition = term.Definition
			if err := uc.catalogRepo.Update(ctx, existing); err != nil {
				return stats, fmt.Errorf("failed to update term %q: %w", term.Name, err)
			}
			stats.Updated++
		}
	}

	return stats, nil
}

func (uc *catalogServiceUseCase) FindDuplicateURLs(ctx context.Context) (map[string][]*entity.CatalogEntry, error) {
	entries, err := uc.catalogRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]*entity.CatalogEntry)
	for _, e := range entries {
		groups[e.URL] = append(groups[e.URL], e)
	}
	for url, group := range groups {
		if len(group) < 2 {
			delete(groups, url)
		}
	}
	return groups, nil
}

func (uc *catalogServiceUseCase) ResolveDuplicates(ctx context.Context) (int, error) {
	duplicates, err := uc.FindDuplicateURLs(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for url, group := range duplicates {
		// Keep the earliest-crawled row: it is the closest to the original
		// catalog entry, later rows are re-crawl artifacts.
		sort.Slice(group, func(i, j int) bool {
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})

		losers := make([]int64, 0, len(group)-1)
		for _, e := range group[1:] {
			losers = append(losers, e.TermID)
		}
		if err := uc.catalogRepo.DeleteGroup(ctx, losers); err != nil {
			return deleted, fmt.Errorf("failed to deduplicate url %s: %w", url, err)
		}
		deleted += len(losers)
		metrics.DuplicatesDeleted.Add(float64(len(losers)))
	}

	if deleted > 0 {
		if err := uc.catalogRepo.CompactSequence(ctx); err != nil {
			slog.Warn("Failed to compact catalog id sequence after dedup", "error", err)
		}
		slog.Info("Removed duplicate catalog entries", "deleted", deleted, "groups", len(duplicates))
	}
	return deleted, nil
}
