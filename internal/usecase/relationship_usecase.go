package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/legaldoc-crawler/internal/repository"
	"github.com/user/legaldoc-crawler/pkg/metrics"
)

var (
	ErrEmptyEdge = errors.New("relationship target url and type must not be empty")
)

const backfillBatchSize = 500

// RelationshipResolver records directed edges between documents and
// backfills target references once the target document has been crawled.
type RelationshipResolver interface {
	// RecordEdge stores an edge from a document version to a target URL.
	// Recording the same triple twice is a no-op, not an error.
	RecordEdge(ctx context.Context, sourceDocID int64, targetURL, relType string) error
	// BackfillUnresolved scans edges whose target reference is still nil
	// and fills it from the target's current document version. Edges whose
	// target is still unknown stay unresolved for the next pass. Repeated
	// calls are idempotent. Returns the number of edges resolved.
	BackfillUnresolved(ctx context.Context) (int, error)
}

type relationshipResolverUseCase struct {
	relRepo     repository.RelationshipRepository
	urlRepo     repository.CrawlURLRepository
	versionRepo repository.DocumentVersionRepository
}

// NewRelationshipResolver creates a new RelationshipResolver use case.
func NewRelationshipResolver(
	relRepo repository.RelationshipRepository,
	urlRepo repository.CrawlURLRepository,
	versionRepo repository.DocumentVersionRepository,
) RelationshipResolver {
	return &relationshipResolverUseCase{
		relRepo:     relRepo,
		urlRepo:     urlRepo,
		versionRepo: versionRepo,
	}
}

func (uc *relationshipResolverUseCase) RecordEdge(ctx context.Context, sourceDocID int64, targetURL, relType string) error {
	if targetURL == "" || relType == "" {
		return ErrEmptyEdge
	}
	return uc.relRepo.RecordEdge(ctx, sourceDocID, targetURL, relType)
}

func (uc *relationshipResolverUseCase) BackfillUnresolved(ctx context.Context) (int, error) {
	resolved := 0
	afterID := int64(0)

	for {
		edges, err := uc.relRepo.FindUnresolved(ctx, afterID, backfillBatchSize)
		if err != nil {
			return resolved, fmt.Errorf("failed to scan unresolved edges: %w", err)
		}
		if len(edges) == 0 {
			return resolved, nil
		}

		for _, edge := range edges {
			afterID = edge.ID

			crawlURL, err := uc.urlRepo.FindByURL(ctx, edge.TargetDocURL)
			if errors.Is(err, repository.ErrNotFound) {
				continue // target not discovered yet, retried next pass
			}
			if err != nil {
				return resolved, err
			}

			latest, err := uc.versionRepo.Latest(ctx, crawlURL.ID)
			if errors.Is(err, repository.ErrNotFound) {
				continue // target discovered but not versioned yet
			}
			if err != nil {
				return resolved, err
			}

			if err := uc.relRepo.Resolve(ctx, edge.ID, latest.ID); err != nil {
				return resolved, fmt.Errorf("failed to resolve edge %d: %w", edge.ID, err)
			}
			resolved++
			metrics.EdgesResolvedTotal.Inc()
		}

		if len(edges) < backfillBatchSize {
			return resolved, nil
		}
	}
}
