package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/legaldoc-crawler/internal/entity"
	"github.com/user/legaldoc-crawler/internal/repository"
	"github.com/user/legaldoc-crawler/pkg/fingerprint"
)

var (
	ErrEmptyURL = errors.New("document url must not be empty")
)

// DocumentStore decides, for each observed document snapshot, whether to
// append a new version to its chain or skip it as unchanged.
type DocumentStore interface {
	// Upsert fingerprints the fields and appends a new version only when
	// the hash differs from the latest stored version (or none exists).
	// Calling it twice with the same fields writes exactly one row; the
	// whole call is idempotent and safe to retry.
	Upsert(ctx context.Context, url string, fields map[string]any) (entity.UpsertResult, error)
	// Versions returns the full version chain for a URL, oldest first.
	Versions(ctx context.Context, url string) ([]*entity.DocumentVersion, error)
}

type documentStoreUseCase struct {
	urlRepo     repository.CrawlURLRepository
	versionRepo repository.DocumentVersionRepository
}

// NewDocumentStore creates a new DocumentStore use case.
func NewDocumentStore(urlRepo repository.CrawlURLRepository, versionRepo repository.DocumentVersionRepository) DocumentStore {
	return &documentStoreUseCase{
		urlRepo:     urlRepo,
		versionRepo: versionRepo,
	}
}

func (uc *documentStoreUseCase) Upsert(ctx context.Context, url string, fields map[string]any) (entity.UpsertResult, error) {
	if url == "" {
		return entity.UpsertResult{}, ErrEmptyURL
	}

	// Fingerprint first: a validation failure must happen before any write.
	hash, err := fingerprint.New(fields)
	if err != nil {
		return entity.UpsertResult{}, err
	}

	crawlURL, err := uc.urlRepo.GetOrCreate(ctx, url)
	if err != nil {
		return entity.UpsertResult{}, fmt.Errorf("failed to resolve crawl_url for %s: %w", url, err)
	}

	version, created, err := uc.versionRepo.AppendIfChanged(ctx, crawlURL.ID, hash, fields)
	if err != nil {
		return entity.UpsertResult{}, fmt.Errorf("failed to append version for %s: %w", url, err)
	}

	return entity.UpsertResult{
		Created:   created,
		Version:   version.Version,
		VersionID: version.ID,
	}, nil
}

func (uc *documentStoreUseCase) Versions(ctx context.Context, url string) ([]*entity.DocumentVersion, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}
	crawlURL, err := uc.urlRepo.FindByURL(ctx, url)
	if err != nil {
		return nil, err
	}
	return uc.versionRepo.ListByDocURL(ctx, crawlURL.ID)
}
