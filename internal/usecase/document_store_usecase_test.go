package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/user/legaldoc-crawler/internal/adapter/memory"
	"github.com/user/legaldoc-crawler/internal/repository"
	"github.com/user/legaldoc-crawler/internal/usecase"
)

func newDocumentStore() (usecase.DocumentStore, *memory.CrawlURLRepo) {
	urlRepo := memory.NewCrawlURLRepo()
	return usecase.NewDocumentStore(urlRepo, memory.NewDocumentVersionRepo()), urlRepo
}

func TestUpsertNewDocument(t *testing.T) {
	store, _ := newDocumentStore()
	ctx := context.Background()

	result, err := store.Upsert(ctx, "https://example.com/van-ban-1.aspx", map[string]any{"title": "Decree 1"})
	require.NoError(t, err)
	require.True(t, result.Created)
	require.Equal(t, 1, result.Version)
	require.NotZero(t, result.VersionID)
}

func TestUpsertUnchangedContentIsNoOp(t *testing.T) {
	store, _ := newDocumentStore()
	ctx := context.Background()
	fields := map[string]any{"title": "Decree 1", "status": "in force"}

	first, err := store.Upsert(ctx, "https://example.com/van-ban-1.aspx", fields)
	require.NoError(t, err)
	require.True(t, first.Created)

	second, err := store.Upsert(ctx, "https://example.com/van-ban-1.aspx", fields)
	require.NoError(t, err)
	require.False(t, second.Created)
	require.Equal(t, 1, second.Version)
	require.Equal(t, first.VersionID, second.VersionID)

	versions, err := store.Versions(ctx, "https://example.com/van-ban-1.aspx")
	require.NoError(t, err)
	require.Len(t, versions, 1)
}

func TestUpsertVersionNumbersAreMonotonic(t *testing.T) {
	store, _ := newDocumentStore()
	ctx := context.Background()
	url := "https://example.com/van-ban-2.aspx"

	for i, status := range []string{"draft", "in force", "expired"} {
		result, err := store.Upsert(ctx, url, map[string]any{"title": "Decree 2", "status": status})
		require.NoError(t, err)
		require.True(t, result.Created)
		require.Equal(t, i+1, result.Version)
	}

	versions, err := store.Versions(ctx, url)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	for i, v := range versions {
		require.Equal(t, i+1, v.Version)
	}
	// Every version keeps the fields it was created from.
	require.Equal(t, "draft", versions[0].ExtraData["status"])
	require.Equal(t, "expired", versions[2].ExtraData["status"])
}

func TestUpsertEmptyURL(t *testing.T) {
	store, _ := newDocumentStore()

	_, err := store.Upsert(context.Background(), "", map[string]any{"title": "x"})
	require.ErrorIs(t, err, usecase.ErrEmptyURL)

	_, err = store.Versions(context.Background(), "")
	require.ErrorIs(t, err, usecase.ErrEmptyURL)
}

func TestUpsertUnserializableFieldsWriteNothing(t *testing.T) {
	store, urlRepo := newDocumentStore()
	ctx := context.Background()

	_, err := store.Upsert(ctx, "https://example.com/van-ban-3.aspx", map[string]any{"bad": make(chan int)})
	require.Error(t, err)

	// The validation failure happened before any row was touched.
	_, err = urlRepo.FindByURL(ctx, "https://example.com/van-ban-3.aspx")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpsertConcurrentSameContent(t *testing.T) {
	store, _ := newDocumentStore()
	ctx := context.Background()
	url := "https://example.com/van-ban-4.aspx"
	fields := map[string]any{"title": "Decree 4"}

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Upsert(ctx, url, fields)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	versions, err := store.Versions(ctx, url)
	require.NoError(t, err)
	require.Len(t, versions, 1)
}

func TestVersionsUnknownURL(t *testing.T) {
	store, _ := newDocumentStore()
	_, err := store.Versions(context.Background(), "https://example.com/unknown.aspx")
	require.ErrorIs(t, err, repository.ErrNotFound)
}
