package chromedp_fetcher

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromedpFetcher implements the PageFetcher interface with a headless
// browser. The target site renders document tabs client-side, so a plain
// HTTP client does not see the relation and attachment sections.
type ChromedpFetcher struct {
	allocatorPool *sync.Pool
	timeout       time.Duration
}

// NewChromedpFetcher creates a fetcher with a pool of pre-warmed browser
// allocator contexts sized for maxConcurrency workers.
func NewChromedpFetcher(maxConcurrency int, pageLoadTimeout time.Duration) *ChromedpFetcher {
	pool := &sync.Pool{
		New: func() interface{} {
			opts := append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", true),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
				chromedp.UserAgent(`Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36`),
			)
			allocCtx, _ := chromedp.NewExecAllocator(context.Background(), opts...)
			return allocCtx
		},
	}

	for i := 0; i < maxConcurrency; i++ {
		allocCtx := pool.Get().(context.Context)
		pool.Put(allocCtx)
	}

	return &ChromedpFetcher{
		allocatorPool: pool,
		timeout:       pageLoadTimeout,
	}
}

// Fetch navigates to a URL and returns the rendered page HTML.
func (f *ChromedpFetcher) Fetch(ctx context.Context, url string) (string, error) {
	allocCtx := f.allocatorPool.Get().(context.Context)
	defer f.allocatorPool.Put(allocCtx)

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, f.timeout)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", err
	}
	return html, nil
}
