package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/legaldoc-crawler/internal/entity"
	"github.com/user/legaldoc-crawler/internal/repository"
	"github.com/user/legaldoc-crawler/pkg/utils"
)

// CrawlURLRepoImpl provides a concrete implementation for the
// CrawlURLRepository interface using PostgreSQL.
type CrawlURLRepoImpl struct {
	db *pgxpool.Pool
}

// NewCrawlURLRepo creates a new instance of CrawlURLRepoImpl.
func NewCrawlURLRepo(db *pgxpool.Pool) *CrawlURLRepoImpl {
	return &CrawlURLRepoImpl{db: db}
}

const crawlURLColumns = `id, url, COALESCE(doc_id, ''), title, last_update_date, status, priority, retry_count, created_at, updated_at`

func scanCrawlURL(row pgx.Row) (*entity.CrawlURL, error) {
	var u entity.CrawlURL
	err := row.Scan(
		&u.ID,
		&u.URL,
		&u.DocID,
		&u.Title,
		&u.LastUpdateDate,
		&u.Status,
		&u.Priority,
		&u.RetryCount,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *CrawlURLRepoImpl) FindByURL(ctx context.Context, url string) (*entity.CrawlURL, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+crawlURLColumns+` FROM crawl_url WHERE url = $1`, url)
	return scanCrawlURL(row)
}

// GetOrCreate resolves or inserts the row for a URL in a single statement.
// The no-op DO UPDATE lets RETURNING yield the row on conflict as well.
func (r *CrawlURLRepoImpl) GetOrCreate(ctx context.Context, url string) (*entity.CrawlURL, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO crawl_url (url, doc_id, status, priority)
		 VALUES ($1, NULLIF($2, ''), 'pending', 0)
		 ON CONFLICT (url) DO UPDATE SET url = EXCLUDED.url
		 RETURNING `+crawlURLColumns,
		url, utils.ExtractDocID(url))
	return scanCrawlURL(row)
}

func (r *CrawlURLRepoImpl) Create(ctx context.Context, u *entity.CrawlURL) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO crawl_url (url, doc_id, title, last_update_date, status, priority)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)
		 RETURNING id`,
		u.URL, u.DocID, u.Title, u.LastUpdateDate, u.Status, u.Priority,
	).Scan(&u.ID)
}

func (r *CrawlURLRepoImpl) Requeue(ctx context.Context, url, title string, updateDate *time.Time, priority int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE crawl_url
		 SET title = $2, last_update_date = $3, status = 'pending', priority = $4, updated_at = NOW()
		 WHERE url = $1`,
		url, title, updateDate, priority)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CrawlURLRepoImpl) SetStatus(ctx context.Context, url string, status entity.CrawlURLStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE crawl_url SET status = $2, updated_at = NOW() WHERE url = $1`,
		url, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CrawlURLRepoImpl) MarkFailed(ctx context.Context, url string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE crawl_url
		 SET status = 'failed', retry_count = retry_count + 1, updated_at = NOW()
		 WHERE url = $1`,
		url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CrawlURLRepoImpl) FindPending(ctx context.Context, limit int) ([]*entity.CrawlURL, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+crawlURLColumns+`
		 FROM crawl_url
		 WHERE status = 'pending'
		 ORDER BY priority DESC, id ASC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []*entity.CrawlURL
	for rows.Next() {
		u, err := scanCrawlURL(rows)
		if err != nil {
			return nil, err
		}
		pending = append(pending, u)
	}
	return pending, rows.Err()
}
