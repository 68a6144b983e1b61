package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/legaldoc-crawler/internal/entity"
	"github.com/user/legaldoc-crawler/internal/repository"
)

// CatalogRepoImpl provides a concrete implementation for the
// CatalogRepository interface using PostgreSQL.
type CatalogRepoImpl struct {
	db *pgxpool.Pool
}

// NewCatalogRepo creates a new instance of CatalogRepoImpl.
func NewCatalogRepo(db *pgxpool.Pool) *CatalogRepoImpl {
	return &CatalogRepoImpl{db: db}
}

// FindByURL returns the earliest-created entry for a URL. Historic crawls
// wrote duplicate rows per URL, so ordering by created_at keeps lookups
// deterministic until dedup has run.
func (r *CatalogRepoImpl) FindByURL(ctx context.Context, url string) (*entity.CatalogEntry, error) {
	var e entity.CatalogEntry
	err := r.db.QueryRow(ctx,
		`SELECT term_id, name, definition, url, COALESCE(source_session, 0), created_at, updated_at
		 FROM catalog_terms
		 WHERE url = $1
		 ORDER BY created_at ASC
		 LIMIT 1`,
		url,
	).Scan(&e.TermID, &e.Name, &e.Definition, &e.URL, &e.SourceSession, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *CatalogRepoImpl) Insert(ctx context.Context, e *entity.CatalogEntry) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO catalog_terms (name, definition, url, source_session)
		 VALUES ($1, $2, $3, NULLIF($4, 0))
		 RETURNING term_id, created_at, updated_at`,
		e.Name, e.Definition, e.URL, e.SourceSession,
	).Scan(&e.TermID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *CatalogRepoImpl) Update(ctx context.Context, e *entity.CatalogEntry) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE catalog_terms
		 SET name = $2, definition = $3, updated_at = NOW()
		 WHERE term_id = $1`,
		e.TermID, e.Name, e.Definition)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CatalogRepoImpl) ListAll(ctx context.Context) ([]*entity.CatalogEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT term_id, name, definition, url, COALESCE(source_session, 0), created_at, updated_at
		 FROM catalog_terms
		 ORDER BY url ASC, created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*entity.CatalogEntry
	for rows.Next() {
		var e entity.CatalogEntry
		if err := rows.Scan(&e.TermID, &e.Name, &e.Definition, &e.URL, &e.SourceSession, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// DeleteGroup removes a duplicate group's losers in one transaction so a
// group is never left partially deduplicated.
func (r *CatalogRepoImpl) DeleteGroup(ctx context.Context, termIDs []int64) error {
	if len(termIDs) == 0 {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM catalog_terms WHERE term_id = ANY($1)`, termIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CompactSequence realigns the term_id sequence with the surviving rows
// after dedup deletions.
func (r *CatalogRepoImpl) CompactSequence(ctx context.Context) error {
	_, err := r.db.Exec(ctx,
		`SELECT setval(pg_get_serial_sequence('catalog_terms', 'term_id'),
		               COALESCE((SELECT MAX(term_id) FROM catalog_terms), 1))`)
	return err
}
