package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/legaldoc-crawler/internal/entity"
	"github.com/user/legaldoc-crawler/internal/repository"
)

// DocumentVersionRepoImpl provides a concrete implementation for the
// DocumentVersionRepository interface using PostgreSQL.
type DocumentVersionRepoImpl struct {
	db *pgxpool.Pool
}

// NewDocumentVersionRepo creates a new instance of DocumentVersionRepoImpl.
func NewDocumentVersionRepo(db *pgxpool.Pool) *DocumentVersionRepoImpl {
	return &DocumentVersionRepoImpl{db: db}
}

func (r *DocumentVersionRepoImpl) Latest(ctx context.Context, docURLID int64) (*entity.DocumentVersion, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, doc_url_id, version, content_hash, extra_data, created_at
		 FROM document_versions
		 WHERE doc_url_id = $1
		 ORDER BY version DESC
		 LIMIT 1`,
		docURLID)
	return scanVersion(row)
}

// AppendIfChanged compares contentHash against the latest version inside a
// transaction that locks the owning crawl_url row, so concurrent upserts for
// the same URL are serialized: one wins, the other observes the new hash and
// no-ops. A unique-violation on (doc_url_id, version) can still surface if
// the parent row is missing; it maps to ErrVersionConflict, which callers
// may retry.
func (r *DocumentVersionRepoImpl) AppendIfChanged(ctx context.Context, docURLID int64, contentHash string, extraData map[string]any) (*entity.DocumentVersion, bool, error) {
	extraJSON, err := json.Marshal(extraData)
	if err != nil {
		return nil, false, fmt.Errorf("extra_data is not serializable: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	var ownerID int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM crawl_url WHERE id = $1 FOR UPDATE`, docURLID).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, repository.ErrNotFound
	}
	if err != nil {
		return nil, false, err
	}

	latest, err := scanVersion(tx.QueryRow(ctx,
		`SELECT id, doc_url_id, version, content_hash, extra_data, created_at
		 FROM document_versions
		 WHERE doc_url_id = $1
		 ORDER BY version DESC
		 LIMIT 1`,
		docURLID))
	nextVersion := 1
	switch {
	case err == nil:
		if latest.ContentHash == contentHash {
			return latest, false, tx.Commit(ctx)
		}
		nextVersion = latest.Version + 1
	case errors.Is(err, repository.ErrNotFound):
		// first version
	default:
		return nil, false, err
	}

	dv := &entity.DocumentVersion{
		DocURLID:    docURLID,
		Version:     nextVersion,
		ContentHash: contentHash,
		ExtraData:   extraData,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO document_versions (doc_url_id, version, content_hash, extra_data)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		docURLID, nextVersion, contentHash, extraJSON,
	).Scan(&dv.ID, &dv.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, false, repository.ErrVersionConflict
		}
		return nil, false, err
	}

	return dv, true, tx.Commit(ctx)
}

func (r *DocumentVersionRepoImpl) ListByDocURL(ctx context.Context, docURLID int64) ([]*entity.DocumentVersion, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, doc_url_id, version, content_hash, extra_data, created_at
		 FROM document_versions
		 WHERE doc_url_id = $1
		 ORDER BY version ASC`,
		docURLID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chain []*entity.DocumentVersion
	for rows.Next() {
		dv, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		chain = append(chain, dv)
	}
	return chain, rows.Err()
}

func scanVersion(row pgx.Row) (*entity.DocumentVersion, error) {
	var dv entity.DocumentVersion
	var extraJSON []byte
	err := row.Scan(&dv.ID, &dv.DocURLID, &dv.Version, &dv.ContentHash, &extraJSON, &dv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(extraJSON) > 0 {
		if err := json.Unmarshal(extraJSON, &dv.ExtraData); err != nil {
			return nil, err
		}
	}
	return &dv, nil
}
