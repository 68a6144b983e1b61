package entity

import "time"

// DocumentVersion mirrors the `document_versions` PostgreSQL table schema.
// Rows form an append-only chain per doc_url_id; the row with the highest
// version is the current snapshot. Rows are never updated or deleted.
type DocumentVersion struct {
	ID          int64
	DocURLID    int64
	Version     int
	ContentHash string
	ExtraData   map[string]any // extracted metadata fields, stored as JSONB
	CreatedAt   time.Time
}

// UpsertResult reports the outcome of a versioned document upsert.
type UpsertResult struct {
	Created   bool
	Version   int
	VersionID int64
}
