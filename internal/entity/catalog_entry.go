package entity

import "time"

// CatalogEntry mirrors the `catalog_terms` PostgreSQL table schema.
// One row per named entity (glossary term), keyed by its source URL.
type CatalogEntry struct {
	TermID        int64
	Name          string
	Definition    string
	URL           string
	SourceSession int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Term is a glossary term as extracted from a catalog page.
type Term struct {
	Name       string
	Definition string
	URL        string
}
