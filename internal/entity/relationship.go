package entity

// Relationship is a directed edge between a source document version and a
// target document. The target may only be known by URL at insert time;
// TargetDocID is filled in later by backfill once the target is crawled.
type Relationship struct {
	ID           int64
	SourceDocID  int64
	TargetDocURL string
	TargetDocID  *int64
	Type         string // e.g. "amended_by", "replaces"
}

// ExtractedRelation is a relation link as found on a document page,
// before it is recorded as a Relationship row.
type ExtractedRelation struct {
	TargetURL   string
	TargetTitle string
	Type        string
}
