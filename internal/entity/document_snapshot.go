package entity

import "time"

// DocumentSnapshot is the extractor's view of one fetched document page:
// the metadata fields that feed change detection, the relation links found
// on the page, and the update date the site reports for the document.
type DocumentSnapshot struct {
	URL                string
	Title              string
	Fields             map[string]any
	Relations          []ExtractedRelation
	Terms              []Term
	ReportedUpdateDate *time.Time
}
