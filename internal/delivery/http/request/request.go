package request

// DiscoveredLink is one listing-page hit in an UpsertLinksRequest.
// UpdatedOn carries the site's dd/mm/yyyy date string, empty when the
// listing shows no date.
type DiscoveredLink struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	UpdatedOn string `json:"updated_on"`
}

type UpsertLinksRequest struct {
	Links []DiscoveredLink `json:"links"`
}

type SubmitCrawlRequest struct {
	URL        string `json:"url"`
	ForceCrawl bool   `json:"force_crawl"`
}

type RunSessionRequest struct {
	Limit int `json:"limit"`
}
