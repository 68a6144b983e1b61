package extractor

import (
	neturl "net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/legaldoc-crawler/internal/entity"
	"github.com/user/legaldoc-crawler/pkg/utils"
)

// GoqueryExtractor implements the DocumentExtractor interface against the
// legal-document site's detail pages.
type GoqueryExtractor struct{}

func New() *GoqueryExtractor {
	return &GoqueryExtractor{}
}

// Extract parses a detail page into a metadata snapshot. The properties
// table feeds change detection, so only stable document attributes end up
// in Fields; volatile values (fetch timestamps, view counters) stay out.
func (e *GoqueryExtractor) Extract(url, html string) (*entity.DocumentSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	// Hrefs on the page are usually site-relative; stored targets must be
	// absolute so they line up with the crawl_url table.
	base, err := neturl.Parse(url)
	if err != nil {
		base = nil
	}
	resolve := func(href string) string {
		if base == nil {
			return href
		}
		abs, err := utils.ToAbsoluteURL(base, href)
		if err != nil {
			return href
		}
		return abs
	}

	snap := &entity.DocumentSnapshot{
		URL:    url,
		Title:  strings.TrimSpace(doc.Find("h1.document-title").First().Text()),
		Fields: make(map[string]any),
	}
	if snap.Title == "" {
		snap.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if snap.Title != "" {
		snap.Fields["title"] = snap.Title
	}

	// Properties table: rows of alternating label/value cells.
	doc.Find("table.doc-properties tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		for c := 0; c+1 < cells.Length(); c += 2 {
			key := normalizeKey(cells.Eq(c).Text())
			value := strings.TrimSpace(cells.Eq(c + 1).Text())
			if key != "" && value != "" {
				snap.Fields[key] = value
			}
		}
	})

	if raw, ok := doc.Find("span.document-updated").Attr("data-date"); ok {
		snap.ReportedUpdateDate = ParseSiteDate(raw)
	}

	// Relation tabs: one group per relation type, links to target documents.
	doc.Find("div.relation-group").Each(func(i int, group *goquery.Selection) {
		relType := normalizeKey(group.Find("h3").First().Text())
		if relType == "" {
			return
		}
		group.Find("a[href]").Each(func(j int, link *goquery.Selection) {
			href, _ := link.Attr("href")
			if href == "" {
				return
			}
			snap.Relations = append(snap.Relations, entity.ExtractedRelation{
				TargetURL:   resolve(href),
				TargetTitle: strings.TrimSpace(link.Text()),
				Type:        relType,
			})
		})
	})

	// Glossary terms, present only on catalog pages.
	doc.Find("div.term-item").Each(func(i int, item *goquery.Selection) {
		name := strings.TrimSpace(item.Find(".term-name").Text())
		if name == "" {
			return
		}
		termURL, _ := item.Find("a[href]").First().Attr("href")
		if termURL == "" {
			termURL = url
		} else {
			termURL = resolve(termURL)
		}
		snap.Terms = append(snap.Terms, entity.Term{
			Name:       name,
			Definition: strings.TrimSpace(item.Find(".term-definition").Text()),
			URL:        termURL,
		})
	})

	return snap, nil
}

// ParseSiteDate parses the site's dd/mm/yyyy date format. Returns nil for
// empty or placeholder values, which callers treat as "no reported date".
func ParseSiteDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := time.Parse("02/01/2006", raw)
	if err != nil {
		return nil
	}
	return &t
}

// normalizeKey lowercases a label and collapses whitespace runs into single
// underscores, e.g. "Effective date:" -> "effective_date".
func normalizeKey(label string) string {
	label = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(label), ":"))
	if label == "" {
		return ""
	}
	return strings.Join(strings.Fields(strings.ToLower(label)), "_")
}
