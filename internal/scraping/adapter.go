// backend/internal/scraping/adapter.go

// Package scraping defines the capability set every supported source
// implements. Site-to-site schema drift stays inside the per-site
// packages; the orchestrator only ever sees this interface and the
// canonical metadata record.
package scraping

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/maison-seeker/backend/internal/domain"
)

// Adapter is implemented once per source site.
//
// FetchAPI returns (nil, nil) when the site gave no usable data: no ad
// identifier in the URL, or a payload without the minimum evidence of a
// real listing. Network and decode failures come back as errors so the
// orchestrator can record why the strategy contributed nothing; it never
// propagates them to callers.
//
// ParseHTML must be a pure function of the document: it returns nil on
// any missing or malformed embedded payload and must not perform I/O.
type Adapter interface {
	Site() string
	ExtractID(rawURL string) string
	FetchAPI(ctx context.Context, rawURL string) (*domain.ListingMetadata, error)
	ParseHTML(doc *goquery.Document) *domain.ListingMetadata
}
