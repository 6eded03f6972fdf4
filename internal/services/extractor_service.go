// backend/internal/services/extractor_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/maison-seeker/backend/internal/domain"
	"github.com/maison-seeker/backend/internal/scraping"
	"github.com/maison-seeker/backend/internal/scraping/fetcher"
	"github.com/maison-seeker/backend/internal/scraping/generic"
	"github.com/maison-seeker/backend/internal/scraping/normalize"
	"github.com/maison-seeker/backend/internal/sites"
	"github.com/maison-seeker/backend/pkg/logger"
)

// PageFetcher is the single-GET contract the HTML strategy needs; the
// production implementation lives in scraping/fetcher.
type PageFetcher interface {
	Get(ctx context.Context, rawURL string) (*goquery.Document, error)
}

// ExtractorService drives the strategy sequence for one listing URL:
// detect the site, try its internal API, then one HTML fetch with the
// site parser and the generic fallbacks. Strategies run strictly one at
// a time — one API hit and at most one page fetch per request, never
// both concurrently.
type ExtractorService struct {
	adapters map[string]scraping.Adapter
	fetcher  PageFetcher
	log      *logger.Logger
}

func NewExtractorService(adapters []scraping.Adapter, f PageFetcher, log *logger.Logger) *ExtractorService {
	table := make(map[string]scraping.Adapter, len(adapters))
	for _, a := range adapters {
		table[a.Site()] = a
	}
	return &ExtractorService{adapters: table, fetcher: f, log: log}
}

// Extract resolves rawURL into the canonical metadata record.
//
// Failures cross this boundary in exactly two shapes:
// domain.ErrUnsupportedURL when the URL matches no registered site (no
// network call has been made), and *domain.ExtractionError when every
// strategy came up empty. Everything else — timeouts, blocks, drifted
// schemas — is recovered here and only surfaces in the attempt log.
func (s *ExtractorService) Extract(ctx context.Context, rawURL string) (*domain.ListingMetadata, error) {
	site := sites.Detect(rawURL)
	if site == "" {
		return nil, domain.ErrUnsupportedURL
	}

	var attempts []domain.Attempt

	adapter := s.adapters[site]
	if adapter != nil {
		s.log.Debug("[extractor] trying %s api", site)
		listing, err := adapter.FetchAPI(ctx, rawURL)
		switch {
		case err != nil:
			attempts = append(attempts, domain.Attempt{Strategy: domain.StrategyAPI, Outcome: domain.OutcomeNetwork, Detail: err.Error()})
			s.log.Warn("[extractor] %s api failed: %v", site, err)
		case listing == nil || listing.Title == "":
			attempts = append(attempts, domain.Attempt{Strategy: domain.StrategyAPI, Outcome: domain.OutcomeNoData})
			s.log.Warn("[extractor] %s api returned no data, falling back to html", site)
		default:
			s.log.Info("[extractor] %s api succeeded", site)
			return s.finish(listing, site), nil
		}
	}

	listing, attempt := s.tryHTML(ctx, rawURL, adapter)
	attempts = append(attempts, attempt)
	if listing != nil {
		s.log.Info("[extractor] %s html strategy succeeded (%s)", site, attempt.Strategy)
		return s.finish(listing, site), nil
	}

	s.log.Error("[extractor] all strategies failed for %s", site)
	return nil, &domain.ExtractionError{Site: site, Attempts: attempts}
}

// tryHTML performs the single page fetch and runs the adapter chain on
// the result: site parser, then structured data, then meta tags. No
// second network call is ever made.
func (s *ExtractorService) tryHTML(ctx context.Context, rawURL string, adapter scraping.Adapter) (*domain.ListingMetadata, domain.Attempt) {
	doc, err := s.fetcher.Get(ctx, rawURL)
	if err != nil {
		var blocked *fetcher.BlockedError
		if errors.As(err, &blocked) {
			return nil, domain.Attempt{
				Strategy: domain.StrategyHTML,
				Outcome:  domain.OutcomeBlocked,
				Detail:   fmt.Sprintf("HTTP %d", blocked.Status),
			}
		}
		return nil, domain.Attempt{Strategy: domain.StrategyHTML, Outcome: domain.OutcomeNetwork, Detail: err.Error()}
	}

	if adapter != nil {
		if listing := adapter.ParseHTML(doc); listing != nil && listing.Title != "" {
			return listing, domain.Attempt{Strategy: domain.StrategyHTML, Outcome: domain.OutcomeSuccess}
		}
	}
	if listing := generic.ParseStructuredData(doc); listing != nil && listing.Title != "" {
		return listing, domain.Attempt{Strategy: domain.StrategyGeneric, Outcome: domain.OutcomeSuccess, Detail: "structured-data"}
	}
	if listing := generic.ParseMetaTags(doc); listing.Title != "" {
		return listing, domain.Attempt{Strategy: domain.StrategyGeneric, Outcome: domain.OutcomeSuccess, Detail: "meta-tags"}
	}

	return nil, domain.Attempt{Strategy: domain.StrategyHTML, Outcome: domain.OutcomeNoData}
}

// finish tags the record with its source site and pins down the output
// contract: photos never nil, thumbnail defaulted to the first photo,
// city guessed from the title when no strategy produced a structured one.
func (s *ExtractorService) finish(listing *domain.ListingMetadata, site string) *domain.ListingMetadata {
	listing.SourceSite = site
	if listing.City == "" {
		listing.City = normalize.CityFromTitle(listing.Title)
	}
	if listing.Photos == nil {
		listing.Photos = []string{}
	}
	if listing.Thumbnail == "" && len(listing.Photos) > 0 {
		listing.Thumbnail = listing.Photos[0]
	}
	return listing
}
