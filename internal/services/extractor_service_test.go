// backend/internal/services/extractor_service_test.go
package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maison-seeker/backend/internal/domain"
	"github.com/maison-seeker/backend/internal/scraping"
	"github.com/maison-seeker/backend/internal/scraping/fetcher"
	"github.com/maison-seeker/backend/internal/sites"
	"github.com/maison-seeker/backend/pkg/logger"
)

// fakeAdapter scripts one site's API and HTML behavior.
type fakeAdapter struct {
	site       string
	apiResult  *domain.ListingMetadata
	apiErr     error
	htmlResult *domain.ListingMetadata
	apiCalls   int
	htmlCalls  int
}

func (f *fakeAdapter) Site() string { return f.site }

func (f *fakeAdapter) ExtractID(string) string { return "1" }

func (f *fakeAdapter) FetchAPI(_ context.Context, _ string) (*domain.ListingMetadata, error) {
	f.apiCalls++
	return f.apiResult, f.apiErr
}

func (f *fakeAdapter) ParseHTML(_ *goquery.Document) *domain.ListingMetadata {
	f.htmlCalls++
	return f.htmlResult
}

// fakeFetcher serves a canned document or error and counts calls.
type fakeFetcher struct {
	html  string
	err   error
	calls int
}

func (f *fakeFetcher) Get(_ context.Context, _ string) (*goquery.Document, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(f.html))
}

const lbcURL = "https://www.leboncoin.fr/ad/immobilier/2940744971"

func adapterList(a *fakeAdapter) []scraping.Adapter {
	return []scraping.Adapter{a}
}

func TestExtractUnsupportedURL(t *testing.T) {
	f := &fakeFetcher{}
	adapter := &fakeAdapter{site: sites.Leboncoin}
	svc := NewExtractorService(adapterList(adapter), f, logger.New(false))

	_, err := svc.Extract(context.Background(), "https://www.pap.fr/annonce/1")
	require.ErrorIs(t, err, domain.ErrUnsupportedURL)
	assert.Zero(t, adapter.apiCalls, "no API call for unsupported URLs")
	assert.Zero(t, f.calls, "no fetch for unsupported URLs")
}

func TestExtractAPISuccessSkipsHTML(t *testing.T) {
	f := &fakeFetcher{}
	adapter := &fakeAdapter{
		site:      sites.Leboncoin,
		apiResult: &domain.ListingMetadata{Title: "T1", Photos: []string{"http://img/1.jpg"}},
	}
	svc := NewExtractorService(adapterList(adapter), f, logger.New(false))

	meta, err := svc.Extract(context.Background(), lbcURL)
	require.NoError(t, err)
	assert.Equal(t, "T1", meta.Title)
	assert.Equal(t, sites.Leboncoin, meta.SourceSite)
	assert.Equal(t, "http://img/1.jpg", meta.Thumbnail)
	assert.Equal(t, 1, adapter.apiCalls)
	assert.Zero(t, f.calls, "HTML fetcher must never run after an API success")
}

func TestExtractFallsBackToSiteHTML(t *testing.T) {
	f := &fakeFetcher{html: `<html><body></body></html>`}
	adapter := &fakeAdapter{
		site:       sites.Leboncoin,
		apiResult:  nil,
		htmlResult: &domain.ListingMetadata{Title: "From HTML"},
	}
	svc := NewExtractorService(adapterList(adapter), f, logger.New(false))

	meta, err := svc.Extract(context.Background(), lbcURL)
	require.NoError(t, err)
	assert.Equal(t, "From HTML", meta.Title)
	assert.Equal(t, sites.Leboncoin, meta.SourceSite)
	assert.NotNil(t, meta.Photos, "photos must never be nil in the output contract")
	assert.Equal(t, 1, f.calls, "exactly one page fetch")
	assert.Equal(t, 1, adapter.htmlCalls)
}

func TestExtractEmptyAPITitleFallsBack(t *testing.T) {
	f := &fakeFetcher{html: `<html><head><meta property="og:title" content="OG title"></head></html>`}
	adapter := &fakeAdapter{
		site:      sites.Leboncoin,
		apiResult: &domain.ListingMetadata{Title: ""},
	}
	svc := NewExtractorService(adapterList(adapter), f, logger.New(false))

	meta, err := svc.Extract(context.Background(), lbcURL)
	require.NoError(t, err)
	assert.Equal(t, "OG title", meta.Title)
	assert.Equal(t, 1, f.calls)
}

func TestExtractGuessesCityFromTitle(t *testing.T) {
	f := &fakeFetcher{html: `<html><head><meta property="og:title" content="Maison 4 pieces 95m2 Lyon"></head></html>`}
	adapter := &fakeAdapter{site: sites.Leboncoin}
	svc := NewExtractorService(adapterList(adapter), f, logger.New(false))

	meta, err := svc.Extract(context.Background(), lbcURL)
	require.NoError(t, err)
	assert.Equal(t, "Lyon", meta.City)
}

func TestExtractKeepsStructuredCity(t *testing.T) {
	f := &fakeFetcher{}
	adapter := &fakeAdapter{
		site:      sites.Leboncoin,
		apiResult: &domain.ListingMetadata{Title: "Appartement a Marseille", City: "Paris"},
	}
	svc := NewExtractorService(adapterList(adapter), f, logger.New(false))

	meta, err := svc.Extract(context.Background(), lbcURL)
	require.NoError(t, err)
	assert.Equal(t, "Paris", meta.City, "a structured city wins over the title guess")
}

func TestExtractGenericFallbacksRunOnSameDocument(t *testing.T) {
	page := `<html><head>
		<script type="application/ld+json">{"@type": "Product", "name": "LD Product", "offers": {"price": 1000}}</script>
	</head></html>`
	f := &fakeFetcher{html: page}
	adapter := &fakeAdapter{site: sites.Leboncoin, apiErr: errors.New("timeout")}
	svc := NewExtractorService(adapterList(adapter), f, logger.New(false))

	meta, err := svc.Extract(context.Background(), lbcURL)
	require.NoError(t, err)
	assert.Equal(t, "LD Product", meta.Title)
	require.NotNil(t, meta.Price)
	assert.Equal(t, 1000, *meta.Price)
	assert.Equal(t, 1, f.calls, "generic fallbacks must reuse the fetched document")
}

func TestExtractBlockedFetchFails(t *testing.T) {
	f := &fakeFetcher{err: &fetcher.BlockedError{Status: 429}}
	adapter := &fakeAdapter{site: sites.Leboncoin}
	svc := NewExtractorService(adapterList(adapter), f, logger.New(false))

	_, err := svc.Extract(context.Background(), lbcURL)

	var extractionErr *domain.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, sites.Leboncoin, extractionErr.Site)
	assert.Zero(t, adapter.htmlCalls, "adapter must not parse after a block")

	require.Len(t, extractionErr.Attempts, 2)
	assert.Equal(t, domain.OutcomeNoData, extractionErr.Attempts[0].Outcome)
	assert.Equal(t, domain.OutcomeBlocked, extractionErr.Attempts[1].Outcome)
}

func TestExtractAllStrategiesEmpty(t *testing.T) {
	f := &fakeFetcher{html: `<html><head></head><body></body></html>`}
	adapter := &fakeAdapter{site: sites.Leboncoin}
	svc := NewExtractorService(adapterList(adapter), f, logger.New(false))

	_, err := svc.Extract(context.Background(), lbcURL)

	var extractionErr *domain.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, 1, f.calls)
}
