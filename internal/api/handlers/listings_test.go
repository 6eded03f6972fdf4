// backend/internal/api/handlers/listings_test.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maison-seeker/backend/internal/domain"
	"github.com/maison-seeker/backend/internal/scraping"
	"github.com/maison-seeker/backend/internal/services"
	"github.com/maison-seeker/backend/internal/sites"
	"github.com/maison-seeker/backend/pkg/logger"
)

type stubAdapter struct {
	result *domain.ListingMetadata
}

func (s *stubAdapter) Site() string            { return sites.Leboncoin }
func (s *stubAdapter) ExtractID(string) string { return "1" }

func (s *stubAdapter) FetchAPI(context.Context, string) (*domain.ListingMetadata, error) {
	return s.result, nil
}

func (s *stubAdapter) ParseHTML(*goquery.Document) *domain.ListingMetadata { return nil }

type stubFetcher struct{}

func (stubFetcher) Get(context.Context, string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(`<html></html>`))
}

func newRouter(adapter scraping.Adapter) *mux.Router {
	log := logger.New(false)
	extractor := services.NewExtractorService([]scraping.Adapter{adapter}, stubFetcher{}, log)
	h := NewListingHandler(extractor, nil, 5*time.Second, log)

	r := mux.NewRouter()
	r.HandleFunc("/api/listings/fetch", h.HandleFetch).Methods(http.MethodPost)
	return r
}

func postFetch(t *testing.T, r *mux.Router, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/listings/fetch", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandleFetchSuccess(t *testing.T) {
	adapter := &stubAdapter{result: &domain.ListingMetadata{Title: "T1"}}
	rec := postFetch(t, newRouter(adapter), `{"url": "https://www.leboncoin.fr/ad/immobilier/1"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.Equal(t, "T1", meta["title"])
	assert.Equal(t, sites.Leboncoin, meta["sourceSite"])

	// The output contract: every field present, absent numerics as null.
	for _, key := range []string{"price", "surface", "rooms", "bedrooms", "city", "photos", "thumbnail", "energyClass", "ghgClass"} {
		_, present := meta[key]
		assert.True(t, present, "field %q must always be present", key)
	}
	assert.Nil(t, meta["price"])
}

func TestHandleFetchMissingURL(t *testing.T) {
	rec := postFetch(t, newRouter(&stubAdapter{}), `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postFetch(t, newRouter(&stubAdapter{}), `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleFetchUnsupportedSite(t *testing.T) {
	rec := postFetch(t, newRouter(&stubAdapter{}), `{"url": "https://www.pap.fr/annonce/1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "leboncoin.fr")
}

func TestHandleFetchExtractionFailure(t *testing.T) {
	rec := postFetch(t, newRouter(&stubAdapter{}), `{"url": "https://www.leboncoin.fr/ad/immobilier/1"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	// The generic message only; attempt details stay server-side.
	assert.Contains(t, rec.Body.String(), "blocking automated requests")
	assert.NotContains(t, rec.Body.String(), "no_data")
}
