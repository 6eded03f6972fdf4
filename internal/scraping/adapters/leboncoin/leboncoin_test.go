// backend/internal/scraping/adapters/leboncoin/leboncoin_test.go
package leboncoin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.leboncoin.fr/ad/immobilier/2940744971", "2940744971"},
		{"https://www.leboncoin.fr/ad/ventes_immobilieres/2940744971", "2940744971"},
		{"https://www.leboncoin.fr/vi/2940744971.htm", "2940744971"},
		{"https://www.leboncoin.fr/ventes_immobilieres/offres", ""},
		{"", ""},
	}

	a := New(Config{})
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.ExtractID(tt.url), "ExtractID(%q)", tt.url)
	}
}

const apiPayload = `{
	"list_id": 2940744971,
	"subject": "Maison 4 pieces 95m2 Lyon",
	"body": "Belle maison proche du centre.",
	"price": [450000],
	"attributes": [
		{"key": "square", "value": "95"},
		{"key": "rooms", "value": "4"},
		{"key": "bedrooms", "value": "3"},
		{"key": "real_estate_type", "value": "Maison"},
		{"key": "energy_rate", "value": "D"},
		{"key": "ges", "value": "C"}
	],
	"images": {"urls": ["http://img/1.jpg", "http://img/2.jpg"]},
	"location": {"city": "Lyon", "zipcode": "69003"}
}`

func TestFetchAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/finder/classified/2940744971", r.URL.Path)
		assert.Equal(t, mobileUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, mobileAPIKey, r.Header.Get("api_key"))
		w.Write([]byte(apiPayload))
	}))
	defer srv.Close()

	a := New(Config{BaseURL: srv.URL})
	listing, err := a.FetchAPI(context.Background(), "https://www.leboncoin.fr/ad/immobilier/2940744971")
	require.NoError(t, err)
	require.NotNil(t, listing)

	assert.Equal(t, "Maison 4 pieces 95m2 Lyon", listing.Title)
	require.NotNil(t, listing.Price)
	assert.Equal(t, 450000, *listing.Price)
	require.NotNil(t, listing.Surface)
	assert.Equal(t, 95, *listing.Surface)
	require.NotNil(t, listing.Rooms)
	assert.Equal(t, 4, *listing.Rooms)
	require.NotNil(t, listing.Bedrooms)
	assert.Equal(t, 3, *listing.Bedrooms)
	assert.Equal(t, "Lyon", listing.City)
	assert.Equal(t, "69003", listing.PostalCode)
	assert.Equal(t, []string{"http://img/1.jpg", "http://img/2.jpg"}, listing.Photos)
	assert.Equal(t, "http://img/1.jpg", listing.Thumbnail)
	assert.Equal(t, "Maison", listing.PropertyType)
	assert.Equal(t, "D", listing.EnergyClass)
	assert.Equal(t, "C", listing.GHGClass)
}

func TestFetchAPIWithoutIDSkipsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer srv.Close()

	a := New(Config{BaseURL: srv.URL})
	listing, err := a.FetchAPI(context.Background(), "https://www.leboncoin.fr/ventes_immobilieres/offres")
	require.NoError(t, err)
	assert.Nil(t, listing)
	assert.False(t, called)
}

func TestFetchAPIRejectsPayloadWithoutListID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"message": "not found"}`))
	}))
	defer srv.Close()

	a := New(Config{BaseURL: srv.URL})
	listing, err := a.FetchAPI(context.Background(), "https://www.leboncoin.fr/ad/immobilier/2940744971")
	require.NoError(t, err)
	assert.Nil(t, listing)
}

func TestFetchAPIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	a := New(Config{BaseURL: srv.URL})
	_, err := a.FetchAPI(context.Background(), "https://www.leboncoin.fr/ad/immobilier/2940744971")
	assert.Error(t, err)
}

func TestParseHTML(t *testing.T) {
	page := `<html><body>
		<script id="__NEXT_DATA__" type="application/json">
			{"props": {"pageProps": {"ad": ` + apiPayload + `}}}
		</script>
	</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	listing := New(Config{}).ParseHTML(doc)
	require.NotNil(t, listing)
	assert.Equal(t, "Maison 4 pieces 95m2 Lyon", listing.Title)
	require.NotNil(t, listing.Price)
	assert.Equal(t, 450000, *listing.Price)
	assert.Equal(t, "Lyon", listing.City)
}

func TestParseHTMLMissingPayload(t *testing.T) {
	for _, page := range []string{
		`<html><body></body></html>`,
		`<html><body><script id="__NEXT_DATA__">{not json</script></body></html>`,
		`<html><body><script id="__NEXT_DATA__">{"props":{"pageProps":{}}}</script></body></html>`,
	} {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
		require.NoError(t, err)
		assert.Nil(t, New(Config{}).ParseHTML(doc))
	}
}
