// backend/internal/scraping/generic/generic_test.go
package generic

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func TestParseStructuredDataProduct(t *testing.T) {
	page := `<html><head>
		<script type="application/ld+json">{"@type": "WebSite", "name": "ignore me"}</script>
		<script type="application/ld+json">{
			"@type": "Product",
			"name": "Maison 5 pieces Bordeaux",
			"description": "Avec jardin.",
			"offers": {"price": 420000},
			"image": ["http://img/1.jpg", "http://img/2.jpg"]
		}</script>
	</head></html>`

	listing := ParseStructuredData(doc(t, page))
	require.NotNil(t, listing)
	assert.Equal(t, "Maison 5 pieces Bordeaux", listing.Title)
	require.NotNil(t, listing.Price)
	assert.Equal(t, 420000, *listing.Price)
	assert.Equal(t, "Avec jardin.", listing.Description)
	assert.Equal(t, []string{"http://img/1.jpg", "http://img/2.jpg"}, listing.Photos)
	assert.Equal(t, "http://img/1.jpg", listing.Thumbnail)
	assert.Nil(t, listing.Surface)
	assert.Nil(t, listing.Rooms)
}

func TestParseStructuredDataGraph(t *testing.T) {
	page := `<html><head><script type="application/ld+json">{
		"@context": "https://schema.org",
		"@graph": [
			{"@type": "BreadcrumbList"},
			{"@type": "Residence", "name": "Residence Les Lilas", "image": "http://img/r.jpg"}
		]
	}</script></head></html>`

	listing := ParseStructuredData(doc(t, page))
	require.NotNil(t, listing)
	assert.Equal(t, "Residence Les Lilas", listing.Title)
	assert.Equal(t, []string{"http://img/r.jpg"}, listing.Photos)
}

func TestParseStructuredDataSkipsMalformedBlocks(t *testing.T) {
	page := `<html><head>
		<script type="application/ld+json">{broken</script>
		<script type="application/ld+json">{"@type": "Product", "name": "Still found"}</script>
	</head></html>`

	listing := ParseStructuredData(doc(t, page))
	require.NotNil(t, listing)
	assert.Equal(t, "Still found", listing.Title)
}

func TestParseStructuredDataNoMatch(t *testing.T) {
	assert.Nil(t, ParseStructuredData(doc(t, `<html><head></head></html>`)))
	assert.Nil(t, ParseStructuredData(doc(t, `<html><head>
		<script type="application/ld+json">{"@type": "NewsArticle", "name": "no"}</script>
	</head></html>`)))
}

func TestParseMetaTagsOpenGraph(t *testing.T) {
	page := `<html><head>
		<meta property="og:title" content="Appartement Paris 11e">
		<meta property="og:description" content="Charmant T2.">
		<meta property="og:image" content="http://img/og.jpg">
	</head></html>`

	listing := ParseMetaTags(doc(t, page))
	assert.Equal(t, "Appartement Paris 11e", listing.Title)
	assert.Equal(t, "Charmant T2.", listing.Description)
	assert.Equal(t, []string{"http://img/og.jpg"}, listing.Photos)
	assert.Equal(t, "http://img/og.jpg", listing.Thumbnail)
	assert.Nil(t, listing.Price)
	assert.Nil(t, listing.Surface)
	assert.Nil(t, listing.Rooms)
	assert.Nil(t, listing.Bedrooms)
	assert.Empty(t, listing.EnergyClass)
}

func TestParseMetaTagsTwitterFallback(t *testing.T) {
	page := `<html><head>
		<meta name="twitter:title" content="Loft Marseille">
		<meta name="twitter:image" content="http://img/tw.jpg">
		<meta name="description" content="Grand volume.">
	</head></html>`

	listing := ParseMetaTags(doc(t, page))
	assert.Equal(t, "Loft Marseille", listing.Title)
	assert.Equal(t, "Grand volume.", listing.Description)
	assert.Equal(t, "http://img/tw.jpg", listing.Thumbnail)
}

func TestParseMetaTagsTitleElementFallback(t *testing.T) {
	listing := ParseMetaTags(doc(t, `<html><head><title>Maison Nantes</title></head></html>`))
	assert.Equal(t, "Maison Nantes", listing.Title)
	assert.Empty(t, listing.Photos)
	assert.Empty(t, listing.Thumbnail)
}

func TestParseMetaTagsNothing(t *testing.T) {
	listing := ParseMetaTags(doc(t, `<html><head></head><body></body></html>`))
	assert.Empty(t, listing.Title)
}
