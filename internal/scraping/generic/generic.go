// backend/internal/scraping/generic/generic.go

// Package generic holds the two site-agnostic fallbacks: schema.org
// structured data and Open-Graph/meta tags. They run against a document
// any site produced, including pages we only half-understand after a
// redesign.
package generic

import (
	"encoding/json"

	"github.com/PuerkitoBio/goquery"

	"github.com/maison-seeker/backend/internal/domain"
	"github.com/maison-seeker/backend/internal/scraping/normalize"
)

// ParseStructuredData scans every ld+json block for an item whose type
// is Product or Residence, directly or inside an @graph list, and maps
// the first match. Returns nil when no block qualifies.
func ParseStructuredData(doc *goquery.Document) *domain.ListingMetadata {
	var listing *domain.ListingMetadata

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var payload map[string]any
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			return true
		}

		item := listingItem(payload)
		if item == nil {
			if graph, ok := payload["@graph"].([]any); ok {
				for _, g := range graph {
					if node, ok := g.(map[string]any); ok {
						if item = listingItem(node); item != nil {
							break
						}
					}
				}
			}
		}
		if item == nil {
			return true
		}

		listing = mapItem(item)
		return false
	})

	return listing
}

func listingItem(node map[string]any) map[string]any {
	t := normalize.StringAt(node, "@type")
	if t == "Product" || t == "Residence" {
		return node
	}
	return nil
}

func mapItem(item map[string]any) *domain.ListingMetadata {
	var price *int
	if offers := normalize.MapAt(item, "offers"); offers != nil {
		price = normalize.IntAt(offers, "price")
	}

	photos := []string{}
	switch img := item["image"].(type) {
	case string:
		if img != "" {
			photos = append(photos, img)
		}
	case []any:
		photos = normalize.Photos(img)
	}

	return &domain.ListingMetadata{
		Title:       normalize.StringAt(item, "name"),
		Price:       price,
		Description: normalize.StringAt(item, "description"),
		Photos:      photos,
		Thumbnail:   normalize.Thumbnail("", photos),
	}
}

// ParseMetaTags is the last-resort fallback. It reads the Open-Graph
// tags, then twitter cards, then the bare <title> and description meta.
// It only ever guarantees title, description and thumbnail; price,
// surface and classification fields stay absent.
func ParseMetaTags(doc *goquery.Document) *domain.ListingMetadata {
	title := metaContent(doc, "og:title")
	if title == "" {
		title = metaContent(doc, "twitter:title")
	}
	if title == "" {
		title = doc.Find("title").First().Text()
	}

	description := metaContent(doc, "og:description")
	if description == "" {
		description = metaContent(doc, "twitter:description")
	}
	if description == "" {
		description = metaContent(doc, "description")
	}

	image := metaContent(doc, "og:image")
	if image == "" {
		image = metaContent(doc, "twitter:image")
	}

	photos := []string{}
	if image != "" {
		photos = append(photos, image)
	}

	return &domain.ListingMetadata{
		Title:       title,
		Description: description,
		Photos:      photos,
		Thumbnail:   image,
	}
}

// metaContent reads a meta tag's content whether the page declares it
// with property= or name=.
func metaContent(doc *goquery.Document, key string) string {
	if v, ok := doc.Find(`meta[property="` + key + `"]`).First().Attr("content"); ok && v != "" {
		return v
	}
	if v, ok := doc.Find(`meta[name="` + key + `"]`).First().Attr("content"); ok {
		return v
	}
	return ""
}
