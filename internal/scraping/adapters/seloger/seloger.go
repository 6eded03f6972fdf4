// backend/internal/scraping/adapters/seloger/seloger.go

// Package seloger extracts listings from seloger.com. The legacy detail
// endpoint still answers JSON for an ad id; listing pages embed their
// state either as an escaped window["initialData"] assignment or, on
// newer pages, inside __NEXT_DATA__. Field names changed with each
// redesign, so every lookup goes through an ordered candidate-key list.
package seloger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/maison-seeker/backend/internal/domain"
	"github.com/maison-seeker/backend/internal/scraping/normalize"
	"github.com/maison-seeker/backend/internal/sites"
)

const defaultBaseURL = "https://www.seloger.com"

const desktopUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// Listing URLs end in the ad id: .../123456789.htm
var adIDRe = regexp.MustCompile(`/(\d+)\.htm`)

// initialDataRe captures the escaped JSON blob older pages assign to
// window["initialData"].
var initialDataRe = regexp.MustCompile(`window\["initialData"\]\s*=\s*JSON\.parse\("(.+?)"\)`)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Adapter struct {
	baseURL string
	client  *http.Client
}

func New(cfg Config) *Adapter {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Adapter{
		baseURL: base,
		client:  &http.Client{Timeout: timeout},
	}
}

func (a *Adapter) Site() string { return sites.Seloger }

func (a *Adapter) ExtractID(rawURL string) string {
	if m := adIDRe.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return ""
}

func (a *Adapter) FetchAPI(ctx context.Context, rawURL string) (*domain.ListingMetadata, error) {
	adID := a.ExtractID(rawURL)
	if adID == "" {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/detail,json,caracteristique_bien.json?idannonce=%s",
		a.baseURL, url.QueryEscape(adID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("seloger: build request: %w", err)
	}
	req.Header.Set("User-Agent", desktopUserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("seloger: api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("seloger: api call: HTTP %d", resp.StatusCode)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("seloger: decode api payload: %w", err)
	}
	if len(payload) == 0 {
		return nil, nil
	}

	return mapListing(payload), nil
}

// ParseHTML tries the initialData assignment first, then __NEXT_DATA__.
func (a *Adapter) ParseHTML(doc *goquery.Document) *domain.ListingMetadata {
	if listing := parseInitialData(doc); listing != nil {
		return listing
	}
	return parseNextData(doc)
}

func parseInitialData(doc *goquery.Document) *domain.ListingMetadata {
	var data map[string]any
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		m := initialDataRe.FindStringSubmatch(s.Text())
		if m == nil {
			return true
		}
		unescaped := strings.ReplaceAll(m[1], `\"`, `"`)
		unescaped = strings.ReplaceAll(unescaped, `\\`, `\`)
		if err := json.Unmarshal([]byte(unescaped), &data); err != nil {
			data = nil
			return true
		}
		return false
	})
	if data == nil {
		return nil
	}

	// The listing card sits in cards.list on search-derived pages; plain
	// detail pages put the fields at the top level.
	listing := data
	if cards, ok := normalize.MapAt(data, "cards")["list"].([]any); ok {
		for _, c := range cards {
			card, ok := c.(map[string]any)
			if !ok {
				continue
			}
			if normalize.StringAt(card, "cardType") == "classified" {
				listing = card
				break
			}
		}
	}
	return mapListing(listing)
}

func parseNextData(doc *goquery.Document) *domain.ListingMetadata {
	raw := doc.Find("#__NEXT_DATA__").Text()
	if raw == "" {
		return nil
	}
	var next map[string]any
	if err := json.Unmarshal([]byte(raw), &next); err != nil {
		return nil
	}
	pageProps := normalize.MapAt(next, "props", "pageProps")
	if pageProps == nil {
		return nil
	}

	ad := pageProps
	for _, key := range []string{"classified", "listing", "ad"} {
		if candidate := normalize.MapAt(pageProps, key); candidate != nil {
			ad = candidate
			break
		}
	}
	return mapListing(ad)
}

// mapListing maps a seloger object into the canonical record, probing
// the French legacy names before their redesigned equivalents.
func mapListing(ad map[string]any) *domain.ListingMetadata {
	price := normalize.IntAt(ad, "prix", "price")
	if price == nil {
		if pricing := normalize.MapAt(ad, "pricing"); pricing != nil {
			price = normalize.IntAt(pricing, "price")
		}
	}

	photos := normalize.Photos(normalize.SliceAt(ad, "photos"))
	if photos == nil {
		photos = []string{}
	}

	energy := normalize.StringAt(ad, "classEnergie")
	if energy == "" {
		if dpe := normalize.MapAt(ad, "energyPerformanceDiagnostic"); dpe != nil {
			energy = normalize.StringAt(dpe, "value")
		}
	}
	ghg := normalize.StringAt(ad, "classeGes")
	if ghg == "" {
		if ges := normalize.MapAt(ad, "greenHouseGasEmission"); ges != nil {
			ghg = normalize.StringAt(ges, "value")
		}
	}

	return &domain.ListingMetadata{
		Title:        normalize.StringAt(ad, "titre", "title"),
		Price:        price,
		Surface:      normalize.IntAt(ad, "surface", "livingArea", "surfaceArea"),
		Rooms:        normalize.IntAt(ad, "nbPieces", "roomCount", "roomsQuantity"),
		Bedrooms:     normalize.IntAt(ad, "nbChambres", "bedroomCount"),
		City:         normalize.StringAt(ad, "ville", "city"),
		PostalCode:   normalize.StringAt(ad, "cp", "zipCode", "postalCode"),
		Description:  normalize.StringAt(ad, "descriptif", "description"),
		Photos:       photos,
		Thumbnail:    normalize.Thumbnail("", photos),
		PropertyType: normalize.StringAt(ad, "typeBien", "propertyType"),
		EnergyClass:  energy,
		GHGClass:     ghg,
	}
}
