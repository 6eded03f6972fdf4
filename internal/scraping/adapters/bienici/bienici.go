// backend/internal/scraping/adapters/bienici/bienici.go

// Package bienici extracts listings from bienici.com. The site exposes a
// plain JSON endpoint for each ad; the HTML fallback digs the same
// object out of __NEXT_DATA__, whose nesting has moved twice across
// redesigns. A payload only counts as a listing when it carries a price
// or a surface — the same threshold on both paths.
package bienici

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/maison-seeker/backend/internal/domain"
	"github.com/maison-seeker/backend/internal/scraping/normalize"
	"github.com/maison-seeker/backend/internal/sites"
)

const defaultBaseURL = "https://www.bienici.com"

const desktopUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

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

func (a *Adapter) Site() string { return sites.Bienici }

// ExtractID returns the ad identifier, which is the final path segment
// of the listing URL (e.g. /annonce/vente/paris/.../ag670592-490834688).
func (a *Adapter) ExtractID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

func (a *Adapter) FetchAPI(ctx context.Context, rawURL string) (*domain.ListingMetadata, error) {
	adID := a.ExtractID(rawURL)
	if adID == "" {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/realEstateAd.json?id=%s", a.baseURL, url.QueryEscape(adID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("bienici: build request: %w", err)
	}
	req.Header.Set("User-Agent", desktopUserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bienici: api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bienici: api call: HTTP %d", resp.StatusCode)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("bienici: decode api payload: %w", err)
	}

	return mapAd(payload), nil
}

// ParseHTML tries the known __NEXT_DATA__ nesting variants in order and
// maps the first one that passes the listing threshold.
func (a *Adapter) ParseHTML(doc *goquery.Document) *domain.ListingMetadata {
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

	candidates := []map[string]any{
		normalize.MapAt(pageProps, "ad"),
		normalize.MapAt(pageProps, "classified"),
		pageProps,
	}
	for _, ad := range candidates {
		if ad == nil {
			continue
		}
		if listing := mapAd(ad); listing != nil {
			return listing
		}
	}
	return nil
}

// mapAd converts a raw ad object into the canonical record, or nil when
// the object fails the price-or-surface threshold.
func mapAd(ad map[string]any) *domain.ListingMetadata {
	price := normalize.IntAt(ad, "price")
	surface := normalize.IntAt(ad, "surfaceArea")
	if price == nil && surface == nil {
		return nil
	}

	photos := normalize.Photos(normalize.SliceAt(ad, "photos"))
	if photos == nil {
		photos = []string{}
	}

	rooms := normalize.IntAt(ad, "roomsQuantity")
	propertyType := normalize.StringAt(ad, "propertyType")

	title := normalize.StringAt(ad, "title")
	if title == "" {
		title = composeTitle(propertyType, rooms, surface)
	}

	return &domain.ListingMetadata{
		Title:        title,
		Price:        price,
		Surface:      surface,
		Rooms:        rooms,
		Bedrooms:     normalize.IntAt(ad, "bedroomsQuantity"),
		City:         normalize.StringAt(ad, "city"),
		PostalCode:   normalize.StringAt(ad, "postalCode"),
		Description:  normalize.StringAt(ad, "description"),
		Photos:       photos,
		Thumbnail:    normalize.Thumbnail("", photos),
		PropertyType: propertyType,
		EnergyClass:  normalize.StringAt(ad, "energyClassification"),
		GHGClass:     normalize.StringAt(ad, "ghgClassification"),
	}
}

// composeTitle builds "maison 4p 95m2"-style titles for ads that ship
// without one.
func composeTitle(propertyType string, rooms, surface *int) string {
	parts := make([]string, 0, 3)
	if propertyType != "" {
		parts = append(parts, propertyType)
	}
	if rooms != nil {
		parts = append(parts, fmt.Sprintf("%dp", *rooms))
	}
	if surface != nil {
		parts = append(parts, fmt.Sprintf("%dm2", *surface))
	}
	return strings.Join(parts, " ")
}
