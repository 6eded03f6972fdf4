// backend/internal/scraping/adapters/leboncoin/leboncoin.go

// Package leboncoin extracts listings from leboncoin.fr, either through
// the finder API the mobile app talks to or from the __NEXT_DATA__
// payload embedded in listing pages. Both paths carry the same ad shape.
package leboncoin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/maison-seeker/backend/internal/domain"
	"github.com/maison-seeker/backend/internal/scraping/normalize"
	"github.com/maison-seeker/backend/internal/sites"
)

const defaultBaseURL = "https://api.leboncoin.fr"

// The finder API only answers clients that look like the Android app.
const (
	mobileUserAgent = "LBC;Android;12;sdk_gphone64_arm64;phone;f2.27.0"
	mobileAPIKey    = "ba0c2dad52b3ec"
)

// Ad URLs look like /ad/immobilier/2940744971 or
// /ad/ventes_immobilieres/2940744971; older share links carry a long
// numeric id anywhere in the path.
var (
	adPathRe  = regexp.MustCompile(`/ad/[^/]+/(\d+)`)
	longIDRe  = regexp.MustCompile(`/(\d{8,})`)
	nextIDSel = "#__NEXT_DATA__"
)

// Config points the adapter at the finder API; tests override BaseURL.
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

func (a *Adapter) Site() string { return sites.Leboncoin }

// ExtractID pulls the numeric ad id out of a listing URL, or "" when the
// URL carries none.
func (a *Adapter) ExtractID(rawURL string) string {
	if m := adPathRe.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	if m := longIDRe.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return ""
}

// ad is the classified shape shared by the finder API and __NEXT_DATA__.
type ad struct {
	ListID     int64          `json:"list_id"`
	Subject    string         `json:"subject"`
	Body       string         `json:"body"`
	Price      []float64      `json:"price"`
	Attributes []normalize.KV `json:"attributes"`
	Images     struct {
		URLs      []string `json:"urls"`
		URLsLarge []string `json:"urls_large"`
	} `json:"images"`
	Location struct {
		City    string `json:"city"`
		Zipcode string `json:"zipcode"`
	} `json:"location"`
}

func (a *Adapter) FetchAPI(ctx context.Context, rawURL string) (*domain.ListingMetadata, error) {
	adID := a.ExtractID(rawURL)
	if adID == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/finder/classified/%s", a.baseURL, adID), nil)
	if err != nil {
		return nil, fmt.Errorf("leboncoin: build request: %w", err)
	}
	req.Header.Set("User-Agent", mobileUserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api_key", mobileAPIKey)
	req.Header.Set("Accept-Language", "fr-FR")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("leboncoin: api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("leboncoin: api call: HTTP %d", resp.StatusCode)
	}

	var payload ad
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("leboncoin: decode api payload: %w", err)
	}
	// A payload without list_id is an error page dressed up as JSON.
	if payload.ListID == 0 {
		return nil, nil
	}

	return mapAd(&payload), nil
}

// ParseHTML reads the ad out of the page's __NEXT_DATA__ script.
func (a *Adapter) ParseHTML(doc *goquery.Document) *domain.ListingMetadata {
	raw := doc.Find(nextIDSel).Text()
	if raw == "" {
		return nil
	}

	var next struct {
		Props struct {
			PageProps struct {
				Ad *ad `json:"ad"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal([]byte(raw), &next); err != nil {
		return nil
	}
	if next.Props.PageProps.Ad == nil || next.Props.PageProps.Ad.ListID == 0 {
		return nil
	}
	return mapAd(next.Props.PageProps.Ad)
}

func mapAd(a *ad) *domain.ListingMetadata {
	attrs := normalize.KeyValues(a.Attributes)

	photos := a.Images.URLs
	if len(photos) == 0 {
		photos = a.Images.URLsLarge
	}
	if photos == nil {
		photos = []string{}
	}

	var price *int
	if len(a.Price) > 0 {
		p := int(a.Price[0])
		price = &p
	}

	return &domain.ListingMetadata{
		Title:        a.Subject,
		Price:        price,
		Surface:      normalize.Int(attrs["square"]),
		Rooms:        normalize.Int(attrs["rooms"]),
		Bedrooms:     normalize.Int(attrs["bedrooms"]),
		City:         a.Location.City,
		PostalCode:   a.Location.Zipcode,
		Description:  a.Body,
		Photos:       photos,
		Thumbnail:    normalize.Thumbnail("", photos),
		PropertyType: attrs["real_estate_type"],
		EnergyClass:  attrs["energy_rate"],
		GHGClass:     attrs["ges"],
	}
}
