// backend/internal/geocode/geocode.go

// Package geocode resolves city text into coordinates through Nominatim.
// The extraction core never calls it; the HTTP layer does, after the
// core has returned city/postal text.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/maison-seeker/backend/internal/domain"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// Client caches successful lookups for the life of the process, keyed by
// the normalized "city postal" text. The cache is unbounded on purpose:
// the set of French cities a household searches is small, and entries
// never go stale.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string

	mu    sync.Mutex
	cache map[string]*domain.Coordinates
}

type Config struct {
	BaseURL   string
	UserAgent string
}

func New(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "MaisonSeeker/1.0"
	}
	return &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		baseURL:   base,
		userAgent: ua,
		cache:     make(map[string]*domain.Coordinates),
	}
}

// cacheKey derives the cache key from city and optional postal code.
func cacheKey(city, postalCode string) string {
	query := city
	if postalCode != "" {
		query = city + " " + postalCode
	}
	return strings.ToLower(strings.TrimSpace(query))
}

// Lookup returns coordinates for a city, or (nil, nil) when the city is
// empty or unknown to Nominatim.
func (c *Client) Lookup(ctx context.Context, city, postalCode string) (*domain.Coordinates, error) {
	if city == "" {
		return nil, nil
	}

	key := cacheKey(city, postalCode)
	c.mu.Lock()
	if coords, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return coords, nil
	}
	c.mu.Unlock()

	params := url.Values{}
	params.Set("q", strings.TrimSpace(key))
	params.Set("countrycodes", "fr")
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: lookup %q: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode: lookup %q: HTTP %d", key, resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("geocode: decode response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: parse lat: %w", err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: parse lon: %w", err)
	}

	coords := &domain.Coordinates{Lat: lat, Lng: lng}
	c.mu.Lock()
	c.cache[key] = coords
	c.mu.Unlock()
	return coords, nil
}
