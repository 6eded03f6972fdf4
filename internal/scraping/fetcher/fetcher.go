// backend/internal/scraping/fetcher/fetcher.go

// Package fetcher performs the single browser-like GET the HTML strategy
// relies on. It never retries: retrying against anti-bot protected
// endpoints only escalates rate limiting.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/maison-seeker/backend/pkg/logger"
)

const maxRedirects = 5

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// defaultHeaders mirrors a current desktop Chrome so basic bot filters
// let the request through. Accept-Encoding is left to net/http so gzip
// stays transparent.
var defaultHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language":           "fr-FR,fr;q=0.9",
	"Cache-Control":             "no-cache",
	"Sec-CH-UA":                 `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
	"Sec-CH-UA-Mobile":          "?0",
	"Sec-CH-UA-Platform":        `"Windows"`,
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Upgrade-Insecure-Requests": "1",
}

// BlockedError reports an explicit upstream block (HTTP 403 or 429).
// The HTML strategy must not parse anything after one of these.
type BlockedError struct {
	Status int
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("upstream blocked request with HTTP %d", e.Status)
}

// Config controls the fetcher's timeouts and politeness rate.
type Config struct {
	UserAgent      string
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
}

// Fetcher issues browser-like GETs with a per-domain rate limiter shared
// across all requests in the process.
type Fetcher struct {
	client    *http.Client
	userAgent string
	log       *logger.Logger

	mu       sync.Mutex
	rps      float64
	burst    int
	limiters map[string]*rate.Limiter
}

func New(cfg Config, log *logger.Logger) *Fetcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	rps := cfg.RequestsPerSec
	if rps == 0 {
		rps = 1
	}
	burst := cfg.Burst
	if burst == 0 {
		burst = 2
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent: userAgent,
		log:       log,
		rps:       rps,
		burst:     burst,
		limiters:  make(map[string]*rate.Limiter),
	}
}

func (f *Fetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(f.rps), f.burst)
		f.limiters[host] = l
	}
	return l
}

// Get fetches rawURL and returns the parsed document. HTTP 403/429 yield
// a *BlockedError; any other status below 500 is treated as a
// retrievable document, 404 pages included (they simply yield no data
// downstream). Status 500+ and transport errors are plain errors.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*goquery.Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetcher: parse url: %w", err)
	}

	if err := f.limiter(u.Hostname()).Wait(ctx); err != nil {
		return nil, fmt.Errorf("fetcher: rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetcher: build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetcher: get %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		f.log.Warn("[fetcher] %s blocked with HTTP %d", u.Hostname(), resp.StatusCode)
		return nil, &BlockedError{Status: resp.StatusCode}
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("fetcher: get %s: HTTP %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetcher: parse document: %w", err)
	}
	return doc, nil
}
