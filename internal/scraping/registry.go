// backend/internal/scraping/registry.go
package scraping

import (
	"github.com/maison-seeker/backend/internal/config"
	"github.com/maison-seeker/backend/internal/scraping/adapters/bienici"
	"github.com/maison-seeker/backend/internal/scraping/adapters/leboncoin"
	"github.com/maison-seeker/backend/internal/scraping/adapters/seloger"
	"github.com/maison-seeker/backend/internal/sites"
)

// BuildAdapters constructs one adapter per registered site, applying the
// per-site base URL overrides from the scraping config.
func BuildAdapters(cfg config.ScrapingConfig) []Adapter {
	timeout := cfg.APITimeout()
	return []Adapter{
		leboncoin.New(leboncoin.Config{
			BaseURL: cfg.Site(sites.Leboncoin).APIBaseURL,
			Timeout: timeout,
		}),
		seloger.New(seloger.Config{
			BaseURL: cfg.Site(sites.Seloger).APIBaseURL,
			Timeout: timeout,
		}),
		bienici.New(bienici.Config{
			BaseURL: cfg.Site(sites.Bienici).APIBaseURL,
			Timeout: timeout,
		}),
	}
}
