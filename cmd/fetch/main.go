// backend/cmd/fetch/main.go

// fetch extracts one listing URL and prints the canonical record as
// JSON. Handy for probing a site's current schema after a redesign.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/maison-seeker/backend/internal/config"
	"github.com/maison-seeker/backend/internal/scraping"
	"github.com/maison-seeker/backend/internal/scraping/fetcher"
	"github.com/maison-seeker/backend/internal/services"
	"github.com/maison-seeker/backend/pkg/logger"
)

func main() {
	debug := flag.Bool("debug", false, "Log strategy attempts")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall extraction deadline")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: fetch [flags] <listing-url>")
		os.Exit(2)
	}
	rawURL := flag.Arg(0)

	appLog := logger.New(*debug)

	scrapingCfg := config.ScrapingConfig{}
	if cfg, err := config.LoadConfig(); err == nil {
		scrapingCfg = cfg.Scraping
	}

	pageFetcher := fetcher.New(fetcher.Config{
		UserAgent:      scrapingCfg.UserAgent,
		Timeout:        scrapingCfg.FetchTimeout(),
		RequestsPerSec: scrapingCfg.RatePerDomain,
		Burst:          scrapingCfg.RateBurst,
	}, appLog)

	extractor := services.NewExtractorService(scraping.BuildAdapters(scrapingCfg), pageFetcher, appLog)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	meta, err := extractor.Extract(ctx, rawURL)
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}

	out, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		log.Fatalf("Error marshaling to JSON: %v", err)
	}
	fmt.Println(string(out))
}
