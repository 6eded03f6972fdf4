// backend/cmd/api/main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/maison-seeker/backend/internal/api/handlers"
	"github.com/maison-seeker/backend/internal/config"
	"github.com/maison-seeker/backend/internal/geocode"
	"github.com/maison-seeker/backend/internal/repositories"
	"github.com/maison-seeker/backend/internal/scraping"
	"github.com/maison-seeker/backend/internal/scraping/fetcher"
	"github.com/maison-seeker/backend/internal/services"
	"github.com/maison-seeker/backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system env vars")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	appLog := logger.New(cfg.App.Debug)

	repo, err := repositories.NewPostgresListingRepository(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer repo.Close()

	geocoder := geocode.New(geocode.Config{
		BaseURL:   cfg.Geocoding.BaseURL,
		UserAgent: cfg.Geocoding.UserAgent,
	})

	pageFetcher := fetcher.New(fetcher.Config{
		UserAgent:      cfg.Scraping.UserAgent,
		Timeout:        cfg.Scraping.FetchTimeout(),
		RequestsPerSec: cfg.Scraping.RatePerDomain,
		Burst:          cfg.Scraping.RateBurst,
	}, appLog)

	extractor := services.NewExtractorService(scraping.BuildAdapters(cfg.Scraping), pageFetcher, appLog)
	listings := services.NewListingService(extractor, geocoder, repo, appLog)

	r := mux.NewRouter()
	handlers.NewListingHandler(extractor, listings, cfg.Scraping.RequestTimeout(), appLog).RegisterRoutes(r)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Scraping.RequestTimeout() + 5*time.Second,
	}

	appLog.Info("[api] %s listening on %s", cfg.App.Name, addr)
	log.Fatal(srv.ListenAndServe())
}
