// backend/internal/services/listing_service.go
package services

import (
	"context"
	"fmt"

	"github.com/maison-seeker/backend/internal/domain"
	"github.com/maison-seeker/backend/pkg/logger"
)

// Geocoder is the coordinate-lookup collaborator. A nil result with a
// nil error means "city unknown", which is fine — listings without
// coordinates just don't show up on the map.
type Geocoder interface {
	Lookup(ctx context.Context, city, postalCode string) (*domain.Coordinates, error)
}

// ListingStore is the persistence boundary the service writes through.
type ListingStore interface {
	Save(ctx context.Context, url string, meta domain.ListingMetadata, coords *domain.Coordinates) (*domain.Listing, error)
	FindByStatus(ctx context.Context, status string) ([]*domain.Listing, error)
	Vote(ctx context.Context, id int64, user, vote string) error
	SetStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}

// ListingService composes the extraction core with the geocoding and
// persistence collaborators: everything that happens to a listing after
// the core has produced its canonical record.
type ListingService struct {
	extractor *ExtractorService
	geocoder  Geocoder
	store     ListingStore
	log       *logger.Logger
}

func NewListingService(extractor *ExtractorService, geocoder Geocoder, store ListingStore, log *logger.Logger) *ListingService {
	return &ListingService{extractor: extractor, geocoder: geocoder, store: store, log: log}
}

// Import extracts a URL, geocodes its city best-effort, and stores the
// result. Geocoding failures are logged, never fatal.
func (s *ListingService) Import(ctx context.Context, rawURL string) (*domain.Listing, error) {
	meta, err := s.extractor.Extract(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	var coords *domain.Coordinates
	if meta.City != "" {
		coords, err = s.geocoder.Lookup(ctx, meta.City, meta.PostalCode)
		if err != nil {
			s.log.Warn("[listings] geocoding %q failed: %v", meta.City, err)
			coords = nil
		}
	}

	listing, err := s.store.Save(ctx, rawURL, *meta, coords)
	if err != nil {
		return nil, fmt.Errorf("store listing: %w", err)
	}
	s.log.Info("[listings] imported %s listing %d (%s)", meta.SourceSite, listing.ID, meta.Title)
	return listing, nil
}

func (s *ListingService) List(ctx context.Context, status string) ([]*domain.Listing, error) {
	return s.store.FindByStatus(ctx, status)
}

func (s *ListingService) Vote(ctx context.Context, id int64, user, vote string) error {
	return s.store.Vote(ctx, id, user, vote)
}

func (s *ListingService) Archive(ctx context.Context, id int64) error {
	return s.store.SetStatus(ctx, id, domain.StatusArchived)
}

func (s *ListingService) Unarchive(ctx context.Context, id int64) error {
	return s.store.SetStatus(ctx, id, domain.StatusActive)
}

func (s *ListingService) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}
