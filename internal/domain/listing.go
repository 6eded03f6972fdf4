// backend/internal/domain/listing.go
package domain

import "time"

// ListingMetadata is the canonical record produced by the extraction
// pipeline, regardless of which source site or strategy produced it.
// Every field is always present in the JSON output: numeric fields are
// pointers serialized as null when the source did not provide them, so
// consumers never have to guess which keys exist per site.
type ListingMetadata struct {
	Title        string   `json:"title"`
	Price        *int     `json:"price"`
	Surface      *int     `json:"surface"`
	Rooms        *int     `json:"rooms"`
	Bedrooms     *int     `json:"bedrooms"`
	City         string   `json:"city"`
	PostalCode   string   `json:"postalCode"`
	Description  string   `json:"description"`
	Photos       []string `json:"photos"`
	Thumbnail    string   `json:"thumbnail"`
	PropertyType string   `json:"propertyType"`
	EnergyClass  string   `json:"energyClass"`
	GHGClass     string   `json:"ghgClass"`
	SourceSite   string   `json:"sourceSite"`
}

// Coordinates is the result of a geocoding lookup for a listing's city.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Listing status values.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Vote values. A missing entry in the votes map means "no opinion yet".
const (
	VoteLike    = "like"
	VoteDislike = "dislike"
)

// Listing is the stored entity: the canonical metadata plus the fields
// the persistence layer owns. The extraction core never builds one of
// these; the import flow does, after the core returns.
type Listing struct {
	ID          int64             `json:"id"`
	URL         string            `json:"url"`
	Metadata    ListingMetadata   `json:"metadata"`
	Coordinates *Coordinates      `json:"coordinates"`
	Votes       map[string]string `json:"votes"`
	Status      string            `json:"status"`
	ImportedAt  time.Time         `json:"importedAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}
