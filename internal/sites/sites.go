// backend/internal/sites/sites.go
package sites

import "regexp"

// Site identifiers. These are the only values ever written to
// ListingMetadata.SourceSite.
const (
	Leboncoin = "leboncoin"
	Seloger   = "seloger"
	Bienici   = "bienici"
)

// Descriptor ties a site identifier to its URL pattern.
type Descriptor struct {
	Name    string
	Pattern *regexp.Regexp
}

// Registry is the fixed, read-only list of supported sources, tested in
// order. Patterns are case-insensitive and tolerate an optional "www.".
var Registry = []Descriptor{
	{Name: Leboncoin, Pattern: regexp.MustCompile(`(?i)^https?://(www\.)?leboncoin\.fr/`)},
	{Name: Seloger, Pattern: regexp.MustCompile(`(?i)^https?://(www\.)?seloger\.com/`)},
	{Name: Bienici, Pattern: regexp.MustCompile(`(?i)^https?://(www\.)?bienici\.com/`)},
}

// Detect returns the identifier of the first site whose pattern matches
// rawURL, or "" when none does. Pure function, no I/O.
func Detect(rawURL string) string {
	for _, site := range Registry {
		if site.Pattern.MatchString(rawURL) {
			return site.Name
		}
	}
	return ""
}
