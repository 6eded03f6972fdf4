// backend/internal/scraping/normalize/city_test.go
package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCityFromTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"trailing capitalized token", "Maison 4 pieces 95m2 Lyon", "Lyon"},
		{"after connector", "Appartement a Lyon 3eme", "Lyon"},
		{"accented connector", "Maison à Bordeaux", "Bordeaux"},
		{"before postal code", "Vente maison Lyon (69003)", "Lyon"},
		{"skips unit words", "Appartement 3 pièces 62 m² Nantes", "Nantes"},
		{"hyphenated city", "Terrain constructible Saint-Priest (69800)", "Saint-Priest"},
		{"no qualifying token", "vente appartement 3 pieces 62 m2", ""},
		{"empty title", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CityFromTitle(tt.title))
		})
	}
}
