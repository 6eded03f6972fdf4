// backend/internal/scraping/normalize/city.go
package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// French listing titles rarely label the city, but it almost always
// appears in one of three shapes:
//   "Appartement a Lyon 3eme"      — after a connector word
//   "Vente maison Lyon (69003)"    — before a parenthesized postal code
//   "Maison 4 pieces 95m2 Lyon"    — trailing capitalized token
var (
	cityAfterConnectorRe = regexp.MustCompile(`(?i)\s[aà]\s+([a-zA-Zéèêëàâäùûü][a-zA-Zéèêëàâäùûü-]+)`)
	cityBeforePostalRe   = regexp.MustCompile(`([A-ZÉÈÊËÀÂÄÙÛÜ][a-zA-Zéèêëàâäùûü-]+)\s*\(\d{5}\)`)
	unitWordRe           = regexp.MustCompile(`(?i)^(m2|m²|pieces?|pièces?|chambres?|euros?|eur|€)$`)
)

// CityFromTitle guesses a city from a listing title. Used only when no
// structured city field is available; returns "" when nothing qualifies.
func CityFromTitle(title string) string {
	if title == "" {
		return ""
	}

	if m := cityAfterConnectorRe.FindStringSubmatch(title); m != nil {
		return m[1]
	}

	if m := cityBeforePostalRe.FindStringSubmatch(title); m != nil {
		return m[1]
	}

	// Scan tokens right to left: skip numbers and unit words, take the
	// first remaining token that starts with an uppercase letter.
	words := strings.Fields(title)
	for i := len(words) - 1; i >= 0; i-- {
		word := strings.Map(func(r rune) rune {
			switch r {
			case '(', ')', ',', '-':
				return -1
			}
			return r
		}, words[i])

		if word == "" || utf8.RuneCountInString(word) < 3 {
			continue
		}
		first, _ := utf8.DecodeRuneInString(word)
		if unicode.IsDigit(first) {
			continue
		}
		if unitWordRe.MatchString(word) {
			continue
		}
		if unicode.IsUpper(first) {
			return word
		}
	}

	return ""
}
