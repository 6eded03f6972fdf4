// backend/internal/scraping/normalize/normalize.go

// Package normalize holds the shared field-normalization helpers used by
// every site adapter. Upstream payloads are duck-typed JSON whose shapes
// drift between site redesigns; everything here is defensive and returns
// explicit absent values instead of raising.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
)

// KV is the {key, value} attribute shape some sources use to model
// listing attributes as an array instead of an object.
type KV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// KeyValues converts an attribute array into a key-indexed map so field
// lookups become plain map access. Later duplicates win.
func KeyValues(pairs []KV) map[string]string {
	attrs := make(map[string]string, len(pairs))
	for _, p := range pairs {
		attrs[p.Key] = p.Value
	}
	return attrs
}

// Int coerces a numeric-looking value into an integer. It accepts the
// types encoding/json produces plus raw strings with a numeric prefix
// ("95 m²" yields 95). Anything non-numeric yields nil, never NaN and
// never an error.
func Int(v any) *int {
	switch n := v.(type) {
	case nil:
		return nil
	case int:
		return &n
	case int64:
		i := int(n)
		return &i
	case float64:
		i := int(n)
		return &i
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil
		}
		i := int(f)
		return &i
	case string:
		return intPrefix(n)
	default:
		return nil
	}
}

// intPrefix parses the leading digit run of a trimmed string.
func intPrefix(s string) *int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return nil
	}
	i, err := strconv.Atoi(s[:end])
	if err != nil {
		return nil
	}
	return &i
}

// Photos flattens a mixed photo collection into an ordered list of URL
// strings. Sources variously send plain URL strings or wrapper objects
// carrying the URL under "url" or "fullUrl"; order is preserved and
// unrecognized entries are dropped.
func Photos(raw []any) []string {
	photos := make([]string, 0, len(raw))
	for _, item := range raw {
		switch p := item.(type) {
		case string:
			if p != "" {
				photos = append(photos, p)
			}
		case map[string]any:
			if u, ok := p["url"].(string); ok && u != "" {
				photos = append(photos, u)
			} else if u, ok := p["fullUrl"].(string); ok && u != "" {
				photos = append(photos, u)
			}
		}
	}
	return photos
}

// Thumbnail picks the explicit thumbnail when the source supplies one,
// otherwise defaults to the first photo.
func Thumbnail(explicit string, photos []string) string {
	if explicit != "" {
		return explicit
	}
	if len(photos) > 0 {
		return photos[0]
	}
	return ""
}

// MapAt descends through nested objects and returns the map at the given
// path, or nil when any step is missing or not an object.
func MapAt(m map[string]any, path ...string) map[string]any {
	cur := m
	for _, key := range path {
		next, ok := cur[key].(map[string]any)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// StringAt returns the first non-empty string found under the candidate
// keys. Numeric values are formatted (some sources send postal codes as
// numbers).
func StringAt(m map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// IntAt returns the first coercible integer found under the candidate
// keys, or nil when none of them holds a numeric value.
func IntAt(m map[string]any, keys ...string) *int {
	for _, key := range keys {
		if n := Int(m[key]); n != nil {
			return n
		}
	}
	return nil
}

// SliceAt returns the first array value found under the candidate keys.
func SliceAt(m map[string]any, keys ...string) []any {
	for _, key := range keys {
		if s, ok := m[key].([]any); ok {
			return s
		}
	}
	return nil
}
