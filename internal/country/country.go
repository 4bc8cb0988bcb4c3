// Package country enumerates the countries profiles can be generated for.
package country

import (
	"fmt"
	"strings"
)

// Code is an ISO 3166-1 alpha-2 country code.
type Code string

const (
	IT Code = "IT"
	FR Code = "FR"
	DE Code = "DE"
	LU Code = "LU"
)

// All lists the supported countries in display order.
var All = []Code{IT, FR, DE, LU}

type info struct {
	locale string
	name   string
	alt    []string
}

var table = map[Code]info{
	IT: {locale: "it_IT", name: "Italy", alt: []string{"italia", "italie", "italien"}},
	FR: {locale: "fr_FR", name: "France", alt: []string{"francia", "frankreich"}},
	DE: {locale: "de_DE", name: "Germany", alt: []string{"germania", "deutschland", "allemagne"}},
	LU: {locale: "fr_LU", name: "Luxembourg", alt: []string{"lussemburgo", "luxemburg"}},
}

// Parse resolves a country code or name, case-insensitively.
func Parse(s string) (Code, error) {
	v := strings.TrimSpace(s)
	if c := Code(strings.ToUpper(v)); c.Valid() {
		return c, nil
	}

	lower := strings.ToLower(v)
	for _, c := range All {
		in := table[c]
		if lower == strings.ToLower(in.name) {
			return c, nil
		}
		for _, a := range in.alt {
			if lower == a {
				return c, nil
			}
		}
	}

	return "", fmt.Errorf("unsupported country %q", s)
}

// Valid reports whether c is one of the supported countries.
func (c Code) Valid() bool {
	_, ok := table[c]
	return ok
}

// Locale returns the fake-data locale for c, e.g. "it_IT".
func (c Code) Locale() string {
	return table[c].locale
}

// Name returns the English display name, or the raw code if unsupported.
func (c Code) Name() string {
	if in, ok := table[c]; ok {
		return in.name
	}
	return string(c)
}

func (c Code) String() string { return string(c) }
