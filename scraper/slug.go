package scraper

import (
	"regexp"
	"strings"
)

var (
	qualifierRE = regexp.MustCompile(`\(([^)]*)\)`)
	nonSlugRE   = regexp.MustCompile(`[^\w\s-]`)
	separatorRE = regexp.MustCompile(`[-\s]+`)
)

// NormalizeNameForURL turns a location name into the path segment used by
// the price site: "Vadodara(Baroda)" becomes "vadodara-baroda".
func NormalizeNameForURL(name string) string {
	name = qualifierRE.ReplaceAllString(name, "-${1}")
	name = nonSlugRE.ReplaceAllString(name, "")
	name = separatorRE.ReplaceAllString(name, "-")
	return strings.Trim(strings.ToLower(name), "-")
}
