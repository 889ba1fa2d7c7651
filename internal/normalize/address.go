package normalize

import (
	"regexp"
	"strings"
)

// Regional defaults used whenever an address cannot be resolved.
const (
	DefaultCity  = "Santa Barbara"
	DefaultZip   = "93101"
	DefaultState = "CA"
)

var (
	// "1221 State St, Santa Barbara, CA 93101"
	zipPattern  = regexp.MustCompile(`\d{2,}.*?\bCA\s+(\d{5})\b`)
	cityPattern = regexp.MustCompile(`,\s*([^,]+?)\s*,\s*CA\b`)
)

// ParseZip extracts the 5-digit zip from a street address, or DefaultZip.
func ParseZip(address string) string {
	if m := zipPattern.FindStringSubmatch(address); m != nil {
		return m[1]
	}
	return DefaultZip
}

// ParseCity extracts the city between the commas preceding "CA", or DefaultCity.
func ParseCity(address string) string {
	if m := cityPattern.FindStringSubmatch(address); m != nil {
		if city := strings.TrimSpace(m[1]); city != "" {
			return city
		}
	}
	return DefaultCity
}

// FindAddress returns the first street-address-shaped span of text, or "".
func FindAddress(text string) string {
	return strings.TrimSpace(zipPattern.FindString(text))
}

// HasAddress reports whether text contains something shaped like a street address.
func HasAddress(text string) bool {
	return zipPattern.MatchString(text)
}
