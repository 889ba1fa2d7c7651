package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// hashNamespace scopes ShortHash so its values never coincide with other
// name-based UUIDs.
var hashNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://livenotessb.com/svb-events"))

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// hashSuffixLen is the length of the hash appended to truncated slugs, including its hyphen.
const hashSuffixLen = 7

// ShortHash returns an 8-character deterministic hex digest of s.
func ShortHash(s string) string {
	id := uuid.NewSHA1(hashNamespace, []byte(s))
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}

// StripDiacritics folds accented characters to their base letters ("Viñero" -> "Vinero").
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Slug lowercases s, strips diacritics and joins alphanumeric runs with single hyphens.
//
// A slug longer than maxLen is cut at the last hyphen that fits and suffixed with a
// short hash of the full slug, so two long names that share a prefix still differ.
// An empty result falls back to ShortHash of the input. Slug never returns "".
func Slug(s string, maxLen int) string {
	slug := strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(StripDiacritics(s)), "-"), "-")
	if slug == "" {
		return ShortHash(s)
	}
	if maxLen <= 0 || len(slug) <= maxLen {
		return slug
	}
	if maxLen <= hashSuffixLen {
		return ShortHash(slug)[:maxLen]
	}

	keep := maxLen - hashSuffixLen
	head := slug[:keep]
	// slug[keep] == '-' means head already ends on a word boundary.
	if slug[keep] != '-' {
		if i := strings.LastIndexByte(head, '-'); i > 0 {
			head = head[:i]
		}
	}
	head = strings.TrimRight(head, "-")
	return head + "-" + ShortHash(slug)[:hashSuffixLen-1]
}
