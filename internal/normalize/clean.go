package normalize

import (
	"strings"

	"golang.org/x/net/html"
)

// charReplacer maps the typographic variants seen on the listing page to their
// canonical forms. Dashes become "-", bullets become "*".
var charReplacer = strings.NewReplacer(
	"\u00a0", " ", // no-break space
	"\u202f", " ", // narrow no-break space
	"\u2009", " ", // thin space
	"\u200b", "", // zero-width space
	"\ufeff", "",
	"\u2010", "-",
	"\u2011", "-",
	"\u2012", "-",
	"\u2013", "-", // en dash
	"\u2014", "-", // em dash
	"\u2015", "-",
	"\u2212", "-", // minus sign
	"\u2022", "*", // bullet
	"\u2023", "*",
	"\u2043", "*",
	"\u25aa", "*",
	"\u25cf", "*",
	"\u00b7", "*",
	"\u2019", "'",
	"\u2018", "'",
	"\u201c", `"`,
	"\u201d", `"`,
)

// Clean unescapes HTML entities, unifies dash and bullet characters, collapses
// whitespace runs to a single space and trims the result.
//
// Clean works on a single logical line: newlines are collapsed like any other
// whitespace.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(s)
	s = charReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// CleanLines applies Clean to every line of s and drops lines that end up empty.
func CleanLines(s string) []string {
	raw := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = Clean(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// StripBullet removes leading bullet markers and the whitespace after them.
func StripBullet(s string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), "*"))
}

// HasBullet reports whether a cleaned line starts with a bullet marker.
func HasBullet(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "*")
}
