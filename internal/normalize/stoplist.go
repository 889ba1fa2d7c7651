package normalize

import "strings"

// boilerplate holds navigation and footer phrases that are never events.
// Keys are compacted with compactKey.
var boilerplate = toSet(
	"home", "about", "about us", "contact", "contact us", "menu", "search",
	"subscribe", "newsletter", "calendar", "events", "event calendar", "blog",
	"privacy policy", "privacy", "terms", "terms of service", "login", "log in",
	"sign up", "signup", "register", "share", "facebook", "instagram", "twitter",
	"youtube", "email", "donate", "support us", "read more", "more info", "more",
	"tickets", "buy tickets", "skip to content", "back to top", "live notes sb",
	"livenotessb", "venues", "musicians", "advertise", "submit an event",
	"powered by wordpress", "copyright", "all rights reserved", "tbd", "tba",
	"closed", "no music", "no live music", "cancelled", "canceled",
)

// regions holds the section headers the listing groups venues under.
var regions = toSet(
	"santa barbara", "downtown santa barbara", "santa barbara downtown", "funk zone",
	"goleta", "goleta/i.v", "goleta/i.v.", "goleta/iv", "isla vista",
	"montecito", "carpinteria", "summerland", "santa ynez", "santa ynez valley",
	"solvang", "buellton", "los olivos", "los alamos", "lompoc", "santa maria",
	"orcutt", "ventura", "ojai", "mountain", "mountains", "north county",
	"south county", "mid county", "santa barbara county", "central coast",
)

func toSet(items ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[compactKey(item)] = struct{}{}
	}
	return set
}

// compactKey lowercases s and keeps only letters and digits, so "GOLETA/I.V",
// "Goleta / IV" and "– Goleta/I.V –" all compare equal.
func compactKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(StripDiacritics(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsBoilerplate reports whether s is a known navigation or footer phrase.
func IsBoilerplate(s string) bool {
	key := compactKey(s)
	if key == "" {
		return true
	}
	_, ok := boilerplate[key]
	return ok
}

// IsRegionHeader reports whether s names one of the listing's region sections.
func IsRegionHeader(s string) bool {
	_, ok := regions[compactKey(s)]
	return ok
}

// RegionLine reports whether a cleaned line is a dash-wrapped region header such as
// "- SANTA BARBARA -" and returns the region name.
func RegionLine(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if len(line) < 3 || !strings.HasPrefix(line, "-") || !strings.HasSuffix(line, "-") {
		return "", false
	}
	name := strings.TrimSpace(strings.Trim(line, "- "))
	if name == "" || strings.Contains(name, " - ") {
		return "", false
	}
	return name, true
}
