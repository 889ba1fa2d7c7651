package extract

import (
	"strings"

	"github.com/pfrederiksen/svb-events/internal/event"
)

const (
	// DefaultGenre is assigned when no keyword rule matches.
	DefaultGenre = "Contemporary"

	// CategoryWine is the category for music at wineries and vineyards.
	CategoryWine = "Music & Wine"
)

type genreRule struct {
	genre    string
	keywords []string
}

// genreRules are checked in order; the first rule with a matching keyword wins.
var genreRules = []genreRule{
	{"Classical", []string{"classical", "opera", "symphony", "chamber"}},
	{"Jazz", []string{"jazz", "blues"}},
	{"Country", []string{"country", "americana", "bluegrass"}},
	{"Rock", []string{"rock", "indie", "alternative"}},
	{"Folk", []string{"folk", "singer-songwriter", "singer/songwriter", "acoustic"}},
}

// Classify assigns a category and genre from the venue, title and any explicit genre.
// An explicit genre is always kept as the genre.
func Classify(venue, title, explicitGenre string) (category, genre string) {
	text := strings.ToLower(venue + " " + title + " " + explicitGenre)
	category, genre = event.DefaultCategory, DefaultGenre

	matched := false
	for _, rule := range genreRules {
		if containsAny(text, rule.keywords) {
			genre, matched = rule.genre, true
			break
		}
	}
	if !matched {
		v := strings.ToLower(venue)
		if strings.Contains(v, "winery") || strings.Contains(v, "vineyard") {
			category, genre = CategoryWine, "Folk"
		}
	}

	if explicitGenre != "" {
		genre = explicitGenre
	}
	return category, genre
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
