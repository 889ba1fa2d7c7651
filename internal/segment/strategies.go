package segment

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/svb-events/internal/datetime"
	"github.com/pfrederiksen/svb-events/internal/normalize"
)

// cardSelector matches the event markup of common calendar plugins.
const cardSelector = ".tribe-events-calendar-list__event, .tribe-events-list-event, " +
	"article.type-tribe_events, .type-tribe_events, .event-card, .eventlist-event, " +
	".event-item, .event-listing, .mec-event-article, .ai1ec-event, .simcal-event, " +
	"[itemtype*='schema.org/Event']"

// Sub-element selectors inside a card, most specific first.
const titleSelector = ".tribe-events-calendar-list__event-title, .tribe-events-list-event-title, " +
	".event-title, .eventlist-title, .simcal-event-title, [itemprop='name'], h2, h3, h4"

const dateSelector = ".tribe-events-calendar-list__event-datetime, .tribe-event-date-start, " +
	".event-date, .eventlist-meta-date, .simcal-event-start-date, [itemprop='startDate']"

const timeSelector = ".tribe-event-time, .event-time, .eventlist-meta-time, .simcal-event-start-time"

const venueSelector = ".tribe-events-calendar-list__event-venue-title, .tribe-venue, .event-venue, " +
	".eventlist-meta-venue, .simcal-event-address, [itemprop='location'] [itemprop='name'], .venue"

const addressSelector = ".tribe-events-calendar-list__event-venue-address, .tribe-address, " +
	".event-address, .eventlist-meta-address, [itemprop='address']"

// selectorUnits reads one unit per calendar card, taking fields from sub-elements
// where the markup provides them.
func selectorUnits(p *Page) []RawUnit {
	if p.doc == nil {
		return nil
	}

	var units []RawUnit
	p.doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		// Nested matches belong to their outermost card.
		if card.ParentsFiltered(cardSelector).Length() > 0 {
			return
		}
		u := RawUnit{
			Text:     nodeText(card),
			Title:    firstText(card, titleSelector),
			Date:     firstAttrOrText(card, dateSelector, "datetime", "content"),
			TimeText: firstText(card, timeSelector),
			Venue:    firstText(card, venueSelector),
			Address:  firstText(card, addressSelector),
		}
		if u.Date == "" {
			u.Date = firstAttrOrText(card, "time[datetime]", "datetime")
		}
		units = append(units, u)
	})
	return units
}

func firstText(s *goquery.Selection, selector string) string {
	return nodeText(s.Find(selector).First())
}

func firstAttrOrText(s *goquery.Selection, selector string, attrs ...string) string {
	el := s.Find(selector).First()
	if el.Length() == 0 {
		return ""
	}
	for _, attr := range attrs {
		if v, ok := el.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return nodeText(el)
}

// headerUnits walks lines under each day header. A header's scope ends at the next
// header or break. Qualifying lines start with a bullet, contain two separators, or
// contain one separator and a time. A bare bullet venue line takes the following
// "- artist - time" lines as its events.
func headerUnits(p *Page) []RawUnit {
	lines := p.lines
	var units []RawUnit
	header, region := "", ""

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if line.Break {
			header, region = "", ""
			continue
		}
		text := line.Text
		if datetime.IsDateHeader(text) {
			header, region = text, ""
			continue
		}
		if header == "" {
			continue
		}
		if name, ok := normalize.RegionLine(text); ok {
			region = name
			continue
		}

		body := normalize.StripBullet(text)
		if normalize.IsRegionHeader(body) {
			region = body
			continue
		}

		bullet := normalize.HasBullet(text)
		seps := countSeparators(body)

		if bullet && seps == 0 && !hasTime(body) {
			// Venue line; its events are the artist lines that follow. A venue
			// with no artist lines lists nothing.
			for i+1 < len(lines) && isArtistLine(lines[i+1]) {
				i++
				artist := strings.TrimSpace(strings.TrimLeft(lines[i].Text, "- "))
				units = append(units, RawUnit{Text: body + " - " + artist, Header: header, Region: region})
			}
			continue
		}

		if bullet || seps >= 2 || (seps == 1 && hasTime(body)) {
			units = append(units, RawUnit{Text: body, Header: header, Region: region})
		}
	}
	return units
}

func isArtistLine(l Line) bool {
	if l.Break || !strings.HasPrefix(l.Text, "-") {
		return false
	}
	if _, ok := normalize.RegionLine(l.Text); ok {
		return false
	}
	return strings.TrimSpace(strings.TrimLeft(l.Text, "- ")) != ""
}

func hasTime(text string) bool {
	_, _, err := datetime.FindTime(text)
	return err == nil
}

func hasDate(text string) bool {
	return datetime.FindDate(text) != ""
}

// delimiterUnits splits the whole page on bullet markers. It only applies to pages
// without day headers.
func delimiterUnits(p *Page) []RawUnit {
	for _, l := range p.lines {
		if !l.Break && datetime.IsDateHeader(l.Text) {
			return nil
		}
	}

	text := p.Text()
	if !strings.Contains(text, "*") {
		return nil
	}
	var units []RawUnit
	for _, part := range strings.Split(text, "*") {
		if part = normalize.Clean(part); part != "" {
			units = append(units, RawUnit{Text: part})
		}
	}
	return units
}

const blockSelector = "p, li, dd, td, article, section, div"

// heuristicUnits keeps the innermost blocks that contain both a date and a time.
func heuristicUnits(p *Page) []RawUnit {
	qualifies := func(text string) bool {
		return hasDate(text) && hasTime(text)
	}

	if p.doc == nil {
		var units []RawUnit
		for _, b := range p.blocks {
			if qualifies(b) {
				units = append(units, RawUnit{Text: b})
			}
		}
		return units
	}

	var units []RawUnit
	p.doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		text := nodeText(s)
		if !qualifies(text) {
			return
		}
		inner := s.Find(blockSelector).FilterFunction(func(_ int, c *goquery.Selection) bool {
			return qualifies(nodeText(c))
		})
		if inner.Length() > 0 {
			return
		}
		units = append(units, RawUnit{Text: text})
	})
	return units
}
