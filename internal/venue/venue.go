package venue

import (
	"strings"

	"github.com/pfrederiksen/svb-events/internal/normalize"
)

// Entry is one known venue.
type Entry struct {
	Name    string `json:"-"`
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
}

// AddressInfo is the result of a lookup. Fields are empty strings rather than
// missing when nothing is known.
type AddressInfo struct {
	Name    string // Directory name of the matched venue, or the query
	Address string // Street address ("" when unknown)
	City    string // City, never empty
	Zip     string // 5-digit zip, never empty
	Matched bool   // True when a directory entry matched
}

// Directory is an insertion-ordered venue table.
type Directory struct {
	entries []Entry
	index   map[string]int
}

// New creates a directory holding entries in the given order.
func New(entries ...Entry) *Directory {
	d := &Directory{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		d.Add(e)
	}
	return d
}

// Add appends an entry. An entry whose name is already present replaces it in place.
// Missing city and zip are derived from the address.
func (d *Directory) Add(e Entry) {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return
	}
	e.Address = normalize.Clean(e.Address)
	if e.City == "" {
		e.City = normalize.ParseCity(e.Address)
	}
	if e.Zip == "" {
		e.Zip = normalize.ParseZip(e.Address)
	}
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[e.Name]; ok {
		d.entries[i] = e
		return
	}
	d.index[e.Name] = len(d.entries)
	d.entries = append(d.entries, e)
}

// Len returns the number of entries.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

// Entries returns a copy of the entries in directory order.
func (d *Directory) Entries() []Entry {
	if d == nil {
		return nil
	}
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Lookup resolves a venue name to address information.
//
// Matching tries an exact name first, then a case-insensitive substring match in
// either direction, taking the first entry in directory order. Unmatched names fall
// back to a town named inside the query, then to the regional default.
func (d *Directory) Lookup(name string) AddressInfo {
	return d.LookupHint(name, "")
}

// LookupHint is Lookup with a region hint, such as the section header the venue was
// listed under. The hint is only consulted for the town default.
func (d *Directory) LookupHint(name, hint string) AddressInfo {
	name = normalize.Clean(name)
	if e, ok := d.match(name); ok {
		return AddressInfo{Name: e.Name, Address: e.Address, City: e.City, Zip: e.Zip, Matched: true}
	}

	info := AddressInfo{Name: name, City: normalize.DefaultCity, Zip: normalize.DefaultZip}
	for _, text := range []string{name, hint} {
		if t, ok := townFor(text); ok {
			info.City, info.Zip = t.city, t.zip
			break
		}
	}
	return info
}

// minSubstring keeps very short queries such as "The" from matching half the table.
const minSubstring = 3

func (d *Directory) match(name string) (Entry, bool) {
	if d == nil || name == "" {
		return Entry{}, false
	}
	if i, ok := d.index[name]; ok {
		return d.entries[i], true
	}

	query := fold(name)
	if len(query) < minSubstring {
		return Entry{}, false
	}
	for _, e := range d.entries {
		key := fold(e.Name)
		if key == "" {
			continue
		}
		if strings.Contains(key, query) || (len(key) >= minSubstring && strings.Contains(query, key)) {
			return e, true
		}
	}
	return Entry{}, false
}

func fold(s string) string {
	return strings.ToLower(normalize.StripDiacritics(s))
}

type town struct {
	keyword string
	city    string
	zip     string
}

// towns is checked in order; longer names come before names they contain.
var towns = []town{
	{"santa ynez", "Santa Ynez", "93460"},
	{"los olivos", "Los Olivos", "93441"},
	{"los alamos", "Los Alamos", "93440"},
	{"solvang", "Solvang", "93463"},
	{"buellton", "Buellton", "93427"},
	{"santa maria", "Santa Maria", "93454"},
	{"orcutt", "Orcutt", "93455"},
	{"lompoc", "Lompoc", "93436"},
	{"isla vista", "Isla Vista", "93117"},
	{"goleta", "Goleta", "93117"},
	{"carpinteria", "Carpinteria", "93013"},
	{"summerland", "Summerland", "93067"},
	{"montecito", "Montecito", "93108"},
}

func townFor(text string) (town, bool) {
	text = fold(text)
	if text == "" {
		return town{}, false
	}
	for _, t := range towns {
		if strings.Contains(text, t.keyword) {
			return t, true
		}
	}
	return town{}, false
}
