// Package extract turns segmented text units into event records.
//
// A unit is split on the canonical " - " separator into venue, title and time text.
// The date comes from the unit's day header or from a date token inside the unit,
// addresses come from the venue directory, and a keyword classifier assigns category
// and genre. Units whose venue, title, date or time cannot be resolved are rejected
// with a sentinel error; the extractor never guesses a missing field except for the
// start time under the "default" missing-time policy.
package extract
