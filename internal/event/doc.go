// Package event defines the canonical event record and the engine that merges,
// de-duplicates and orders records from several sources and runs.
//
// Each record carries a deterministic ID built from its date, venue and title, so the
// same listing scraped twice yields the same ID. Merge keys records by ID with the
// later batch winning, drops events that ended their grace window in the past and
// sorts the rest by start time. Records are values; merging never mutates its inputs.
package event
