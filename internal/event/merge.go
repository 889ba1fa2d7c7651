package event

import (
	"sort"
	"time"
)

// PastGrace is how long after its start an event stays in the output.
const PastGrace = 24 * time.Hour

// Merge combines existing and incoming records by ID. An incoming record replaces
// an existing one with the same ID. Records that fail Validate or that started more
// than PastGrace before now are dropped, and the result is sorted with Sort.
//
// Merge returns a new slice and never modifies existing or incoming.
func Merge(existing, incoming []Record, now time.Time) []Record {
	return MergeAll(now, existing, incoming)
}

// MergeAll folds batches left to right, so later batches are more authoritative.
func MergeAll(now time.Time, batches ...[]Record) []Record {
	byID := make(map[string]Record)
	for _, batch := range batches {
		for _, r := range batch {
			if r.Validate() != nil {
				continue
			}
			byID[r.ID] = r
		}
	}

	cutoff := now.Add(-PastGrace)
	out := make([]Record, 0, len(byID))
	for _, r := range byID {
		if r.Start.Before(cutoff) {
			continue
		}
		out = append(out, r)
	}
	Sort(out)
	return out
}

// Sort orders records by start time, then by ID. Records with a zero start sort last.
func Sort(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return less(records[i], records[j])
	})
}

func less(a, b Record) bool {
	az, bz := a.Start.IsZero(), b.Start.IsZero()
	if az != bz {
		return bz
	}
	if !a.Start.Equal(b.Start) {
		return a.Start.Before(b.Start)
	}
	return a.ID < b.ID
}
