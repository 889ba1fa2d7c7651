package event

import "time"

// DiffResult describes how a freshly built feed differs from the previous one.
type DiffResult struct {
	New     []Record // Records whose ID was not in the previous feed
	Changed []Change // Field changes on records present in both
	Gone    []Record // Previous records missing from the current feed
}

// Change is one field that changed between runs for the same ID.
type Change struct {
	ID       string `json:"id"`
	Field    string `json:"field"` // "title", "venue", "start", "end", "genre"
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// Diff compares current against previous by ID. Results follow current's order for
// New and Changed and previous's order for Gone.
func Diff(previous, current []Record) *DiffResult {
	result := &DiffResult{
		New:     make([]Record, 0),
		Changed: make([]Change, 0),
		Gone:    make([]Record, 0),
	}

	prev := make(map[string]Record, len(previous))
	for _, r := range previous {
		prev[r.ID] = r
	}
	seen := make(map[string]struct{}, len(current))

	for _, r := range current {
		seen[r.ID] = struct{}{}
		old, ok := prev[r.ID]
		if !ok {
			result.New = append(result.New, r)
			continue
		}
		result.Changed = append(result.Changed, DetectChanges(old, r)...)
	}

	for _, r := range previous {
		if _, ok := seen[r.ID]; !ok {
			result.Gone = append(result.Gone, r)
		}
	}
	return result
}

// DetectChanges lists the fields that differ between two versions of one record.
func DetectChanges(previous, current Record) []Change {
	var changes []Change
	add := func(field, oldValue, newValue string) {
		if oldValue != newValue {
			changes = append(changes, Change{ID: current.ID, Field: field, OldValue: oldValue, NewValue: newValue})
		}
	}

	add("title", previous.Title, current.Title)
	add("venue", previous.VenueName, current.VenueName)
	add("genre", previous.Genre, current.Genre)
	add("start", formatTime(previous.Start), formatTime(current.Start))
	add("end", formatTime(previous.End), formatTime(current.End))
	return changes
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
