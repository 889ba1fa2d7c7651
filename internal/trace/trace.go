// Package trace records intermediate parse artifacts for debugging.
//
// Production runs use Nop. A Dir sink writes each artifact as an indented JSON file
// so a scrape that produced nothing can be inspected stage by stage.
package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// Sink receives diagnostic snapshots. Implementations must not fail the caller.
type Sink interface {
	Record(stage string, v interface{})
}

// Nop discards everything.
type Nop struct{}

// Record implements Sink.
func (Nop) Record(string, interface{}) {}

// OrNop returns s, or Nop when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop{}
	}
	return s
}

// Dir writes each snapshot to "<dir>/<seq>_<stage>.json".
type Dir struct {
	path string

	mu  sync.Mutex
	seq int
	err error
}

// NewDir creates the trace directory if needed.
func NewDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("creating trace directory: %w", err)
	}
	return &Dir{path: path}, nil
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

// Record implements Sink. Write failures are kept for Err and otherwise ignored.
func (d *Dir) Record(stage string, v interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	name := fmt.Sprintf("%03d_%s.json", d.seq, unsafeName.ReplaceAllString(stage, "_"))

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		d.err = fmt.Errorf("encoding %s: %w", stage, err)
		return
	}
	if err := os.WriteFile(filepath.Join(d.path, name), data, 0644); err != nil {
		d.err = fmt.Errorf("writing %s: %w", name, err)
	}
}

// Err returns the most recent write failure, if any.
func (d *Dir) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Path returns the trace directory.
func (d *Dir) Path() string {
	return d.path
}

// Memory keeps snapshots in memory, for tests.
type Memory struct {
	mu      sync.Mutex
	Entries []Entry
}

// Entry is one recorded snapshot.
type Entry struct {
	Stage string
	Value interface{}
}

// Record implements Sink.
func (m *Memory) Record(stage string, v interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, Entry{Stage: stage, Value: v})
}

// Stages returns the recorded stage names in order.
func (m *Memory) Stages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Stage
	}
	return out
}
