package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/svb-events/internal/event"
)

// DefaultPath is the output file used when none is configured.
const DefaultPath = "events.json"

// generatedLayout is ISO-8601 UTC at second precision with a Z suffix.
const generatedLayout = "2006-01-02T15:04:05Z"

// Document is the wrapped output form.
type Document struct {
	Generated string         `json:"generated"`
	Events    []event.Record `json:"events"`
}

// NewDocument wraps records with a generation timestamp. A nil slice becomes an
// empty one so the document always carries an "events" array.
func NewDocument(records []event.Record, now time.Time) *Document {
	if records == nil {
		records = []event.Record{}
	}
	return &Document{Generated: GeneratedAt(now), Events: records}
}

// GeneratedAt formats t for the "generated" field.
func GeneratedAt(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(generatedLayout)
}

// Storage handles the output document on disk.
type Storage struct {
	path string
}

// New creates a Storage for the output file at path, expanding a leading "~/".
func New(path string) (*Storage, error) {
	if path == "" {
		path = DefaultPath
	}
	expanded, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}
	return &Storage{path: expanded}, nil
}

// Path returns the output file path.
func (s *Storage) Path() string {
	return s.path
}

// Load reads the previous output. A missing or empty file yields no records.
func (s *Storage) Load() ([]event.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []event.Record{}, nil
		}
		return nil, fmt.Errorf("reading output: %w", err)
	}
	records, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return records, nil
}

// Save writes records as a wrapped document and returns it.
func (s *Storage) Save(records []event.Record, now time.Time) (*Document, error) {
	doc := NewDocument(records, now)
	data, err := Encode(doc)
	if err != nil {
		return nil, err
	}
	if err := WriteAtomic(s.path, data); err != nil {
		return nil, err
	}
	return doc, nil
}

// Decode parses either a wrapped document or a bare array of records.
func Decode(data []byte) ([]event.Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []event.Record{}, nil
	}

	var rows []json.RawMessage
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("decoding event array: %w", err)
		}
	case '{':
		var wrapped struct {
			Events []json.RawMessage `json:"events"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("decoding document: %w", err)
		}
		rows = wrapped.Events
	default:
		return nil, fmt.Errorf("expected a JSON object or array")
	}

	records := make([]event.Record, 0, len(rows))
	for i, row := range rows {
		if isGeneratedRow(row) {
			continue
		}
		var r event.Record
		if err := json.Unmarshal(row, &r); err != nil {
			return nil, fmt.Errorf("decoding event %d: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// isGeneratedRow reports whether row is a stray {"generated": ...} metadata object.
func isGeneratedRow(row json.RawMessage) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(row, &fields); err != nil {
		return false
	}
	_, ok := fields["generated"]
	return ok && len(fields) == 1
}

// Encode renders a document as indented JSON without HTML escaping.
func Encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding output: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteAtomic writes data to path through a temporary file in the same directory,
// creating the directory if needed.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
