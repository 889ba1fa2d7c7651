package venue

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Load reads a venue directory file: a JSON object mapping venue name to
// {"address", "city", "zip"}. Entries keep the order they appear in the file.
//
// A missing file yields an empty directory and no error. A malformed file yields an
// empty directory and the parse error, so callers can log it and carry on with
// regional defaults.
func Load(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return New(), fmt.Errorf("opening venue file: %w", err)
	}
	defer f.Close()

	d, err := Decode(f)
	if err != nil {
		return New(), fmt.Errorf("parsing venue file %s: %w", path, err)
	}
	return d, nil
}

// Decode reads a venue directory object from r, preserving key order.
func Decode(r io.Reader) (*Directory, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("venue directory must be a JSON object")
	}

	d := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}
		var e Entry
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("venue %q: %w", name, err)
		}
		e.Name = name
		d.Add(e)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return d, nil
}
