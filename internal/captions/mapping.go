// Package captions loads the caption mapping that associates natural keys with caption text.
package captions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hyperjump/shashin/internal/models"
)

// Mapping is a read-only, insertion-ordered set of caption entries.
type Mapping struct {
	entries []models.CaptionEntry
	index   map[string]int
}

// NewMapping builds a mapping from entries. A repeated key keeps its first position and its last value.
func NewMapping(entries ...models.CaptionEntry) *Mapping {
	m := &Mapping{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		m.add(e)
	}
	return m
}

func (m *Mapping) add(e models.CaptionEntry) {
	if i, ok := m.index[e.Key]; ok {
		m.entries[i] = e
		return
	}
	m.index[e.Key] = len(m.entries)
	m.entries = append(m.entries, e)
}

// Lookup returns the entry for key.
func (m *Mapping) Lookup(key string) (models.CaptionEntry, bool) {
	if m == nil {
		return models.CaptionEntry{}, false
	}
	i, ok := m.index[key]
	if !ok {
		return models.CaptionEntry{}, false
	}
	return m.entries[i], true
}

// Caption returns the caption text for key.
func (m *Mapping) Caption(key string) (string, bool) {
	e, ok := m.Lookup(key)
	return e.Caption, ok
}

// Entries returns the entries in file order.
func (m *Mapping) Entries() []models.CaptionEntry {
	if m == nil {
		return nil
	}
	return append([]models.CaptionEntry(nil), m.entries...)
}

// Len returns the number of distinct keys.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Load reads a mapping file.
func Load(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open caption mapping: %w", err)
	}
	defer f.Close()
	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse caption mapping %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a JSON object whose values are either a caption string or an array
// whose first element is the caption and whose remaining elements are extra metadata.
func Parse(r io.Reader) (*Mapping, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}
	m := NewMapping()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		entry, err := parseEntry(key, raw)
		if err != nil {
			return nil, err
		}
		m.add(entry)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return m, nil
}

func parseEntry(key string, raw json.RawMessage) (models.CaptionEntry, error) {
	raw = bytes.TrimSpace(raw)
	entry := models.CaptionEntry{Key: key}
	if len(raw) == 0 {
		return entry, fmt.Errorf("key %q: empty value", key)
	}
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &entry.Caption); err != nil {
			return entry, fmt.Errorf("key %q: %w", key, err)
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return entry, fmt.Errorf("key %q: %w", key, err)
		}
		if len(items) == 0 {
			return entry, fmt.Errorf("key %q: empty array", key)
		}
		for i, item := range items {
			s := scalarString(item)
			if i == 0 {
				entry.Caption = s
				continue
			}
			entry.Extra = append(entry.Extra, s)
		}
	default:
		return entry, fmt.Errorf("key %q: value must be a string or an array", key)
	}
	return entry, nil
}

func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
