package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Store persists a Library as a JSON document on disk.
//
// The current format wraps the poses in a versioned envelope:
//
//	{"version": 1, "gestures": {"<id>": {"name": ..., "landmarks": [...], ...}}}
//
// Earlier releases wrote the id->pose mapping directly at the top level; Load
// still accepts that legacy shape and rewrites it in the current format.
type Store struct {
	path string
	log  *slog.Logger
}

// NewStore creates a Store for the given file path.
func NewStore(path string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{path: path, log: log}
}

// Path returns the store's file path.
func (s *Store) Path() string {
	return s.path
}

type document struct {
	Version  int                       `json:"version"`
	Gestures map[string]*ReferencePose `json:"gestures"`
}

// Load reads the library from disk. A missing or unparseable file is not an
// error: the built-in default poses are used and persisted back. Invalid
// entries (missing fields, empty landmark arrays) are dropped with a warning.
// The returned Library is always usable; the error reports only a failure to
// write the recovered store back to disk.
func (s *Store) Load() (*Library, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("gesture store unreadable, starting from defaults", "path", s.path, "error", err)
		}
		lib := DefaultLibrary()
		return lib, s.Save(lib)
	}

	records, legacy, err := decodeRecords(data)
	if err != nil {
		s.log.Warn("gesture store corrupt, resetting to defaults", "path", s.path, "error", err)
		lib := DefaultLibrary()
		return lib, s.Save(lib)
	}

	dirty := legacy
	for id, p := range records {
		if p == nil || p.Name == "" || p.Message == "" || len(p.Landmarks) == 0 {
			s.log.Warn("dropping invalid gesture entry", "id", id)
			delete(records, id)
			dirty = true
		}
	}

	// Re-seed any default pose that disappeared, matching by name so a
	// re-enrolled "Fist" under a new id is not duplicated.
	names := make(map[string]bool, len(records))
	for _, p := range records {
		names[strings.ToLower(p.Name)] = true
	}
	for _, def := range Defaults() {
		if !names[strings.ToLower(def.Name)] {
			records[def.ID] = def
			dirty = true
		}
	}

	lib := fromRecords(records)
	if dirty {
		if err := s.Save(lib); err != nil {
			return lib, err
		}
	}
	return lib, nil
}

// decodeRecords parses either the wrapped or the legacy flat document shape.
// The second return value reports whether the legacy shape was found.
func decodeRecords(data []byte) (map[string]*ReferencePose, bool, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err == nil && doc.Gestures != nil {
		return doc.Gestures, false, nil
	}

	var flat map[string]*ReferencePose
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, false, fmt.Errorf("parse gesture store: %w", err)
	}
	if flat == nil {
		flat = make(map[string]*ReferencePose)
	}
	return flat, true, nil
}

// Save writes the library to disk atomically: the document is written to a
// temporary file first and then renamed over the target, so a failed write
// never corrupts an existing store.
func (s *Store) Save(lib *Library) error {
	records := make(map[string]*ReferencePose)
	for _, p := range lib.All() {
		records[p.ID] = p
	}

	data, err := json.MarshalIndent(document{Version: 1, Gestures: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal gesture store: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("write gesture store: %w", err)
	}

	// Remove-then-rename: plain os.Rename cannot replace an existing file on
	// every platform this runs on.
	if _, err := os.Stat(s.path); err == nil {
		if err := os.Remove(s.path); err != nil {
			os.Remove(tempPath)
			return fmt.Errorf("replace gesture store: %w", err)
		}
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("replace gesture store: %w", err)
	}

	return nil
}
