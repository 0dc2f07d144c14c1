package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/civicsignal/hearingwatch/internal/types"
)

// Store is the durable mapping from event id to tracked state. One run
// owns the store exclusively: load at start, mutate in memory, save at
// end. The store is not designed for concurrent writers; hosts serialize
// runs with a RunLock.
type Store interface {
	// Load returns the full tracked-event mapping. A missing or corrupt
	// backing file is never fatal: it is logged and an empty mapping is
	// returned, because losing history only causes re-notification.
	Load() (map[string]*types.TrackedEvent, error)

	// Save persists the full mapping atomically. On failure the previous
	// good state must survive on disk untouched.
	Save(events map[string]*types.TrackedEvent) error
}

// FileStore persists the mapping as an indented JSON document, one object
// keyed by event id.
type FileStore struct {
	Path   string
	logger *slog.Logger
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		Path:   path,
		logger: slog.Default().With("component", "store"),
	}
}

// Load reads the tracked-event mapping from disk. Fails soft per the
// Store contract.
func (s *FileStore) Load() (map[string]*types.TrackedEvent, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("no state file found, starting empty", "path", s.Path)
			return map[string]*types.TrackedEvent{}, nil
		}
		s.logger.Error("state file unreadable, starting empty", "path", s.Path, "err", err)
		return map[string]*types.TrackedEvent{}, nil
	}

	events := map[string]*types.TrackedEvent{}
	if err := json.Unmarshal(data, &events); err != nil {
		s.logger.Error("state file corrupt, starting empty", "path", s.Path, "err", err)
		return map[string]*types.TrackedEvent{}, nil
	}

	s.logger.Info("loaded tracked events", "path", s.Path, "count", len(events))
	return events, nil
}

// Save writes the mapping to a temp file in the same directory, then
// renames it over the target. A crash mid-write leaves the old file
// intact.
func (s *FileStore) Save(events map[string]*types.TrackedEvent) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tracked events: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp state file: %w", err)
	}

	if err := os.Rename(tmpPath, s.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	s.logger.Info("saved tracked events", "path", s.Path, "count", len(events))
	return nil
}

// MemoryStore is an in-memory Store for tests and dry runs.
type MemoryStore struct {
	events map[string]*types.TrackedEvent

	// FailSave, when set, makes Save return an error without mutating
	// anything. Used to exercise the fatal-persistence path.
	FailSave bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: map[string]*types.TrackedEvent{}}
}

// Load returns a deep copy of the held mapping, so callers mutate freely
// the way they would with a file-backed store.
func (s *MemoryStore) Load() (map[string]*types.TrackedEvent, error) {
	out := make(map[string]*types.TrackedEvent, len(s.events))
	for id, ev := range s.events {
		copied := *ev
		out[id] = &copied
	}
	return out, nil
}

// Save replaces the held mapping with a deep copy of the argument.
func (s *MemoryStore) Save(events map[string]*types.TrackedEvent) error {
	if s.FailSave {
		return fmt.Errorf("memory store: save failure injected")
	}
	next := make(map[string]*types.TrackedEvent, len(events))
	for id, ev := range events {
		copied := *ev
		next[id] = &copied
	}
	s.events = next
	return nil
}
