package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// File persists all keys in a single JSON object on disk. The whole map is
// loaded on open and rewritten on every mutation; the data set is small
// (preferences, capped history, saved articles) so this stays cheap.
type File struct {
	path string
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

// NewFile opens (or creates) a file-backed store at path. An unreadable or
// corrupt file is treated as empty: personalization data is best-effort, so
// the store resets rather than refusing to start.
func NewFile(path string) (*File, error) {
	f := &File{
		path: path,
		data: make(map[string]json.RawMessage),
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	if len(raw) == 0 {
		return f, nil
	}

	if err := json.Unmarshal(raw, &f.data); err != nil {
		slog.Warn("store file corrupt, resetting to empty", "path", path, "err", err)
		f.data = make(map[string]json.RawMessage)
	}
	return f, nil
}

func (f *File) Get(key string) ([]byte, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	raw, ok := f.data[key]
	if !ok {
		return nil, false, nil
	}
	return raw, true, nil
}

func (f *File) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.data[key] = json.RawMessage(value)
	return f.flush()
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.data, key)
	return f.flush()
}

// flush writes the full map to disk. Caller holds the write lock.
func (f *File) flush() error {
	raw, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}
	if err := os.WriteFile(f.path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	return nil
}
