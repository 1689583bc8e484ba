// Package store provides the narrow key-value persistence layer behind user
// preferences, reading history and saved articles. Engines are swappable:
// memory for tests, a JSON file or Postgres for production.
package store

import (
	"encoding/json"

	"newshub/internal/logger"
)

// PersistentStore reads and writes raw JSON values by key. Absence of a key is
// not an error; it means "use defaults".
type PersistentStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// GetJSON loads and decodes the value at key into out. Corrupt JSON is
// self-healing: the bad value is dropped, logged, and reported as absent, so
// personalization state degrades to defaults instead of failing the request.
func GetJSON(s PersistentStore, key string, out any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil {
		return false, err
	}
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		logger.Warn("discarding corrupt stored value", "key", key, "err", err)
		_ = s.Delete(key)
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(s PersistentStore, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(key, raw)
}
