package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/jarvis/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in memory only. The command line falls back
// to it when the config directory is unusable, so settings changes last
// for one run.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates a store, optionally seeded with values.
func NewConfigStore(seed ...map[string]any) *ConfigStore {
	s := &ConfigStore{values: make(map[string]any)}
	for _, m := range seed {
		maps.Copy(s.values, m)
	}
	return s
}

// Get returns the raw value for key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

// lookup returns the value for key when it has type T.
func lookup[T any](s *ConfigStore, key string) T {
	var zero T
	val, ok := s.Get(key)
	if !ok {
		return zero
	}
	if v, ok := val.(T); ok {
		return v
	}
	return zero
}

// GetString returns the string at key, or "".
func (s *ConfigStore) GetString(key string) string {
	return lookup[string](s, key)
}

// GetInt returns the integer at key, or 0. Decoded numbers arrive as
// int64 or float64 and are converted.
func (s *ConfigStore) GetInt(key string) int {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// GetBool returns the bool at key, or false.
func (s *ConfigStore) GetBool(key string) bool {
	return lookup[bool](s, key)
}

// Set stores a value.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

// Save does nothing.
func (s *ConfigStore) Save() error { return nil }

// Load does nothing.
func (s *ConfigStore) Load() error { return nil }

// Path reports that nothing is on disk.
func (s *ConfigStore) Path() string { return ":memory:" }
