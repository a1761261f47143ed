package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/tradematch/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore holds dot-keyed settings in process memory. It is the value
// table behind the TOML store and serves on its own when nothing is persisted.
// Getters are lenient: a value of the wrong type reads as the zero value.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore returns an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: make(map[string]any)}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

func (s *ConfigStore) GetString(key string) string {
	return valueAs[string](s, key)
}

func (s *ConfigStore) GetBool(key string) bool {
	return valueAs[bool](s, key)
}

// GetInt truncates floating point values.
func (s *ConfigStore) GetInt(key string) int {
	val, _ := s.Get(key)
	return int(number(val))
}

func (s *ConfigStore) GetFloat(key string) float64 {
	val, _ := s.Get(key)
	return number(val)
}

// GetStringSlice accepts []string or a decoded []any, skipping non-string items.
func (s *ConfigStore) GetStringSlice(key string) []string {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Snapshot returns a copy of every key and value.
func (s *ConfigStore) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// Replace swaps the whole table for values. A nil map empties the store.
func (s *ConfigStore) Replace(values map[string]any) {
	if values == nil {
		values = make(map[string]any)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = values
}

// Save and Load have nothing to persist.
func (s *ConfigStore) Save() error { return nil }
func (s *ConfigStore) Load() error { return nil }

func (s *ConfigStore) Path() string { return ":memory:" }

func valueAs[T any](s *ConfigStore, key string) T {
	val, _ := s.Get(key)
	typed, _ := val.(T)
	return typed
}

// number widens the integer and float types produced by TOML and callers.
func number(val any) float64 {
	switch n := val.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}
