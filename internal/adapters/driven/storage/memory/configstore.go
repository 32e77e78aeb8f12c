package memory

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/merkuze-health/merkuze/internal/adapters/driven/config/convert"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. Tests and --in-memory runs use it in
// place of the TOML file; values keep the Go type they were set with.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

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
	return convert.Lookup(s.Get, key, convert.String)
}

func (s *ConfigStore) GetBool(key string) bool {
	return convert.Lookup(s.Get, key, convert.Bool)
}

func (s *ConfigStore) GetInt(key string) int {
	return convert.Lookup(s.Get, key, convert.Int)
}

func (s *ConfigStore) GetFloat(key string) float64 {
	return convert.Lookup(s.Get, key, convert.Float)
}

func (s *ConfigStore) GetDuration(key string) time.Duration {
	return convert.Lookup(s.Get, key, convert.Duration)
}

func (s *ConfigStore) GetStringSlice(key string) []string {
	return convert.Lookup(s.Get, key, convert.StringSlice)
}

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.values))
}

// Load is a no-op; there is nothing behind the map.
func (s *ConfigStore) Load() error { return nil }

func (s *ConfigStore) Path() string { return ":memory:" }
