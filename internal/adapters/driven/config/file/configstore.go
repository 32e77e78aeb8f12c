package file

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/merkuze-health/merkuze/internal/adapters/driven/config/convert"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// DirName is the per-user directory holding config.toml, prompts and the index.
const DirName = ".merkuze"

const fileName = "config.toml"

// DefaultDir returns ~/.merkuze.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DirName), nil
}

// ConfigStore persists settings in <dir>/config.toml. Dotted keys such as
// "chat.top_k" map to TOML tables; every Set rewrites the whole file.
type ConfigStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// NewConfigStore opens dir (DefaultDir when empty), creating it if needed.
// A missing file is an empty configuration; a malformed one is an error.
func NewConfigStore(dir string) (*ConfigStore, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(dir, fileName), values: make(map[string]any)}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
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

// GetDuration reads strings such as "45s"; Set stores durations that way.
func (s *ConfigStore) GetDuration(key string) time.Duration {
	return convert.Lookup(s.Get, key, convert.Duration)
}

func (s *ConfigStore) GetStringSlice(key string) []string {
	return convert.Lookup(s.Get, key, convert.StringSlice)
}

// Set updates key and writes the file. The in-memory value is kept even
// when the write fails.
func (s *ConfigStore) Set(key string, value any) error {
	if d, ok := value.(time.Duration); ok {
		value = d.String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.write()
}

func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.values))
}

// write encodes the values as nested tables. The file may hold API keys, so
// it is readable by the owner only. Caller holds mu.
func (s *ConfigStore) write() error {
	data, err := toml.Marshal(nestMap(s.values))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load replaces the values with the file's content. A deleted file empties
// the store.
func (s *ConfigStore) Load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		data, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parse %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.values = flattenMap(tree, "")
	s.mu.Unlock()
	return nil
}

func (s *ConfigStore) Path() string { return s.path }

// flattenMap turns {"chat": {"top_k": 8}} into {"chat.top_k": 8}.
func flattenMap(tree map[string]any, prefix string) map[string]any {
	flat := make(map[string]any, len(tree))
	for name, v := range tree {
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		table, ok := v.(map[string]any)
		if !ok {
			flat[key] = v
			continue
		}
		maps.Copy(flat, flattenMap(table, key))
	}
	return flat
}

// nestMap inverts flattenMap. When a key is also the prefix of another key
// ("a" and "a.b"), the one that would collide stays at the root under its
// full dotted name, which TOML quotes.
func nestMap(flat map[string]any) map[string]any {
	root := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		parent, leaf, ok := tableFor(root, strings.Split(key, "."))
		if !ok {
			root[key] = flat[key]
			continue
		}
		parent[leaf] = flat[key]
	}
	return root
}

// tableFor walks to the table that should hold the last path element,
// creating tables on the way. It fails when a scalar sits on the path or
// a table already occupies the leaf.
func tableFor(root map[string]any, path []string) (map[string]any, string, bool) {
	node := root
	for _, part := range path[:len(path)-1] {
		switch child := node[part].(type) {
		case nil:
			next := make(map[string]any)
			node[part] = next
			node = next
		case map[string]any:
			node = child
		default:
			return nil, "", false
		}
	}
	leaf := path[len(path)-1]
	if _, isTable := node[leaf].(map[string]any); isTable {
		return nil, "", false
	}
	return node, leaf, true
}
