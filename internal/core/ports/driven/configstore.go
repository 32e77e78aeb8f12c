package driven

import "time"

// ConfigStore holds settings as flat dotted keys such as "chat.top_k" or
// "embedding.provider". The typed getters never fail: a missing key or a
// value of the wrong type reads as the zero value, and the settings service
// substitutes its defaults.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string
	GetBool(key string) bool

	// GetInt accepts any integer encoding the backing format produces.
	GetInt(key string) int

	// GetFloat widens integers, so "temperature = 1" reads as 1.0.
	GetFloat(key string) float64

	// GetDuration parses strings such as "30s" or "1m30s".
	GetDuration(key string) time.Duration

	// GetStringSlice drops non-string elements of a mixed array.
	GetStringSlice(key string) []string

	// Set writes one key and persists it before returning.
	Set(key string, value any) error

	// Keys lists the set keys in sorted order.
	Keys() []string

	// Load re-reads the backing storage, replacing everything in memory.
	Load() error

	// Path is the backing file, or ":memory:".
	Path() string
}
