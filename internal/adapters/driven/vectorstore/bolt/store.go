// Package bolt provides a persistent vector store on a single bbolt file.
// Each collection is one bucket; a meta bucket records its dimension and
// metric. Entries are cached in memory per collection and searched by brute
// force cosine similarity.
package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/merkuze-health/merkuze/internal/adapters/driven/vectorstore"
	"github.com/merkuze-health/merkuze/internal/core/domain"
	"github.com/merkuze-health/merkuze/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

const backendName = "bolt"

var bucketCollections = []byte("_collections")

// collectionPrefix keeps collection buckets apart from the meta bucket.
const collectionPrefix = "c/"

// Store is a bbolt-backed implementation of driven.VectorStore.
type Store struct {
	db   *bbolt.DB
	path string

	mu    sync.RWMutex
	cache map[string]map[string]domain.IndexedEntry
}

type collectionMeta struct {
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
}

type storedVector struct {
	Vector   []float32         `json:"v"`
	Metadata map[string]string `json:"m,omitempty"`
}

// Open opens or creates the store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, &domain.IndexUnavailableError{Backend: backendName, Op: "open", Err: err}
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCollections)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create collections bucket: %w", err)
	}

	return &Store{
		db:    db,
		path:  path,
		cache: make(map[string]map[string]domain.IndexedEntry),
	}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func bucketName(name string) []byte {
	return []byte(collectionPrefix + name)
}

func readMeta(tx *bbolt.Tx, name string) (*collectionMeta, error) {
	raw := tx.Bucket(bucketCollections).Get([]byte(name))
	if raw == nil {
		return nil, fmt.Errorf("collection %s: %w", name, domain.ErrNotFound)
	}
	var meta collectionMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", name, err)
	}
	return &meta, nil
}

// ListCollections returns all collections sorted by name.
func (s *Store) ListCollections(_ context.Context) ([]domain.CollectionInfo, error) {
	var infos []domain.CollectionInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCollections).ForEach(func(k, v []byte) error {
			var meta collectionMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return fmt.Errorf("decode collection %s: %w", k, err)
			}
			infos = append(infos, domain.CollectionInfo{Name: string(k), Dimension: meta.Dimension, Metric: meta.Metric})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// CreateCollection creates an empty collection.
func (s *Store) CreateCollection(_ context.Context, name string, dimension int, metric string) error {
	if name == "" || dimension <= 0 {
		return fmt.Errorf("create collection %q (dimension %d): %w", name, dimension, domain.ErrInvalidInput)
	}
	if metric == "" {
		metric = domain.MetricCosine
	}

	data, err := json.Marshal(collectionMeta{Dimension: dimension, Metric: metric})
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketCollections)
		if meta.Get([]byte(name)) != nil {
			return fmt.Errorf("collection %s: %w", name, domain.ErrAlreadyExists)
		}
		if _, err := tx.CreateBucketIfNotExists(bucketName(name)); err != nil {
			return fmt.Errorf("create bucket for %s: %w", name, err)
		}
		return meta.Put([]byte(name), data)
	})
}

// DescribeCollection returns a collection's identity.
func (s *Store) DescribeCollection(_ context.Context, name string) (*domain.CollectionInfo, error) {
	var info *domain.CollectionInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		meta, err := readMeta(tx, name)
		if err != nil {
			return err
		}
		info = &domain.CollectionInfo{Name: name, Dimension: meta.Dimension, Metric: meta.Metric}
		return nil
	})
	return info, err
}

// DeleteCollection removes a collection and its entries.
func (s *Store) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := readMeta(tx, name); err != nil {
			return err
		}
		if err := tx.DeleteBucket(bucketName(name)); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return fmt.Errorf("delete bucket for %s: %w", name, err)
		}
		return tx.Bucket(bucketCollections).Delete([]byte(name))
	})
	if err != nil {
		return err
	}
	delete(s.cache, name)
	return nil
}

// Upsert writes all entries in one transaction after validating them.
func (s *Store) Upsert(_ context.Context, name string, entries []domain.IndexedEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(name); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		meta, err := readMeta(tx, name)
		if err != nil {
			return err
		}
		if err := vectorstore.ValidateEntries(name, meta.Dimension, entries); err != nil {
			return err
		}

		b := tx.Bucket(bucketName(name))
		if b == nil {
			return fmt.Errorf("bucket for %s not found", name)
		}
		for _, e := range entries {
			data, err := json.Marshal(storedVector{Vector: e.Vector, Metadata: e.Metadata})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(e.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// The transaction committed; mirror it in the cache.
	cached := s.cache[name]
	for _, e := range entries {
		cached[e.ID] = copyEntry(e)
	}
	return nil
}

// copyEntry detaches cached data from caller-owned slices and maps.
func copyEntry(e domain.IndexedEntry) domain.IndexedEntry {
	vec := make([]float32, len(e.Vector))
	copy(vec, e.Vector)
	meta := make(map[string]string, len(e.Metadata))
	for k, v := range e.Metadata {
		meta[k] = v
	}
	return domain.IndexedEntry{ID: e.ID, Vector: vec, Metadata: meta}
}

// loadLocked fills the cache for a collection. Callers hold s.mu for writing.
func (s *Store) loadLocked(name string) error {
	if _, ok := s.cache[name]; ok {
		return nil
	}

	entries := make(map[string]domain.IndexedEntry)
	err := s.db.View(func(tx *bbolt.Tx) error {
		if _, err := readMeta(tx, name); err != nil {
			return err
		}
		b := tx.Bucket(bucketName(name))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var stored storedVector
			if err := json.Unmarshal(v, &stored); err != nil {
				return fmt.Errorf("decode entry %s in %s: %w", k, name, err)
			}
			entries[string(k)] = domain.IndexedEntry{ID: string(k), Vector: stored.Vector, Metadata: stored.Metadata}
			return nil
		})
	})
	if err != nil {
		return err
	}
	s.cache[name] = entries
	return nil
}

// snapshot returns the collection dimension and a copy of its cached entries.
func (s *Store) snapshot(name string) (int, []domain.IndexedEntry, error) {
	info, err := s.DescribeCollection(context.Background(), name)
	if err != nil {
		return 0, nil, err
	}

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if !ok {
		s.mu.Lock()
		err := s.loadLocked(name)
		cached = s.cache[name]
		s.mu.Unlock()
		if err != nil {
			return 0, nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.IndexedEntry, 0, len(cached))
	for _, e := range cached {
		out = append(out, e)
	}
	return info.Dimension, out, nil
}

// Query returns the topK most similar entries.
func (s *Store) Query(
	_ context.Context,
	name string,
	vector []float32,
	topK int,
	includeMetadata bool,
) ([]domain.Match, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive: %w", domain.ErrInvalidInput)
	}
	if err := vectorstore.ValidateVector(vector); err != nil {
		return nil, fmt.Errorf("query vector: %w", err)
	}

	dim, entries, err := s.snapshot(name)
	if err != nil {
		return nil, err
	}
	if len(vector) != dim {
		return nil, &domain.DimensionMismatchError{Collection: name, Expected: dim, Actual: len(vector)}
	}
	return vectorstore.TopK(vector, entries, topK, includeMetadata), nil
}

// Count returns the number of entries in a collection.
func (s *Store) Count(_ context.Context, name string) (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		if _, err := readMeta(tx, name); err != nil {
			return err
		}
		if b := tx.Bucket(bucketName(name)); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n, err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
