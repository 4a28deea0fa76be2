// Package cache persists raw responses keyed by request identity so repeated
// runs never hit the network twice for the same page or API call.
package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/amaumene/bestmovies/internal/constants"
	"github.com/amaumene/bestmovies/pkg/logger"
)

// Store is a durable key to payload mapping. Payloads are JSON: a page body is
// stored as a JSON string, an API response as the object the API returned.
// Entries never expire and are never evicted.
type Store interface {
	// Get returns the payload stored under key.
	Get(key string) (json.RawMessage, bool)
	// Put stores value under key and returns once the store is durable.
	Put(key string, value json.RawMessage) error
	// Len returns the number of stored entries.
	Len() int
	// Close releases the backing resource.
	Close() error
}

// Open returns the store for backend at path.
func Open(backend, path string, log logger.Logger) (Store, error) {
	switch backend {
	case constants.CacheBackendBolt:
		return OpenBoltStore(path, log)
	case constants.CacheBackendFile, "":
		return OpenFileStore(path, log), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

// compile-time interface checks
var (
	_ Store = (*FileStore)(nil)
	_ Store = (*BoltStore)(nil)
)

// FileStore keeps the whole cache in memory and rewrites a single JSON file on
// every Put.
type FileStore struct {
	path    string
	entries map[string]json.RawMessage
	mu      sync.RWMutex
	logger  logger.Logger
}

// OpenFileStore loads the cache file at path. A missing, unreadable or corrupt
// file yields an empty store; the problem is logged at debug level only.
func OpenFileStore(path string, log logger.Logger) *FileStore {
	s := &FileStore{
		path:    path,
		entries: make(map[string]json.RawMessage),
		logger:  log,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Debugf("[Cache] starting with empty cache: %v", err)
		return s
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Debugf("[Cache] ignoring unreadable cache file %s: %v", path, err)
		return s
	}
	if entries != nil {
		s.entries = entries
	}

	log.Debugf("[Cache] loaded %d entries from %s", len(s.entries), path)
	return s
}

func (s *FileStore) Get(key string) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	return value, ok
}

func (s *FileStore) Put(key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("cache value for %q is not valid JSON", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.entries[key]
	s.entries[key] = append(json.RawMessage(nil), value...)

	if err := s.flush(); err != nil {
		if existed {
			s.entries[key] = previous
		} else {
			delete(s.entries, key)
		}
		return err
	}
	return nil
}

func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close is a no-op: every Put has already been flushed.
func (s *FileStore) Close() error {
	return nil
}

// flush writes the snapshot to a temporary file and renames it over the cache
// file so a crash mid-write never leaves a truncated cache behind.
func (s *FileStore) flush() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s.entries); err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	data := buf.Bytes()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close cache: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}
