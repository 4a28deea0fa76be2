package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/amaumene/bestmovies/internal/constants"
	"github.com/amaumene/bestmovies/pkg/logger"
)

const (
	// Default database file permissions
	dbFileMode = 0600
	dbDirMode  = 0755
)

var responsesBucket = []byte("responses")

// BoltStore keeps cache entries in a bbolt database. Every Put is its own
// committed transaction, so the entry is on disk when Put returns.
type BoltStore struct {
	db     *bolt.DB
	logger logger.Logger
}

// OpenBoltStore opens or creates the bbolt cache at path. A file bbolt cannot
// read is moved aside to path+".corrupt" and replaced by an empty database.
// Only a lock held by another process is reported as an error.
func OpenBoltStore(path string, log logger.Logger) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), dbDirMode); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := openBolt(path)
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, fmt.Errorf("cache database %s is locked: %w", path, err)
		}

		log.Debugf("[Cache] discarding unreadable cache database %s: %v", path, err)
		if renameErr := os.Rename(path, path+".corrupt"); renameErr != nil && !os.IsNotExist(renameErr) {
			return nil, fmt.Errorf("failed to move aside cache database: %w", renameErr)
		}

		db, err = openBolt(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt cache: %w", err)
		}
	}

	s := &BoltStore{db: db, logger: log}
	log.Debugf("[Cache] opened bolt cache %s with %d entries", path, s.Len())
	return s, nil
}

func openBolt(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, dbFileMode, &bolt.Options{Timeout: constants.BoltOpenTimeout})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(responsesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (s *BoltStore) Get(key string) (json.RawMessage, bool) {
	var value json.RawMessage

	err := s.db.View(func(tx *bolt.Tx) error {
		stored := tx.Bucket(responsesBucket).Get([]byte(key))
		if stored != nil {
			// bbolt memory is only valid inside the transaction
			value = append(json.RawMessage(nil), stored...)
		}
		return nil
	})
	if err != nil {
		s.logger.Errorf("[Cache] failed to read %q: %v", key, err)
		return nil, false
	}

	return value, value != nil
}

func (s *BoltStore) Put(key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("cache value for %q is not valid JSON", key)
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(responsesBucket).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

func (s *BoltStore) Len() int {
	var n int
	_ = s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(responsesBucket).Stats().KeyN
		return nil
	})
	return n
}

// Close closes the database connection.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
