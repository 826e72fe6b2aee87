// Package storage persists engine options and cumulative search
// statistics in an embedded BadgerDB key-value store.
package storage

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	keyOptions = "options"
	keyStats   = "stats"
)

// Options are the engine settings kept across sessions.
type Options struct {
	HashMB       int `json:"hash_mb"`
	DefaultDepth int `json:"default_depth"`
}

// DefaultOptions returns the settings used on a fresh install.
func DefaultOptions() *Options {
	return &Options{HashMB: 32, DefaultDepth: 7}
}

// Stats accumulates search effort over the lifetime of the install.
type Stats struct {
	Searches uint64 `json:"searches"`
	Nodes    uint64 `json:"nodes"`
	TimeMs   uint64 `json:"time_ms"`
}

// Store wraps a BadgerDB handle.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store in dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenDefault opens the store in the per-user data directory.
func OpenDefault() (*Store, error) {
	dir, err := DatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dir)
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) load(key string, v any) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	return found, err
}

func (s *Store) save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// LoadOptions returns the stored options, or defaults when none exist.
func (s *Store) LoadOptions() (*Options, error) {
	opts := DefaultOptions()
	if _, err := s.load(keyOptions, opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// SaveOptions stores the options.
func (s *Store) SaveOptions(opts *Options) error {
	return s.save(keyOptions, opts)
}

// LoadStats returns the accumulated statistics, empty when none exist.
func (s *Store) LoadStats() (*Stats, error) {
	stats := &Stats{}
	if _, err := s.load(keyStats, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// RecordSearch folds one finished search into the statistics.
func (s *Store) RecordSearch(nodes uint64, elapsed time.Duration) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}
	stats.Searches++
	stats.Nodes += nodes
	stats.TimeMs += uint64(elapsed.Milliseconds())
	return s.save(keyStats, stats)
}
