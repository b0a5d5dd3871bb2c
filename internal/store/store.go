// Package store keeps perft results in BadgerDB so that repeated runs over
// the same positions are answered from disk.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("store: closed")

// entry is the stored value for one (key, depth) pair.
type entry struct {
	Nodes uint64 `json:"nodes"`
}

// Store wraps BadgerDB for persistent storage of perft counts.
type Store struct {
	mu sync.RWMutex
	db *badger.DB
}

type options struct {
	inMemory bool
	logger   *log.Logger
}

// Option configures Open.
type Option func(*options)

// InMemory keeps the database in memory only; the directory is ignored.
func InMemory() Option {
	return func(o *options) {
		o.inMemory = true
	}
}

// WithLogger routes badger's log output to l. Without it badger is silent.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Open opens (creating if needed) the database in dir.
func Open(dir string, opts ...Option) (*Store, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	bopts := badger.DefaultOptions(dir)
	if o.inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	if o.logger != nil {
		bopts = bopts.WithLogger(badgerLogger{o.logger})
	} else {
		bopts.Logger = nil // Disable logging
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open perft store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func entryKey(key uint64, depth int) []byte {
	return []byte(fmt.Sprintf("perft/%016x/%d", key, depth))
}

// Get returns the node count stored for a position key at depth.
func (s *Store) Get(key uint64, depth int) (uint64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return 0, false, ErrClosed
	}

	var (
		e     entry
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(entryKey(key, depth))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if err != nil {
		return 0, false, fmt.Errorf("get %016x depth %d: %w", key, depth, err)
	}

	return e.Nodes, found, nil
}

// Put records the node count of a position key at depth.
func (s *Store) Put(key uint64, depth int, nodes uint64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return ErrClosed
	}

	data, err := json.Marshal(entry{Nodes: nodes})
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(entryKey(key, depth), data)
	})
	if err != nil {
		return fmt.Errorf("put %016x depth %d: %w", key, depth, err)
	}
	return nil
}

// badgerLogger adapts a standard logger to badger.Logger.
type badgerLogger struct {
	l *log.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Printf("ERROR: "+format, args...)
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Printf("WARNING: "+format, args...)
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.l.Printf("INFO: "+format, args...)
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.l.Printf("DEBUG: "+format, args...)
}
