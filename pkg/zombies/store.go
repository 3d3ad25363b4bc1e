// Package zombies keeps a persistent record of files associated with an
// application that the name heuristics cannot rediscover on their own.
package zombies

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/remnant/pkg/errors"
	"github.com/arthur-debert/remnant/pkg/logging"
	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

const keyPrefix = "app:"

// Registry looks up the files associated with an application path
type Registry interface {
	AssociatedFiles(appPath string) ([]string, error)
}

// Config configures the backing database
type Config struct {
	// Path is the database directory; required unless InMemory is set
	Path string

	// InMemory keeps everything in memory, used by tests
	InMemory bool

	// ReadOnly opens an existing database without creating or modifying
	// anything on disk. Writes fail.
	ReadOnly bool

	SyncWrites bool
}

// DefaultConfig returns a persistent configuration rooted at path
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// ReadOnlyConfig returns a configuration for reading an existing registry
func ReadOnlyConfig(path string) Config {
	return Config{Path: path, ReadOnly: true}
}

// InMemoryConfig returns a configuration that never touches disk
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger routes badger's internal logging through zerolog
type badgerLogger struct {
	logger zerolog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Trace().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Store is a Registry backed by BadgerDB. Each application path maps to a
// sorted, JSON encoded list of associated files.
type Store struct {
	db     *badger.DB
	logger zerolog.Logger
}

// Open opens the registry database. A writable registry is created if
// needed; a read-only one must already exist and is reported as
// ErrNotFound otherwise.
func Open(cfg Config) (*Store, error) {
	logger := logging.GetLogger("zombies")

	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New(errors.ErrRegistryOpen, "path is required for persistent registry")
	}
	if cfg.InMemory && cfg.ReadOnly {
		return nil, errors.New(errors.ErrRegistryOpen, "an in-memory registry cannot be read-only")
	}

	var opts badger.Options
	switch {
	case cfg.InMemory:
		opts = badger.DefaultOptions("").WithInMemory(true)
	case cfg.ReadOnly:
		if _, err := os.Stat(cfg.Path); err != nil {
			return nil, errors.Wrapf(err, errors.ErrNotFound, "no registry at %s", cfg.Path)
		}
		opts = badger.DefaultOptions(cfg.Path).WithReadOnly(true)
	default:
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, errors.Wrapf(err, errors.ErrRegistryOpen, "cannot create registry directory %s", cfg.Path)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.
		WithSyncWrites(cfg.SyncWrites && !cfg.ReadOnly).
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRegistryOpen, "cannot open registry database").
			WithDetail("path", cfg.Path)
	}

	logger.Debug().
		Str("path", cfg.Path).
		Bool("inMemory", cfg.InMemory).
		Bool("readOnly", cfg.ReadOnly).
		Msg("Registry opened")
	return &Store{db: db, logger: logger}, nil
}

func key(appPath string) []byte {
	return []byte(keyPrefix + filepath.Clean(appPath))
}

func read(txn *badger.Txn, appPath string) ([]string, error) {
	item, err := txn.Get(key(appPath))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRegistryRead, "cannot read registry entry")
	}

	var files []string
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &files)
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRegistryRead, "corrupt registry entry").
			WithDetail("app", appPath)
	}
	return files, nil
}

// AssociatedFiles returns the files recorded for appPath, sorted. An
// unknown application has no files.
func (s *Store) AssociatedFiles(appPath string) ([]string, error) {
	var files []string
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		files, err = read(txn, appPath)
		return err
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Associate records files for appPath, merging with what is already stored
func (s *Store) Associate(appPath string, files ...string) error {
	if appPath == "" {
		return errors.New(errors.ErrInvalidInput, "application path is required")
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		existing, err := read(txn, appPath)
		if err != nil {
			return err
		}

		merged := make(map[string]bool, len(existing)+len(files))
		for _, f := range existing {
			merged[f] = true
		}
		for _, f := range files {
			if f != "" {
				merged[filepath.Clean(f)] = true
			}
		}
		list := make([]string, 0, len(merged))
		for f := range merged {
			list = append(list, f)
		}
		sort.Strings(list)

		data, err := json.Marshal(list)
		if err != nil {
			return errors.Wrap(err, errors.ErrRegistryWrite, "cannot encode registry entry")
		}
		if err := txn.Set(key(appPath), data); err != nil {
			return errors.Wrap(err, errors.ErrRegistryWrite, "cannot write registry entry")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug().Str("app", appPath).Int("files", len(files)).Msg("Associated files recorded")
	return nil
}

// Remove forgets everything recorded for appPath
func (s *Store) Remove(appPath string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(appPath))
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrRegistryWrite, "cannot remove registry entry").
			WithDetail("app", appPath)
	}
	return nil
}

// Apps lists every application path with recorded files, sorted
func (s *Store) Apps() ([]string, error) {
	var apps []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			apps = append(apps, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrRegistryRead, "cannot list registry")
	}
	return apps, nil
}

// Close releases the database
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, errors.ErrRegistryWrite, "cannot close registry")
	}
	return nil
}
