// Package scanner walks the configured search locations looking for entries
// that belong to an application.
package scanner

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/remnant/pkg/conditions"
	"github.com/arthur-debert/remnant/pkg/errors"
	"github.com/arthur-debert/remnant/pkg/identifiers"
	"github.com/arthur-debert/remnant/pkg/logging"
	"github.com/arthur-debert/remnant/pkg/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Sink receives matched paths. It must be safe for concurrent use.
type Sink interface {
	Contains(path string) bool
	AddAll(paths ...string)
}

// Options configures a Scanner
type Options struct {
	// Strict requires whole-token equality for name matches instead of
	// substring containment. Trades recall for precision.
	Strict bool
	// WebApp restricts matching to the bundle identifier
	WebApp bool
}

// Scanner matches directory entries against one application's identifiers
type Scanner struct {
	fs     types.FS
	ids    identifiers.Set
	table  *conditions.Table
	opts   Options
	logger zerolog.Logger
}

// New creates a scanner for the application described by ids
func New(fs types.FS, ids identifiers.Set, table *conditions.Table, opts Options) *Scanner {
	if table == nil {
		table = conditions.Default()
	}
	return &Scanner{
		fs:     fs,
		ids:    ids,
		table:  table,
		opts:   opts,
		logger: logging.GetLogger("scanner"),
	}
}

// Scan lists the immediate children of every location concurrently, one
// worker per location, and adds matches to sink. It returns once every
// worker has finished. Unreadable locations are logged and skipped.
func (s *Scanner) Scan(ctx context.Context, locations []string, sink Sink) {
	var g errgroup.Group
	for _, location := range locations {
		location := location
		g.Go(func() error {
			s.scanLocation(ctx, location, sink)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Scanner) scanLocation(ctx context.Context, location string, sink Sink) {
	entries, err := s.fs.ReadDir(location)
	if err != nil {
		s.logger.Debug().
			Err(errors.Wrap(err, errors.ErrDirRead, "cannot list location")).
			Str("location", location).
			Msg("Skipping location")
		return
	}

	var local []string
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		name := entry.Name()
		path := filepath.Join(location, name)

		info, err := s.fs.Stat(path)
		if err != nil {
			// Broken symlinks and entries removed since listing
			continue
		}

		token := identifiers.Normalize(name)
		if s.skip(path, name, token, info.IsDir(), sink) {
			continue
		}
		if s.Matches(token) {
			s.logger.Trace().Str("path", path).Msg("Matched entry")
			local = append(local, path)
		}
	}

	if len(local) > 0 {
		sink.AddAll(local...)
	}
	s.logger.Debug().
		Str("location", location).
		Int("entries", len(entries)).
		Int("matches", len(local)).
		Msg("Scanned location")
}

func (s *Scanner) skip(path, name, token string, isDir bool, sink Sink) bool {
	if token == "" {
		return true
	}
	if sink.Contains(path) {
		return true
	}
	if !supported(name, isDir) {
		return true
	}
	return s.table.Skip(token)
}

// Matches reports whether a normalized entry name belongs to the application
func (s *Scanner) Matches(token string) bool {
	ids := s.ids

	if ids.UseBundleID {
		switch s.table.Classify(ids.BundleID, token) {
		case conditions.Exclude:
			return false
		case conditions.Include:
			return true
		}
	}

	if s.opts.WebApp {
		return ids.BundleID != "" && strings.Contains(token, ids.BundleID)
	}

	if ids.UseBundleID && (contains(token, ids.BundleID) || contains(token, ids.Suffix)) {
		return true
	}

	return s.nameMatch(token, ids.Name) ||
		s.nameMatch(token, ids.PathStem) ||
		s.nameMatch(token, ids.NameLetters)
}

func (s *Scanner) nameMatch(token, name string) bool {
	if name == "" {
		return false
	}
	if s.opts.Strict {
		return token == name
	}
	return strings.Contains(token, name)
}

func contains(token, sub string) bool {
	return sub != "" && strings.Contains(token, sub)
}
