// Package spotlight queries the system content index for leftovers the
// name heuristics miss.
package spotlight

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/arthur-debert/remnant/pkg/errors"
	"github.com/arthur-debert/remnant/pkg/identifiers"
	"github.com/arthur-debert/remnant/pkg/logging"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds how long a run waits for the index
const DefaultTimeout = 5 * time.Second

// Query describes one index search
type Query struct {
	// Name is matched against indexed display names
	Name string
	// BundleID is matched against indexed paths
	BundleID string
	// Scope is the directory tree the search is restricted to
	Scope string
}

// Indexer runs a query against a content index
type Indexer interface {
	Search(ctx context.Context, q Query) ([]string, error)
}

// Options configures a Supplement
type Options struct {
	Enabled bool
	Strict  bool
	Timeout time.Duration
	Scope   string
}

// Supplement adds index results to a discovery run under a time budget
type Supplement struct {
	indexer Indexer
	opts    Options
	logger  zerolog.Logger
}

// New creates a Supplement backed by indexer
func New(indexer Indexer, opts Options) *Supplement {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Supplement{
		indexer: indexer,
		opts:    opts,
		logger:  logging.GetLogger("spotlight"),
	}
}

// Enabled reports whether queries reach the index at all
func (s *Supplement) Enabled() bool {
	return s.opts.Enabled && s.indexer != nil
}

type outcome struct {
	paths []string
	err   error
}

// Query returns index results for the application, or nothing when the
// supplement is disabled, the index fails, or it does not answer within the
// timeout. The losing side of the race is cancelled before returning.
func (s *Supplement) Query(ctx context.Context, name, bundleID string) []string {
	if !s.Enabled() {
		return nil
	}
	if name == "" && bundleID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		paths, err := s.indexer.Search(ctx, Query{Name: name, BundleID: bundleID, Scope: s.opts.Scope})
		done <- outcome{paths: paths, err: err}
	}()

	var res outcome
	select {
	case res = <-done:
	case <-ctx.Done():
		s.logger.Warn().
			Err(errors.Wrapf(ctx.Err(), errors.ErrIndexTimeout, "index did not answer within %v", s.opts.Timeout)).
			Str("app", name).
			Msg("Ignoring content index results")
		return nil
	}

	if res.err != nil {
		s.logger.Warn().Err(res.err).Str("app", name).Msg("Content index query failed")
		return nil
	}

	paths := s.filter(res.paths, name, bundleID)
	s.logger.Debug().Int("raw", len(res.paths)).Int("kept", len(paths)).Msg("Content index query finished")
	return paths
}

// filter cleans and deduplicates results; in strict mode only results whose
// file name equals the app name or bundle id survive.
func (s *Supplement) filter(results []string, name, bundleID string) []string {
	nameToken := identifiers.Normalize(name)
	bundleToken := identifiers.Normalize(bundleID)

	seen := make(map[string]bool, len(results))
	var out []string
	for _, r := range results {
		if r == "" || !filepath.IsAbs(r) {
			continue
		}
		p := filepath.Clean(r)
		if seen[p] {
			continue
		}
		if s.opts.Strict {
			base := identifiers.Normalize(filepath.Base(p))
			if base == "" || (base != nameToken && base != bundleToken) {
				continue
			}
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
