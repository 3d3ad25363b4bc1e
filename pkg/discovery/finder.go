package discovery

import (
	"context"
	"path/filepath"

	"github.com/arthur-debert/remnant/pkg/bundle"
	"github.com/arthur-debert/remnant/pkg/collapse"
	"github.com/arthur-debert/remnant/pkg/conditions"
	"github.com/arthur-debert/remnant/pkg/filesystem"
	"github.com/arthur-debert/remnant/pkg/identifiers"
	"github.com/arthur-debert/remnant/pkg/logging"
	"github.com/arthur-debert/remnant/pkg/paths"
	"github.com/arthur-debert/remnant/pkg/scanner"
	"github.com/arthur-debert/remnant/pkg/types"
	"github.com/arthur-debert/remnant/pkg/zombies"
	"github.com/rs/zerolog"
)

// StepIndex is the progress step reported while the content index is queried
const StepIndex = 1

// ContainerSource finds sandbox and group containers for a bundle id
type ContainerSource interface {
	Resolve(ctx context.Context, bundleID string) []string
}

// IndexSource supplies extra candidates from a content index. A disabled
// source is skipped entirely, progress step included.
type IndexSource interface {
	Enabled() bool
	Query(ctx context.Context, name, bundleID string) []string
}

// Annotator measures the final paths and the application's architecture
type Annotator interface {
	Annotate(ctx context.Context, paths []string) []types.Item
	Architecture(ctx context.Context, bundlePath string) types.Arch
}

// Deps are the collaborators of a Finder. Nil sources contribute nothing,
// a nil FS reads the real filesystem and a nil Conditions table uses the
// embedded one.
type Deps struct {
	FS         types.FS
	Locations  []string
	Strict     bool
	Conditions *conditions.Table
	Containers ContainerSource
	Index      IndexSource
	Registry   zombies.Registry
	Sizes      Annotator
}

// Finder discovers the leftovers of one application
type Finder struct {
	app    types.App
	ids    identifiers.Set
	deps   Deps
	logger zerolog.Logger
}

// NewFinder creates a Finder for app. Identifiers are derived here, once.
func NewFinder(app types.App, deps Deps) *Finder {
	if deps.FS == nil {
		deps.FS = filesystem.NewOS()
	}
	if deps.Conditions == nil {
		deps.Conditions = conditions.Default()
	}
	return &Finder{
		app:    app,
		ids:    identifiers.New(app),
		deps:   deps,
		logger: logging.GetLogger("discovery").With().Str("app", app.Name).Logger(),
	}
}

// Identifiers returns the match tokens derived for the application
func (f *Finder) Identifiers() identifiers.Set {
	return f.ids
}

// Find runs the pipeline inline and returns its result
func (f *Finder) Find(ctx context.Context) types.Result {
	return f.run(ctx, collapse.Adjacent, func(int) {})
}

// FindAsync runs the pipeline on its own goroutine and delivers the result
// through mode. It returns immediately.
func (f *Finder) FindAsync(ctx context.Context, mode Mode) {
	if mode == nil {
		mode = Headless{}
	}
	go func() {
		result := f.run(ctx, collapse.Ancestors, mode.progress)
		mode.deliver(result)
	}()
}

func (f *Finder) run(ctx context.Context, collapseMode collapse.Mode, progress func(int)) types.Result {
	done := logging.LogOperationStart(f.logger, "find")
	defer done()

	set := NewSet()

	if f.deps.Containers != nil {
		set.AddAll(f.deps.Containers.Resolve(ctx, f.app.BundleID)...)
	}

	if seed, ok := f.seed(); ok {
		set.Add(seed)
	}

	scan := scanner.New(f.deps.FS, f.ids, f.deps.Conditions, scanner.Options{
		Strict: f.deps.Strict,
		WebApp: f.app.WebApp,
	})
	scan.Scan(ctx, f.deps.Locations, set)
	f.logger.Debug().Int("candidates", set.Len()).Msg("Scan finished")

	for _, p := range f.deps.Conditions.ForceIncludes(f.ids.BundleID) {
		set.Add(filepath.Clean(p))
	}

	if f.deps.Index != nil && f.deps.Index.Enabled() {
		progress(StepIndex)
		for _, p := range f.deps.Index.Query(ctx, f.app.Name, f.app.BundleID) {
			if !set.Contains(p) {
				set.Add(p)
			}
		}
	}

	if f.deps.Registry != nil && f.app.Path != "" {
		files, err := f.deps.Registry.AssociatedFiles(f.app.Path)
		if err != nil {
			f.logger.Warn().Err(err).Msg("Cannot read orphan registry")
		}
		for _, p := range files {
			set.Add(filepath.Clean(p))
		}
	}

	for _, p := range f.deps.Conditions.ForceExcludes(f.ids.BundleID) {
		set.Remove(filepath.Clean(p))
	}

	final := collapse.DropTrashed(collapse.Collapse(set.Snapshot(), collapseMode))

	result := types.Result{App: f.app, Arch: types.ArchUnknown}
	if f.deps.Sizes != nil {
		result.Items = f.deps.Sizes.Annotate(ctx, final)
		if f.app.Path != "" {
			result.Arch = f.deps.Sizes.Architecture(ctx, f.app.Path)
		}
	} else {
		result.Items = make([]types.Item, len(final))
		for i, p := range final {
			result.Items[i] = types.Item{Path: p}
		}
	}

	f.logger.Info().Int("items", len(result.Items)).Str("collapse", collapseMode.String()).Msg("Discovery finished")
	return result
}

// seed is the on-disk path representing the application itself
func (f *Finder) seed() (string, bool) {
	if f.app.Path == "" {
		return "", false
	}
	seed := bundle.Seed(f.app.Path)
	if paths.IsTrashed(seed) {
		return "", false
	}
	if _, err := f.deps.FS.Stat(seed); err != nil {
		return "", false
	}
	return seed, true
}
