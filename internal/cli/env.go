package cli

import (
	"context"
	"io"
	"path/filepath"

	"github.com/arthur-debert/remnant/pkg/conditions"
	"github.com/arthur-debert/remnant/pkg/config"
	"github.com/arthur-debert/remnant/pkg/containers"
	"github.com/arthur-debert/remnant/pkg/discovery"
	"github.com/arthur-debert/remnant/pkg/errors"
	"github.com/arthur-debert/remnant/pkg/filesystem"
	"github.com/arthur-debert/remnant/pkg/logging"
	"github.com/arthur-debert/remnant/pkg/output"
	"github.com/arthur-debert/remnant/pkg/paths"
	"github.com/arthur-debert/remnant/pkg/plist"
	"github.com/arthur-debert/remnant/pkg/sizes"
	"github.com/arthur-debert/remnant/pkg/spotlight"
	"github.com/arthur-debert/remnant/pkg/types"
	"github.com/arthur-debert/remnant/pkg/zombies"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// env is everything a command needs, resolved from flags and configuration
type env struct {
	opts    *globalOptions
	cfg     *config.Config
	paths   paths.Paths
	fs      types.FS
	decoder plist.Decoder
	logger  zerolog.Logger
}

func newEnv(opts *globalOptions) (*env, error) {
	p, err := paths.New("")
	if err != nil {
		return nil, err
	}

	file, required := opts.configFile, opts.configFile != ""
	if file == "" {
		file = p.ConfigFile()
	}

	overrides := map[string]interface{}{}
	if opts.loose {
		overrides["matching.strict"] = false
	}
	if opts.noSpotlight {
		overrides["spotlight.enabled"] = false
	}

	cfg, err := config.Load(config.Options{File: file, Required: required, Overrides: overrides})
	if err != nil {
		return nil, err
	}

	return &env{
		opts:    opts,
		cfg:     cfg,
		paths:   p,
		fs:      filesystem.NewOS(),
		decoder: plist.Decoder{Converter: plist.Plutil{}},
		logger:  logging.GetLogger("cli"),
	}, nil
}

func (e *env) renderer(w io.Writer) (*output.Renderer, error) {
	format, err := output.ParseFormat(e.opts.format)
	if err != nil {
		return nil, err
	}
	return output.NewRenderer(w, format)
}

func (e *env) conditions() (*conditions.Table, error) {
	if e.cfg.Conditions.File == "" {
		return conditions.Default(), nil
	}
	data, err := e.fs.ReadFile(e.cfg.Conditions.File)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read condition table %s", e.cfg.Conditions.File)
	}
	return conditions.Load(data)
}

func (e *env) registryPath() string {
	if e.cfg.Registry.Path != "" {
		return e.cfg.Registry.Path
	}
	return e.paths.RegistryDir()
}

// openRegistry opens the registry for writing, creating it if needed
func (e *env) openRegistry() (*zombies.Store, error) {
	return zombies.Open(zombies.DefaultConfig(e.registryPath()))
}

// readRegistry opens an existing registry without touching the disk. A
// registry that was never written returns a nil store and no error.
func (e *env) readRegistry() (*zombies.Store, error) {
	store, err := zombies.Open(zombies.ReadOnlyConfig(e.registryPath()))
	if errors.IsErrorCode(err, errors.ErrNotFound) {
		e.logger.Debug().Str("path", e.registryPath()).Msg("No orphan registry yet")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// deps wires the discovery collaborators. The returned function releases
// the registry and must always be called.
func (e *env) deps() (discovery.Deps, func(), error) {
	table, err := e.conditions()
	if err != nil {
		return discovery.Deps{}, nil, err
	}

	var metadata sizes.MetadataSource
	if e.cfg.Sizes.Metadata {
		metadata = sizes.MDLS{}
	}

	deps := discovery.Deps{
		FS:         e.fs,
		Locations:  e.cfg.Search.Locations,
		Strict:     e.cfg.Matching.Strict,
		Conditions: table,
		Containers: containers.NewResolver(e.fs, e.paths, e.decoder),
		Index: spotlight.New(spotlight.MDFind{}, spotlight.Options{
			Enabled: e.cfg.Spotlight.Enabled,
			Strict:  e.cfg.Matching.Strict,
			Timeout: e.cfg.Spotlight.Timeout,
			Scope:   e.paths.Home(),
		}),
		Sizes: sizes.NewResolver(e.fs, metadata, e.decoder, sizes.Options{
			ChunkSize: e.cfg.Sizes.Chunk,
			Workers:   e.cfg.Sizes.Workers,
		}),
	}

	release := func() {}
	store, err := e.readRegistry()
	if err != nil {
		e.logger.Warn().Err(err).Msg("Orphan registry unavailable, continuing without it")
	} else if store != nil {
		deps.Registry = store
		release = func() {
			if err := store.Close(); err != nil {
				e.logger.Warn().Err(err).Msg("Failed to close orphan registry")
			}
		}
	}
	return deps, release, nil
}

func absPath(path string) (string, error) {
	abs, err := filepath.Abs(paths.ExpandHome(path))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "invalid path %s", path)
	}
	return abs, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
