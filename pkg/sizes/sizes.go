// Package sizes annotates discovered paths with their on-disk and logical
// sizes and, for application bundles, their icon.
package sizes

import (
	"context"
	"runtime"
	"sync"

	"github.com/arthur-debert/remnant/pkg/logging"
	"github.com/arthur-debert/remnant/pkg/plist"
	"github.com/arthur-debert/remnant/pkg/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultChunkSize is the number of paths measured by one worker
const DefaultChunkSize = 8

// Options configures a Resolver
type Options struct {
	ChunkSize int
	Workers   int
}

// Resolver measures paths in parallel chunks
type Resolver struct {
	fs       types.FS
	metadata MetadataSource
	decoder  plist.Decoder
	opts     Options
	logger   zerolog.Logger
}

// NewResolver creates a Resolver. A nil metadata source measures every path
// by walking it.
func NewResolver(fs types.FS, metadata MetadataSource, decoder plist.Decoder, opts Options) *Resolver {
	if metadata == nil {
		metadata = NoMetadata{}
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Resolver{
		fs:       fs,
		metadata: metadata,
		decoder:  decoder,
		opts:     opts,
		logger:   logging.GetLogger("sizes"),
	}
}

type measurement struct {
	real    int64
	logical int64
	icon    string
}

// Annotate returns one item per path, in input order. It returns once every
// chunk has finished; chunks not yet started when ctx is cancelled are
// skipped and their paths reported with zero sizes.
func (r *Resolver) Annotate(ctx context.Context, paths []string) []types.Item {
	var (
		mu       sync.Mutex
		measured = make(map[string]measurement, len(paths))
	)

	g := new(errgroup.Group)
	g.SetLimit(r.opts.Workers)

	for start := 0; start < len(paths); start += r.opts.ChunkSize {
		end := start + r.opts.ChunkSize
		if end > len(paths) {
			end = len(paths)
		}
		chunk := paths[start:end]

		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			local := make(map[string]measurement, len(chunk))
			for _, p := range chunk {
				if ctx.Err() != nil {
					break
				}
				local[p] = r.measure(ctx, p)
			}

			mu.Lock()
			for p, m := range local {
				measured[p] = m
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	items := make([]types.Item, len(paths))
	for i, p := range paths {
		m := measured[p]
		items[i] = types.Item{
			Path:        p,
			RealSize:    m.real,
			LogicalSize: m.logical,
			Icon:        m.icon,
		}
	}
	r.logger.Debug().Int("paths", len(paths)).Int("measured", len(measured)).Msg("Sizes resolved")
	return items
}

func (r *Resolver) measure(ctx context.Context, path string) measurement {
	var m measurement
	indexed := r.metadata.Sizes(ctx, path)
	m.real, m.logical = indexed.Real, indexed.Logical
	if !indexed.Complete() {
		real, logical := Walk(ctx, r.fs, path)
		if !indexed.HasReal {
			m.real = real
		}
		if !indexed.HasLogical {
			m.logical = logical
		}
	}
	m.icon = Icon(ctx, r.fs, r.decoder, path)
	return m
}

// Architecture reports the architecture of the bundle at bundlePath
func (r *Resolver) Architecture(ctx context.Context, bundlePath string) types.Arch {
	return Architecture(ctx, r.fs, r.decoder, bundlePath)
}
