// Package containers finds the sandbox and application group containers
// macOS created for an application.
package containers

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/remnant/pkg/errors"
	"github.com/arthur-debert/remnant/pkg/logging"
	"github.com/arthur-debert/remnant/pkg/paths"
	"github.com/arthur-debert/remnant/pkg/plist"
	"github.com/arthur-debert/remnant/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ownerKey is the container descriptor key recording the owning bundle id
const ownerKey = "MCMMetadataIdentifier"

// canonicalUUIDLength is the length of the hyphenated 8-4-4-4-12 form
const canonicalUUIDLength = 36

// Resolver locates containers owned by a bundle identifier
type Resolver struct {
	fs              types.FS
	decoder         plist.Decoder
	containersDir   string
	groupContainers string
	logger          zerolog.Logger
}

// NewResolver creates a resolver reading containers below the given roots
func NewResolver(fs types.FS, p paths.Paths, decoder plist.Decoder) *Resolver {
	return &Resolver{
		fs:              fs,
		decoder:         decoder,
		containersDir:   p.ContainersDir(),
		groupContainers: p.GroupContainersDir(),
		logger:          logging.GetLogger("containers"),
	}
}

// Resolve returns every existing container directory owned by bundleID.
// Failures reading the containers root or any descriptor are logged and the
// affected entry skipped; whatever was found is still returned.
func (r *Resolver) Resolve(ctx context.Context, bundleID string) []string {
	if bundleID == "" {
		return nil
	}

	var found []string

	group := filepath.Join(r.groupContainers, bundleID)
	if _, err := r.fs.Stat(group); err == nil {
		r.logger.Debug().Str("path", group).Msg("Found group container")
		found = append(found, group)
	}

	entries, err := r.fs.ReadDir(r.containersDir)
	if err != nil {
		r.logger.Warn().
			Err(errors.Wrap(err, errors.ErrDirRead, "cannot read containers root")).
			Str("path", r.containersDir).
			Msg("Skipping sandbox containers")
		return found
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !IsContainerName(name) {
			continue
		}

		dir := filepath.Join(r.containersDir, name)
		owner, err := r.owner(ctx, dir)
		if err != nil {
			r.logger.Debug().Err(err).Str("container", dir).Msg("Skipping unreadable container")
			continue
		}
		if owner == bundleID {
			r.logger.Debug().Str("path", dir).Msg("Found sandbox container")
			found = append(found, dir)
		}
	}

	return found
}

// owner reads the bundle id recorded in a container's metadata descriptor
func (r *Resolver) owner(ctx context.Context, dir string) (string, error) {
	descriptor := filepath.Join(dir, paths.ContainerMetadataFile)
	data, err := r.fs.ReadFile(descriptor)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "cannot read container metadata").
			WithDetail("path", descriptor)
	}
	dict, err := r.decoder.Decode(ctx, data)
	if err != nil {
		return "", err
	}
	return dict.String(ownerKey), nil
}

// IsContainerName reports whether name has the canonical UUID shape used
// for sandbox container directories.
func IsContainerName(name string) bool {
	if len(name) != canonicalUUIDLength {
		return false
	}
	_, err := uuid.Parse(name)
	return err == nil
}
