// Package bundle reads application identity from an installed bundle
package bundle

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/remnant/pkg/errors"
	"github.com/arthur-debert/remnant/pkg/plist"
	"github.com/arthur-debert/remnant/pkg/types"
)

// wrapperDir is the directory browsers place web-app bundles in
const wrapperDir = "Wrapper"

// Reader reads bundles through a filesystem and plist decoder
type Reader struct {
	fs      types.FS
	decoder plist.Decoder
}

// NewReader creates a Reader
func NewReader(fs types.FS, decoder plist.Decoder) *Reader {
	return &Reader{fs: fs, decoder: decoder}
}

// Read returns the App described by the bundle at path
func (r *Reader) Read(ctx context.Context, path string) (types.App, error) {
	path = filepath.Clean(path)

	info, err := r.fs.Stat(path)
	if err != nil {
		return types.App{}, errors.Wrapf(err, errors.ErrFileNotFound, "cannot find application %s", path)
	}
	if !info.IsDir() {
		return types.App{}, errors.Newf(errors.ErrBundleInvalid, "%s is not a bundle", path)
	}

	app := types.App{
		Path: path,
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	data, err := r.fs.ReadFile(filepath.Join(path, "Contents", "Info.plist"))
	if err != nil {
		return types.App{}, errors.Wrap(err, errors.ErrBundleInvalid, "bundle has no Info.plist").
			WithDetail("path", path)
	}
	dict, err := r.decoder.Decode(ctx, data)
	if err != nil {
		return types.App{}, errors.Wrap(err, errors.ErrBundleInvalid, "cannot decode Info.plist").
			WithDetail("path", path)
	}

	app.BundleID = dict.String("CFBundleIdentifier")
	if name := firstNonEmpty(dict.String("CFBundleDisplayName"), dict.String("CFBundleName")); name != "" {
		app.Name = name
	}
	app.WebApp = InWrapper(path) || (dict.Has("LSHasLocalizedDisplayName") && dict.Has("CrAppModeShortcutID"))
	return app, nil
}

// InWrapper reports whether a bundle sits directly inside a Wrapper directory
func InWrapper(path string) bool {
	return filepath.Base(filepath.Dir(filepath.Clean(path))) == wrapperDir
}

// Seed returns the path that represents the installed application on disk.
// Bundles nested in a Wrapper are represented by the directory two levels up.
func Seed(path string) string {
	path = filepath.Clean(path)
	if InWrapper(path) {
		return filepath.Dir(filepath.Dir(path))
	}
	return path
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
