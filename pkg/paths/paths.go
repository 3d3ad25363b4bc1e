package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/remnant/pkg/errors"
)

// Environment variable names
const (
	// EnvRemnantDataDir overrides the XDG data directory for remnant
	EnvRemnantDataDir = "REMNANT_DATA_DIR"

	// EnvRemnantConfigDir overrides the XDG config directory for remnant
	EnvRemnantConfigDir = "REMNANT_CONFIG_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// AppDirName is the directory name for remnant-specific files
	AppDirName = "remnant"

	// ConfigFileName is the name of the user configuration file
	ConfigFileName = "config.toml"

	// RegistryDirName is the subdirectory holding the orphan registry
	RegistryDirName = "registry"

	// ContainerMetadataFile is the descriptor written by containermanagerd
	// into every sandbox container
	ContainerMetadataFile = ".com.apple.containermanagerd.metadata.plist"
)

// Paths provides the directories remnant reads its own state from
type Paths interface {
	Home() string
	DataDir() string
	ConfigDir() string
	ConfigFile() string
	RegistryDir() string
	ContainersDir() string
	GroupContainersDir() string
}

type paths struct {
	home      string
	xdgData   string
	xdgConfig string
}

// New creates a new Paths instance for the given home directory.
// If home is empty, it is determined from the environment.
func New(home string) (Paths, error) {
	if home == "" {
		h, err := GetHomeDirectory()
		if err != nil {
			return nil, err
		}
		home = h
	}

	absHome, err := filepath.Abs(home)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for home")
	}

	p := &paths{home: absHome}

	if dataDir := os.Getenv(EnvRemnantDataDir); dataDir != "" {
		p.xdgData = ExpandHome(dataDir)
	} else {
		p.xdgData = filepath.Join(xdg.DataHome, AppDirName)
	}

	if configDir := os.Getenv(EnvRemnantConfigDir); configDir != "" {
		p.xdgConfig = ExpandHome(configDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	return p, nil
}

// Home returns the home directory discovery is scoped to
func (p *paths) Home() string {
	return p.home
}

// DataDir returns the XDG data directory for remnant
func (p *paths) DataDir() string {
	return p.xdgData
}

// ConfigDir returns the XDG config directory for remnant
func (p *paths) ConfigDir() string {
	return p.xdgConfig
}

// ConfigFile returns the user configuration file path
func (p *paths) ConfigFile() string {
	return filepath.Join(p.xdgConfig, ConfigFileName)
}

// RegistryDir returns the orphan registry database directory
func (p *paths) RegistryDir() string {
	return filepath.Join(p.xdgData, RegistryDirName)
}

// ContainersDir returns the per-user sandbox containers root
func (p *paths) ContainersDir() string {
	return filepath.Join(p.home, "Library", "Containers")
}

// GroupContainersDir returns the per-user application group containers root
func (p *paths) GroupContainersDir() string {
	return filepath.Join(p.home, "Library", "Group Containers")
}

// ExpandHome expands a leading ~ to the user's home directory.
// Paths that cannot be expanded are returned unchanged.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := GetHomeDirectory()
	if err != nil {
		return path
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the user's home)
	return path
}

// GetHomeDirectory returns the user's home directory
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if home := os.Getenv(EnvHome); home != "" {
			return home, nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get home directory")
	}
	return homeDir, nil
}

// IsTrashed reports whether path lies inside a trash directory, either the
// user's ~/.Trash or a volume's .Trashes.
func IsTrashed(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".Trash" || part == ".Trashes" {
			return true
		}
	}
	return false
}

// IsDescendant reports whether child lies strictly below parent
func IsDescendant(child, parent string) bool {
	if parent == "/" {
		return child != "/" && strings.HasPrefix(child, "/")
	}
	return strings.HasPrefix(child, parent+"/")
}
