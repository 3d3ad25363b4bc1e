package scanner

import (
	"path/filepath"
	"strings"
)

// leftoverExtensions lists the file extensions that can hold application
// state. Directories and extension-less files are always considered.
var leftoverExtensions = map[string]bool{
	"plist":         true,
	"savedstate":    true,
	"log":           true,
	"txt":           true,
	"json":          true,
	"xml":           true,
	"db":            true,
	"sqlite":        true,
	"sqlite3":       true,
	"db-wal":        true,
	"db-shm":        true,
	"sqlite-wal":    true,
	"sqlite-shm":    true,
	"binarycookies": true,
	"cookies":       true,
	"cache":         true,
	"dat":           true,
	"data":          true,
	"lock":          true,
	"lockfile":      true,
	"pid":           true,
	"sock":          true,
	"conf":          true,
	"cfg":           true,
	"ini":           true,
	"toml":          true,
	"yaml":          true,
	"yml":           true,
	"bak":           true,
	"crash":         true,
	"ips":           true,
	"diag":          true,
	"app":           true,
	"appex":         true,
	"bundle":        true,
	"plugin":        true,
	"prefpane":      true,
	"kext":          true,
	"xpc":           true,
	"framework":     true,
	"dylib":         true,
	"pkg":           true,
	"bom":           true,
	"sh":            true,
	"webapp":        true,
	"qlgenerator":   true,
	"mdimporter":    true,
	"saver":         true,
	"wdgt":          true,
}

// supported reports whether an entry's type can be a leftover
func supported(name string, isDir bool) bool {
	if isDir {
		return true
	}
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return true
	}
	return leftoverExtensions[strings.ToLower(ext)]
}
