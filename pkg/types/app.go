package types

// App describes the installed application whose leftovers are searched for.
// It is supplied once per discovery run and never modified.
type App struct {
	// BundleID is the reverse-DNS bundle identifier, e.g. com.example.notes
	BundleID string `json:"bundleId" yaml:"bundleId"`

	// Name is the display name of the application
	Name string `json:"name" yaml:"name"`

	// Path is the absolute path to the application bundle
	Path string `json:"path" yaml:"path"`

	// WebApp marks browser generated web-app wrappers
	WebApp bool `json:"webApp" yaml:"webApp"`
}
