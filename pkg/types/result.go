package types

// Arch is the CPU architecture of an application's main executable
type Arch string

const (
	ArchUnknown   Arch = "unknown"
	ArchARM64     Arch = "arm64"
	ArchX86_64    Arch = "x86_64"
	ArchUniversal Arch = "universal"
)

// Item is a single discovered leftover
type Item struct {
	Path        string `json:"path" yaml:"path"`
	RealSize    int64  `json:"realSize" yaml:"realSize"`
	LogicalSize int64  `json:"logicalSize" yaml:"logicalSize"`
	// Icon is the path of an icon file representing the item, if any
	Icon string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Result is the outcome of one discovery run. Items are ordered
// lexicographically by path.
type Result struct {
	App   App    `json:"app" yaml:"app"`
	Items []Item `json:"items" yaml:"items"`
	Arch  Arch   `json:"arch" yaml:"arch"`
}

// Paths returns the item paths in result order
func (r Result) Paths() []string {
	paths := make([]string, len(r.Items))
	for i, item := range r.Items {
		paths[i] = item.Path
	}
	return paths
}

// TotalSize returns the summed real and logical sizes of all items
func (r Result) TotalSize() (real, logical int64) {
	for _, item := range r.Items {
		real += item.RealSize
		logical += item.LogicalSize
	}
	return real, logical
}
