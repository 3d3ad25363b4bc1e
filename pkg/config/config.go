package config

import "time"

// Config is the complete remnant configuration
type Config struct {
	Matching   Matching   `koanf:"matching"`
	Spotlight  Spotlight  `koanf:"spotlight"`
	Search     Search     `koanf:"search"`
	Sizes      Sizes      `koanf:"sizes"`
	Registry   Registry   `koanf:"registry"`
	Conditions Conditions `koanf:"conditions"`
}

// Matching controls how names are compared against candidate entries
type Matching struct {
	Strict bool `koanf:"strict"`
}

// Spotlight controls the content index supplement
type Spotlight struct {
	Enabled bool          `koanf:"enabled"`
	Timeout time.Duration `koanf:"timeout"`
}

// Search lists the directories scanned for leftovers
type Search struct {
	Locations []string `koanf:"locations"`
}

// Sizes controls size measurement
type Sizes struct {
	Chunk    int  `koanf:"chunk"`
	Workers  int  `koanf:"workers"`
	Metadata bool `koanf:"metadata"`
}

// Registry locates the orphan registry database
type Registry struct {
	Path string `koanf:"path"`
}

// Conditions points at a replacement condition table
type Conditions struct {
	File string `koanf:"file"`
}
