// Package config loads remnant's settings. Values are layered from the
// embedded defaults, the user's TOML file and REMNANT_* environment
// variables, in that order.
package config
