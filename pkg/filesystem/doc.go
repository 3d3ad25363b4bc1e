// Package filesystem provides filesystem implementations for remnant.
//
// This package contains implementations of the read-only types.FS interface:
// the standard OS filesystem and an afero-backed one used by tests.
package filesystem
