// Package testutil provides utilities for testing remnant components.
//
// Key components:
//   - Tree: declarative in-memory filesystem builder over afero's MemMapFs
//   - ErrorFS: wraps a types.FS and injects errors for chosen paths
//   - Plist: renders XML property lists for bundle and container fixtures
//
// All test data should be defined inline, not in external files, and every
// test builds its own tree so tests share no state.
package testutil
