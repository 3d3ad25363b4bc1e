// Package types defines the core data structures shared by the discovery
// engine: the App being inspected, the Result of a run and the read-only
// FS abstraction every component reads through.
package types
