// Package discovery finds every file an application left on disk.
//
// A Finder combines the sources of candidates for one application:
//
//   - sandbox and group containers owned by its bundle identifier
//   - the application bundle itself
//   - entries in the search locations whose names match its identifiers
//   - forced paths from the condition table
//   - content index results
//   - files recorded in the orphan registry
//
// Forced excludes are removed, nested paths collapsed and the survivors
// measured. Find runs inline; FindAsync runs in the background and hands
// the result to an Interactive or Headless Mode.
package discovery
