// Package paths provides centralized path handling for remnant.
//
// The package exposes the XDG directories remnant keeps its own files in
// (configuration, orphan registry) and helpers for the path predicates
// discovery relies on: home expansion, trash detection and ancestry.
package paths
