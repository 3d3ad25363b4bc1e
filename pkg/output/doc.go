// Package output renders discovery results for people and programs.
//
// Terminal output is styled with lipgloss using the semantic styles in
// styles.yaml (Header, Muted, Size, Path, Warning, Total); colour is only
// used when the destination is a terminal. Text output is the same layout
// without styling, and JSON and YAML expose the raw result.
package output
