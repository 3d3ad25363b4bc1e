// Package identifiers derives the canonical match tokens for an application.
//
// Every token is computed once, when a discovery run starts, and compared
// against normalized directory entry names during scanning.
package identifiers

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/arthur-debert/remnant/pkg/types"
)

// minSingleComponentLength is the shortest single-token bundle identifier
// that is trusted for matching. Shorter ones ("app", "x") produce too many
// false positives.
const minSingleComponentLength = 5

// Set holds the derived match tokens for one application
type Set struct {
	// BundleID is the normalized bundle identifier
	BundleID string
	// Suffix is the normalized concatenation of the last two bundle id components
	Suffix string
	// Name is the normalized application name
	Name string
	// NameLetters is the application name reduced to letters
	NameLetters string
	// PathStem is the normalized bundle file name without the .app extension
	PathStem string
	// UseBundleID reports whether the bundle identifier is long enough to match on
	UseBundleID bool
}

// New derives the identifier set for app
func New(app types.App) Set {
	name := Normalize(app.Name)
	return Set{
		BundleID:    Normalize(app.BundleID),
		Suffix:      Suffix(app.BundleID),
		Name:        name,
		NameLetters: LettersOnly(name),
		PathStem:    Normalize(strings.TrimSuffix(filepath.Base(app.Path), ".app")),
		UseBundleID: IsValidBundleID(app.BundleID),
	}
}

// Normalize strips every character that is not a letter or digit and
// lowercases the rest.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// LettersOnly keeps only the letters of s
func LettersOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Suffix returns the last two meaningful components of a bundle identifier,
// normalized and concatenated: com.example.notes -> examplenotes.
// Placeholder components such as "-" are ignored.
func Suffix(bundleID string) string {
	var parts []string
	for _, c := range strings.Split(bundleID, ".") {
		if isPlaceholder(c) {
			continue
		}
		parts = append(parts, c)
	}
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	return Normalize(strings.Join(parts, ""))
}

func isPlaceholder(component string) bool {
	if component == "" {
		return true
	}
	runes := []rune(component)
	return len(runes) == 1 && !unicode.IsLetter(runes[0]) && !unicode.IsDigit(runes[0])
}

// IsValidBundleID reports whether a bundle identifier is specific enough to
// match on. Multi-component identifiers are always valid; single component
// ones need at least five characters.
func IsValidBundleID(bundleID string) bool {
	if !strings.Contains(bundleID, ".") {
		return len([]rune(bundleID)) >= minSingleComponentLength
	}
	return true
}
