// Package conditions holds the static per-application matching overrides.
//
// The table is a versioned data resource embedded in the binary and decoded
// once per process. It is read-only after loading and safe to share between
// concurrent discovery runs.
package conditions

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/arthur-debert/remnant/pkg/errors"
	"github.com/arthur-debert/remnant/pkg/identifiers"
	"github.com/arthur-debert/remnant/pkg/logging"
	"github.com/arthur-debert/remnant/pkg/paths"
	toml "github.com/pelletier/go-toml/v2"
)

//go:embed embedded/conditions.toml
var embeddedTable []byte

// Condition overrides heuristic matching for applications whose normalized
// bundle id contains Key.
type Condition struct {
	// ID is the key as written in the table
	ID           string   `toml:"-"`
	Key          string   `toml:"key"`
	Include      []string `toml:"include"`
	Exclude      []string `toml:"exclude"`
	ForceInclude []string `toml:"force_include"`
	ForceExclude []string `toml:"force_exclude"`
}

// SkipCondition rejects names starting with any of Prefixes unless they
// also start with one of Allow.
type SkipCondition struct {
	Prefixes []string `toml:"prefixes"`
	Allow    []string `toml:"allow"`
}

// Verdict is the outcome of classifying a name against the table
type Verdict int

const (
	// NoOpinion means no applicable condition matched; heuristics decide
	NoOpinion Verdict = iota
	// Include means an applicable include entry matched
	Include
	// Exclude means an applicable exclude entry matched
	Exclude
)

func (v Verdict) String() string {
	switch v {
	case Include:
		return "include"
	case Exclude:
		return "exclude"
	default:
		return "none"
	}
}

// Table is a decoded, normalized condition table
type Table struct {
	conditions []Condition
	skips      []SkipCondition
}

type rawTable struct {
	Conditions []Condition     `toml:"condition"`
	Skips      []SkipCondition `toml:"skip"`
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the embedded table, decoding it on first use
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Load(embeddedTable)
		if err != nil {
			// The embedded table is part of the build; a decode failure is a
			// packaging bug, not a runtime condition.
			logger := logging.GetLogger("conditions")
			logger.Error().Err(err).Msg("Embedded condition table is invalid, using empty table")
			t = &Table{}
		}
		defaultTable = t
	})
	return defaultTable
}

// Load decodes a condition table from TOML. Keys, include/exclude entries
// and skip prefixes are normalized; forced paths have ~ expanded.
func Load(data []byte) (*Table, error) {
	var raw rawTable
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrConditionParse, "failed to decode condition table")
	}

	t := &Table{}
	for i, c := range raw.Conditions {
		key := identifiers.Normalize(c.Key)
		if key == "" {
			return nil, errors.Newf(errors.ErrConditionInvalid, "condition %d has an empty key", i)
		}
		t.conditions = append(t.conditions, Condition{
			ID:           c.Key,
			Key:          key,
			Include:      normalizeAll(c.Include),
			Exclude:      normalizeAll(c.Exclude),
			ForceInclude: expandAll(c.ForceInclude),
			ForceExclude: expandAll(c.ForceExclude),
		})
	}
	for _, s := range raw.Skips {
		t.skips = append(t.skips, SkipCondition{
			Prefixes: normalizeAll(s.Prefixes),
			Allow:    normalizeAll(s.Allow),
		})
	}
	return t, nil
}

// Len returns the number of conditions in the table
func (t *Table) Len() int {
	return len(t.conditions)
}

// All returns every condition in table order
func (t *Table) All() []Condition {
	out := make([]Condition, len(t.conditions))
	copy(out, t.conditions)
	return out
}

// Applicable returns the conditions whose key is contained in the
// normalized bundle id, in table order.
func (t *Table) Applicable(bundleID string) []Condition {
	if bundleID == "" {
		return nil
	}
	var out []Condition
	for _, c := range t.conditions {
		if strings.Contains(bundleID, c.Key) {
			out = append(out, c)
		}
	}
	return out
}

// Classify decides whether the normalized token is forced in or out by a
// condition applicable to bundleID. Exclusion wins over inclusion within a
// condition; the first condition with an opinion decides.
func (t *Table) Classify(bundleID, token string) Verdict {
	for _, c := range t.Applicable(bundleID) {
		if containsAny(token, c.Exclude) {
			return Exclude
		}
		if containsAny(token, c.Include) {
			return Include
		}
	}
	return NoOpinion
}

// ForceIncludes returns the union of forced include paths for bundleID
func (t *Table) ForceIncludes(bundleID string) []string {
	var out []string
	for _, c := range t.Applicable(bundleID) {
		out = append(out, c.ForceInclude...)
	}
	return out
}

// ForceExcludes returns the union of forced exclude paths for bundleID
func (t *Table) ForceExcludes(bundleID string) []string {
	var out []string
	for _, c := range t.Applicable(bundleID) {
		out = append(out, c.ForceExclude...)
	}
	return out
}

// Skip reports whether a normalized name is blocked by a skip condition
func (t *Table) Skip(token string) bool {
	for _, s := range t.skips {
		if hasAnyPrefix(token, s.Prefixes) && !hasAnyPrefix(token, s.Allow) {
			return true
		}
	}
	return false
}

func containsAny(token string, entries []string) bool {
	for _, e := range entries {
		if e != "" && strings.Contains(token, e) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(token string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(token, p) {
			return true
		}
	}
	return false
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := identifiers.Normalize(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func expandAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, paths.ExpandHome(s))
	}
	return out
}
