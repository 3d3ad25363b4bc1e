// Test Type: Unit Test
// Description: Tests for the location scanner - heuristic and rule based matching

package scanner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/arthur-debert/remnant/pkg/conditions"
	"github.com/arthur-debert/remnant/pkg/discovery"
	"github.com/arthur-debert/remnant/pkg/identifiers"
	"github.com/arthur-debert/remnant/pkg/scanner"
	"github.com/arthur-debert/remnant/pkg/testutil"
	"github.com/arthur-debert/remnant/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rules = `
[[condition]]
key = "com.vendor.suite"
include = ["suitecore"]
exclude = ["suitetrial"]

[[skip]]
prefixes = ["com.apple"]
allow = ["com.apple.dt"]
`

func table(t *testing.T) *conditions.Table {
	t.Helper()
	tbl, err := conditions.Load([]byte(rules))
	require.NoError(t, err)
	return tbl
}

func newScanner(t *testing.T, fs types.FS, app types.App, opts scanner.Options) *scanner.Scanner {
	t.Helper()
	return scanner.New(fs, identifiers.New(app), table(t), opts)
}

func TestScan_NotesScenario(t *testing.T) {
	tree := testutil.NewTree(t).Dir(
		"/root/com.example.notes",
		"/root/com.example.other",
	)
	app := types.App{BundleID: "com.example.notes", Name: "Notes Helper", Path: "/Applications/Notes Helper.app"}

	set := discovery.NewSet()
	newScanner(t, tree.FS, app, scanner.Options{Strict: true}).Scan(context.Background(), []string{"/root"}, set)

	assert.Equal(t, []string{"/root/com.example.notes"}, set.Snapshot())
}

func TestMatches_StrictAndLoose(t *testing.T) {
	app := types.App{BundleID: "com.example.myapp", Name: "MyApp", Path: "/Applications/MyApp.app"}
	token := identifiers.Normalize("MyApp Helper")
	tree := testutil.NewTree(t)

	strict := newScanner(t, tree.FS, app, scanner.Options{Strict: true})
	loose := newScanner(t, tree.FS, app, scanner.Options{Strict: false})

	assert.False(t, strict.Matches(token), "strict mode requires whole-token equality")
	assert.True(t, loose.Matches(token), "loose mode accepts containment")
	assert.True(t, strict.Matches(identifiers.Normalize("MyApp")))
}

func TestMatches(t *testing.T) {
	tree := testutil.NewTree(t)

	tests := []struct {
		name  string
		app   types.App
		opts  scanner.Options
		entry string
		want  bool
	}{
		{
			name:  "bundle_id_embedded",
			app:   types.App{BundleID: "com.example.notes", Name: "Notes"},
			opts:  scanner.Options{Strict: true},
			entry: "com.example.notes.plist",
			want:  true,
		},
		{
			name:  "bundle_suffix",
			app:   types.App{BundleID: "com.example.notes", Name: "Notes"},
			opts:  scanner.Options{Strict: true},
			entry: "ExampleNotes",
			want:  true,
		},
		{
			name:  "short_bundle_id_not_used",
			app:   types.App{BundleID: "abc", Name: "Zed Editor"},
			opts:  scanner.Options{Strict: false},
			entry: "abcdef",
			want:  false,
		},
		{
			name:  "path_stem",
			app:   types.App{BundleID: "com.example.x", Name: "Something", Path: "/Applications/Stem Name.app"},
			opts:  scanner.Options{Strict: true},
			entry: "Stem Name",
			want:  true,
		},
		{
			name:  "letters_only_name",
			app:   types.App{BundleID: "com.example.x", Name: "App 2"},
			opts:  scanner.Options{Strict: true},
			entry: "App",
			want:  true,
		},
		{
			name:  "condition_include",
			app:   types.App{BundleID: "com.vendor.suite.editor", Name: "Editor"},
			opts:  scanner.Options{Strict: true},
			entry: "SuiteCore Data",
			want:  true,
		},
		{
			name:  "condition_exclude_beats_bundle_match",
			app:   types.App{BundleID: "com.vendor.suite.editor", Name: "Editor"},
			opts:  scanner.Options{Strict: false},
			entry: "com.vendor.suite.editor.suitetrial",
			want:  false,
		},
		{
			name:  "web_app_requires_bundle_id",
			app:   types.App{BundleID: "com.google.Chrome.app.abcdef", Name: "Mail", WebApp: true},
			opts:  scanner.Options{Strict: false},
			entry: "Mail",
			want:  false,
		},
		{
			name:  "web_app_bundle_id",
			app:   types.App{BundleID: "com.google.Chrome.app.abcdef", Name: "Mail", WebApp: true},
			opts:  scanner.Options{Strict: false},
			entry: "com.google.Chrome.app.abcdef.plist",
			want:  true,
		},
		{
			name:  "empty_name_never_matches",
			app:   types.App{BundleID: "x"},
			opts:  scanner.Options{Strict: false},
			entry: "anything",
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScanner(t, tree.FS, tt.app, tt.opts)
			assert.Equal(t, tt.want, s.Matches(identifiers.Normalize(tt.entry)))
		})
	}
}

func TestScan_SkipFilter(t *testing.T) {
	tree := testutil.NewTree(t).
		Dir("/lib/com.apple.notes", "/lib/com.apple.dt.notes", "/lib/notes").
		File("/lib/notes.plist", "").
		File("/lib/notes.png", "").
		File("/lib/notesdata", "")
	app := types.App{BundleID: "com.example.notes", Name: "Notes"}

	set := discovery.NewSet()
	newScanner(t, tree.FS, app, scanner.Options{Strict: false}).Scan(context.Background(), []string{"/lib"}, set)

	assert.Equal(t, []string{
		"/lib/com.apple.dt.notes",
		"/lib/notes",
		"/lib/notes.plist",
		"/lib/notesdata",
	}, set.Snapshot())
}

func TestScan_SkipsAlreadyCollected(t *testing.T) {
	tree := testutil.NewTree(t).Dir("/lib/notes")
	app := types.App{BundleID: "com.example.notes", Name: "Notes"}

	set := discovery.NewSet()
	set.Add("/lib/notes")
	newScanner(t, tree.FS, app, scanner.Options{Strict: true}).Scan(context.Background(), []string{"/lib"}, set)

	assert.Equal(t, 1, set.Len())
}

func TestScan_MultipleLocationsAndFailures(t *testing.T) {
	tree := testutil.NewTree(t).
		Dir("/a/Notes", "/b/com.example.notes", "/c/Notes", "/d/unrelated")
	efs := testutil.NewErrorFS(tree.FS)
	efs.Fail("/c", errors.New("permission denied"))
	app := types.App{BundleID: "com.example.notes", Name: "Notes"}

	locations := []string{"/a", "/b", "/c", "/d", "/missing"}
	set := discovery.NewSet()
	newScanner(t, efs, app, scanner.Options{Strict: true}).Scan(context.Background(), locations, set)

	assert.Equal(t, []string{"/a/Notes", "/b/com.example.notes"}, set.Snapshot())
	for _, l := range locations {
		assert.Equal(t, 1, efs.ReadDirCount(l), "each location is listed exactly once")
	}
}

func TestScan_Idempotent(t *testing.T) {
	tree := testutil.NewTree(t).
		Dir("/a/Notes", "/a/NotesBackup", "/b/com.example.notes", "/b/other")
	app := types.App{BundleID: "com.example.notes", Name: "Notes"}
	s := newScanner(t, tree.FS, app, scanner.Options{Strict: false})

	first := discovery.NewSet()
	s.Scan(context.Background(), []string{"/a", "/b"}, first)
	second := discovery.NewSet()
	s.Scan(context.Background(), []string{"/a", "/b"}, second)

	assert.Equal(t, first.Snapshot(), second.Snapshot())
}
