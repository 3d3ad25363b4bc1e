// Test Type: Unit Test
// Description: Discovery pipeline over an in-memory filesystem

package discovery_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arthur-debert/remnant/pkg/collapse"
	"github.com/arthur-debert/remnant/pkg/conditions"
	"github.com/arthur-debert/remnant/pkg/discovery"
	"github.com/arthur-debert/remnant/pkg/testutil"
	"github.com/arthur-debert/remnant/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContainers struct{ paths []string }

func (f fakeContainers) Resolve(context.Context, string) []string { return f.paths }

type fakeIndex struct {
	paths    []string
	onQuery  func()
	disabled bool
}

func (f fakeIndex) Enabled() bool {
	return !f.disabled
}

func (f fakeIndex) Query(context.Context, string, string) []string {
	if f.onQuery != nil {
		f.onQuery()
	}
	return f.paths
}

type fakeRegistry struct {
	files map[string][]string
	err   error
}

func (f fakeRegistry) AssociatedFiles(appPath string) ([]string, error) {
	return f.files[appPath], f.err
}

type fakeSizes struct {
	mu       sync.Mutex
	archPath string
}

func (f *fakeSizes) Annotate(_ context.Context, paths []string) []types.Item {
	items := make([]types.Item, len(paths))
	for i, p := range paths {
		items[i] = types.Item{Path: p, RealSize: 100, LogicalSize: 10}
	}
	return items
}

func (f *fakeSizes) Architecture(_ context.Context, bundlePath string) types.Arch {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archPath = bundlePath
	return types.ArchARM64
}

func emptyTable(t *testing.T) *conditions.Table {
	t.Helper()
	table, err := conditions.Load(nil)
	require.NoError(t, err)
	return table
}

func TestFind_BundleIDScenario(t *testing.T) {
	tree := testutil.NewTree(t).Dir("/L/com.example.notes", "/L/com.example.other")
	app := types.App{Name: "Notes Helper", BundleID: "com.example.notes", Path: "/Applications/Notes Helper.app"}

	f := discovery.NewFinder(app, discovery.Deps{
		FS:         tree.FS,
		Locations:  []string{"/L"},
		Conditions: emptyTable(t),
	})
	result := f.Find(context.Background())

	assert.Equal(t, []string{"/L/com.example.notes"}, result.Paths())
	assert.Equal(t, app, result.App)
	assert.Equal(t, types.ArchUnknown, result.Arch)
}

func TestFind_StrictAndLoose(t *testing.T) {
	tree := testutil.NewTree(t).Dir("/L/MyApp Helper")
	app := types.App{Name: "MyApp", BundleID: "org.vendor.x", Path: "/Applications/MyApp.app"}

	loose := discovery.NewFinder(app, discovery.Deps{FS: tree.FS, Locations: []string{"/L"}, Conditions: emptyTable(t)})
	assert.Equal(t, []string{"/L/MyApp Helper"}, loose.Find(context.Background()).Paths())

	strict := discovery.NewFinder(app, discovery.Deps{FS: tree.FS, Locations: []string{"/L"}, Strict: true, Conditions: emptyTable(t)})
	assert.Empty(t, strict.Find(context.Background()).Paths())
}

func TestFind_ForceRulesWin(t *testing.T) {
	table, err := conditions.Load([]byte(`
[[condition]]
key = "com.example.notes"
force_include = ["/Forced/keep"]
force_exclude = ["/L/com.example.notes", "/Index/excluded"]
`))
	require.NoError(t, err)

	tree := testutil.NewTree(t).Dir("/L/com.example.notes", "/L/com.example.notes.helper")
	app := types.App{Name: "Notes", BundleID: "com.example.notes", Path: "/Applications/Notes.app"}

	f := discovery.NewFinder(app, discovery.Deps{
		FS:         tree.FS,
		Locations:  []string{"/L"},
		Conditions: table,
		Index:      fakeIndex{paths: []string{"/Index/excluded", "/Index/kept"}},
	})
	result := f.Find(context.Background())

	assert.Equal(t, []string{"/Forced/keep", "/Index/kept", "/L/com.example.notes.helper"}, result.Paths())
}

func TestFind_ForceRulesApplyToShortBundleID(t *testing.T) {
	table, err := conditions.Load([]byte(`
[[condition]]
key = "note"
force_include = ["/Forced/note"]
force_exclude = ["/Index/dropped"]
`))
	require.NoError(t, err)

	tree := testutil.NewTree(t)
	app := types.App{Name: "Zed", BundleID: "note"}

	f := discovery.NewFinder(app, discovery.Deps{
		FS:         tree.FS,
		Conditions: table,
		Index:      fakeIndex{paths: []string{"/Index/dropped"}},
	})

	assert.Equal(t, []string{"/Forced/note"}, f.Find(context.Background()).Paths())
}

func TestFind_SourcesMerged(t *testing.T) {
	tree := testutil.NewTree(t).
		Bundle("/Applications/Notes.app", map[string]string{"CFBundleIdentifier": "com.example.notes"}).
		Dir("/L/Notes")
	app := types.App{Name: "Notes", BundleID: "com.example.notes", Path: "/Applications/Notes.app"}
	sizes := &fakeSizes{}

	f := discovery.NewFinder(app, discovery.Deps{
		FS:         tree.FS,
		Locations:  []string{"/L", "/missing"},
		Conditions: emptyTable(t),
		Containers: fakeContainers{paths: []string{"/C/0B2E1C4A-6B2F-4F7E-9C8D-1A2B3C4D5E6F"}},
		Index:      fakeIndex{paths: []string{"/L/Notes/Cache", "/Users/t/Notes.txt"}},
		Registry:   fakeRegistry{files: map[string][]string{"/Applications/Notes.app": {"/Orphans/notes.db/"}}},
		Sizes:      sizes,
	})
	result := f.Find(context.Background())

	assert.Equal(t, []string{
		"/Applications/Notes.app",
		"/C/0B2E1C4A-6B2F-4F7E-9C8D-1A2B3C4D5E6F",
		"/L/Notes",
		"/Orphans/notes.db",
		"/Users/t/Notes.txt",
	}, result.Paths())
	assert.Equal(t, types.ArchARM64, result.Arch)
	assert.Equal(t, "/Applications/Notes.app", sizes.archPath)
	real, logical := result.TotalSize()
	assert.Equal(t, int64(500), real)
	assert.Equal(t, int64(50), logical)
}

func TestFind_RegistryErrorIgnored(t *testing.T) {
	tree := testutil.NewTree(t).Dir("/L/com.example.notes")
	app := types.App{Name: "Notes", BundleID: "com.example.notes", Path: "/Applications/Notes.app"}

	f := discovery.NewFinder(app, discovery.Deps{
		FS:         tree.FS,
		Locations:  []string{"/L"},
		Conditions: emptyTable(t),
		Registry:   fakeRegistry{err: errors.New("registry offline")},
	})
	assert.Equal(t, []string{"/L/com.example.notes"}, f.Find(context.Background()).Paths())
}

func TestFind_WrapperSeed(t *testing.T) {
	tree := testutil.NewTree(t).
		Bundle("/Users/t/Library/Containers/X/Data/Wrapper/Game.app", map[string]string{})
	app := types.App{Name: "Game", BundleID: "com.example.game", Path: "/Users/t/Library/Containers/X/Data/Wrapper/Game.app", WebApp: true}

	f := discovery.NewFinder(app, discovery.Deps{FS: tree.FS, Conditions: emptyTable(t)})
	assert.Equal(t, []string{"/Users/t/Library/Containers/X/Data"}, f.Find(context.Background()).Paths())
}

func TestFind_TrashGuard(t *testing.T) {
	tree := testutil.NewTree(t).Dir("/Users/t/.Trash/Notes.app")
	app := types.App{Name: "Notes", BundleID: "com.example.notes", Path: "/Users/t/.Trash/Notes.app"}

	f := discovery.NewFinder(app, discovery.Deps{
		FS:         tree.FS,
		Conditions: emptyTable(t),
		Index:      fakeIndex{paths: []string{"/Users/t/.Trash/Notes.app"}},
	})
	assert.Empty(t, f.Find(context.Background()).Items)
}

func TestFind_IdempotentAndNonOverlapping(t *testing.T) {
	tree := testutil.NewTree(t).
		Dir("/L1/Notes/sub", "/L1/NotesData", "/L2/com.example.notes").
		File("/L2/com.example.notes.plist", "")
	app := types.App{Name: "Notes", BundleID: "com.example.notes", Path: "/Applications/Notes.app"}

	f := discovery.NewFinder(app, discovery.Deps{
		FS:         tree.FS,
		Locations:  []string{"/L1", "/L2", "/L1/Notes"},
		Conditions: emptyTable(t),
		Index:      fakeIndex{paths: []string{"/L1/Notes/sub/deeper"}},
	})

	first := f.Find(context.Background())
	second := f.Find(context.Background())
	assert.Equal(t, first, second)
	assert.Equal(t, []string{
		"/L1/Notes",
		"/L1/NotesData",
		"/L2/com.example.notes",
		"/L2/com.example.notes.plist",
	}, first.Paths())

	paths := first.Paths()
	for _, a := range paths {
		for _, b := range paths {
			assert.False(t, collapse.IsDescendant(a, b), "%s is below %s", a, b)
		}
	}
}

func waitFor(t *testing.T, ch <-chan types.Result) types.Result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("asynchronous run did not complete")
		return types.Result{}
	}
}

func TestFindAsync_Interactive(t *testing.T) {
	tree := testutil.NewTree(t).Dir("/L/com.example.notes", "/L/Notes")
	app := types.App{Name: "Notes", BundleID: "com.example.notes", Path: "/Applications/Notes.app"}
	state := discovery.NewState()

	var stepDuringIndex int
	f := discovery.NewFinder(app, discovery.Deps{
		FS:         tree.FS,
		Locations:  []string{"/L"},
		Conditions: emptyTable(t),
		Index:      fakeIndex{onQuery: func() { stepDuringIndex = state.Step() }},
	})

	done := make(chan types.Result, 1)
	f.FindAsync(context.Background(), discovery.Interactive{
		State:      state,
		OnComplete: func(r types.Result) { done <- r },
	})
	result := waitFor(t, done)

	assert.Equal(t, discovery.StepIndex, stepDuringIndex)
	assert.Equal(t, 0, state.Step())
	assert.Equal(t, result, state.Result())
	assert.Equal(t, []string{"/L/Notes", "/L/com.example.notes"}, state.Selected())
}

func TestFindAsync_DisabledIndexSkipsPhase(t *testing.T) {
	tree := testutil.NewTree(t).Dir("/L/com.example.notes")
	app := types.App{Name: "Notes", BundleID: "com.example.notes", Path: "/Applications/Notes.app"}
	state := discovery.NewState()

	queried := false
	f := discovery.NewFinder(app, discovery.Deps{
		FS:         tree.FS,
		Locations:  []string{"/L"},
		Conditions: emptyTable(t),
		Index: fakeIndex{
			paths:    []string{"/Index/never"},
			onQuery:  func() { queried = true },
			disabled: true,
		},
	})

	done := make(chan types.Result, 1)
	f.FindAsync(context.Background(), discovery.Interactive{
		State:      state,
		OnComplete: func(r types.Result) { done <- r },
	})
	result := waitFor(t, done)

	assert.False(t, queried)
	assert.Equal(t, []string{"/L/com.example.notes"}, result.Paths())
}

func TestFindAsync_InteractiveUndoKeepsSelection(t *testing.T) {
	tree := testutil.NewTree(t).Dir("/L/com.example.notes", "/L/Notes")
	app := types.App{Name: "Notes", BundleID: "com.example.notes", Path: "/Applications/Notes.app"}
	state := discovery.NewState()
	state.Select("/L/Notes", true)

	f := discovery.NewFinder(app, discovery.Deps{FS: tree.FS, Locations: []string{"/L"}, Conditions: emptyTable(t)})

	done := make(chan types.Result, 1)
	f.FindAsync(context.Background(), discovery.Interactive{
		State:      state,
		Undo:       true,
		OnComplete: func(r types.Result) { done <- r },
	})
	waitFor(t, done)

	assert.Len(t, state.Result().Items, 2)
	assert.Equal(t, []string{"/L/Notes"}, state.Selected())
}

func TestFindAsync_HeadlessCollapsesAllAncestors(t *testing.T) {
	tree := testutil.NewTree(t)
	app := types.App{Name: "Zed", BundleID: "io.example.zed"}
	deps := discovery.Deps{
		FS:         tree.FS,
		Conditions: emptyTable(t),
		Index:      fakeIndex{paths: []string{"/A/B", "/A/B-x", "/A/B/C"}},
	}

	inline := discovery.NewFinder(app, deps).Find(context.Background())
	assert.Equal(t, []string{"/A/B", "/A/B-x", "/A/B/C"}, inline.Paths())

	done := make(chan types.Result, 1)
	discovery.NewFinder(app, deps).FindAsync(context.Background(), discovery.Headless{
		OnComplete: func(r types.Result) { done <- r },
	})
	assert.Equal(t, []string{"/A/B", "/A/B-x"}, waitFor(t, done).Paths())
}

func TestFindAsync_NilMode(t *testing.T) {
	tree := testutil.NewTree(t)
	f := discovery.NewFinder(types.App{Name: "Zed"}, discovery.Deps{FS: tree.FS, Conditions: emptyTable(t)})

	assert.NotPanics(t, func() { f.FindAsync(context.Background(), nil) })
}
