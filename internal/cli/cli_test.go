// Test Type: Integration Test
// Description: Commands run end to end against a temporary home directory

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/remnant/pkg/output"
	"github.com/arthur-debert/remnant/pkg/testutil"
	"github.com/arthur-debert/remnant/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupHome isolates every directory remnant reads or writes and returns
// the temporary root
func setupHome(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	t.Setenv("HOME", filepath.Join(root, "home"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	t.Setenv("REMNANT_DATA_DIR", filepath.Join(root, "data"))
	t.Setenv("REMNANT_CONFIG_DIR", filepath.Join(root, "config"))
	t.Setenv("REMNANT_SEARCH_LOCATIONS", filepath.Join(root, "L"))
	t.Setenv("REMNANT_SPOTLIGHT_ENABLED", "false")
	t.Setenv("REMNANT_SIZES_METADATA", "false")
	t.Setenv("NO_COLOR", "1")

	require.NoError(t, os.MkdirAll(filepath.Join(root, "home"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "L", "com.example.notes"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "L", "other"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "L", "Sticky Notes Pro"), 0755))
	return root
}

func writeBundle(t *testing.T, path string, info map[string]string) {
	t.Helper()
	contents := filepath.Join(path, "Contents")
	require.NoError(t, os.MkdirAll(contents, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(contents, "Info.plist"), []byte(testutil.Plist(info)), 0644))
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	setupHome(t)

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "remnant version dev")
}

func TestFindCmd_JSON(t *testing.T) {
	root := setupHome(t)
	app := filepath.Join(root, "Applications", "Notes.app")
	writeBundle(t, app, map[string]string{
		"CFBundleIdentifier": "com.example.notes",
		"CFBundleName":       "Notes",
	})

	out, err := run(t, "find", app, "--format", "json")
	require.NoError(t, err)

	var result types.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "com.example.notes", result.App.BundleID)
	assert.Equal(t, []string{app, filepath.Join(root, "L", "com.example.notes")}, result.Paths())
	assert.Equal(t, types.ArchUnknown, result.Arch)
}

func TestFindCmd_LooseMatchingIsOptIn(t *testing.T) {
	root := setupHome(t)
	app := filepath.Join(root, "Applications", "Notes.app")
	writeBundle(t, app, map[string]string{
		"CFBundleIdentifier": "com.example.notes",
		"CFBundleName":       "Notes",
	})
	other := filepath.Join(root, "L", "Sticky Notes Pro")

	out, err := run(t, "find", app, "--format", "json")
	require.NoError(t, err)
	var result types.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.NotContains(t, result.Paths(), other)

	out, err = run(t, "find", app, "--format", "json", "--loose")
	require.NoError(t, err)
	result = types.Result{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Contains(t, result.Paths(), other)
}

func TestFindCmd_LeavesDataDirUntouched(t *testing.T) {
	root := setupHome(t)
	app := filepath.Join(root, "Applications", "Notes.app")
	writeBundle(t, app, map[string]string{"CFBundleIdentifier": "com.example.notes"})

	_, err := run(t, "find", app, "--format", "json")
	require.NoError(t, err)
	_, err = run(t, "orphans", "list", "--format", "json")
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(root, "data"))
	assert.True(t, os.IsNotExist(statErr), "data directory must not be created by read-only commands")
}

func TestFindCmd_DeletedAppNeedsFlags(t *testing.T) {
	root := setupHome(t)
	gone := filepath.Join(root, "Applications", "Gone.app")

	_, err := run(t, "find", gone)
	assert.Error(t, err)

	out, err := run(t, "find", gone, "--bundle-id", "com.example.notes", "--format", "json")
	require.NoError(t, err)

	var result types.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "Gone", result.App.Name)
	assert.Equal(t, []string{filepath.Join(root, "L", "com.example.notes")}, result.Paths())
}

func TestFindCmd_UnknownFormat(t *testing.T) {
	root := setupHome(t)
	app := filepath.Join(root, "Applications", "Notes.app")
	writeBundle(t, app, map[string]string{"CFBundleIdentifier": "com.example.notes"})

	_, err := run(t, "find", app, "--format", "xml")
	assert.Error(t, err)
}

func TestOrphansCmd(t *testing.T) {
	root := setupHome(t)
	app := filepath.Join(root, "Applications", "Notes.app")
	writeBundle(t, app, map[string]string{"CFBundleIdentifier": "com.example.notes"})
	orphan := filepath.Join(root, "home", "weird-cache")
	require.NoError(t, os.MkdirAll(orphan, 0755))

	out, err := run(t, "orphans", "add", app, orphan)
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded 1 files")

	out, err = run(t, "orphans", "list", "--format", "json")
	require.NoError(t, err)
	var list []output.Association
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Equal(t, []output.Association{{App: app, Files: []string{orphan}}}, list)

	out, err = run(t, "find", app, "--format", "json")
	require.NoError(t, err)
	var result types.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Contains(t, result.Paths(), orphan)

	_, err = run(t, "orphans", "remove", app)
	require.NoError(t, err)
	out, err = run(t, "orphans", "list", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestConditionsCmd(t *testing.T) {
	setupHome(t)

	out, err := run(t, "conditions", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "# Matching conditions")
	assert.Contains(t, out, "`com.google.chrome`")
}

func TestConditionsCmd_CustomTable(t *testing.T) {
	root := setupHome(t)
	table := filepath.Join(root, "conditions.toml")
	require.NoError(t, os.WriteFile(table, []byte("[[condition]]\nkey = \"org.example.tool\"\ninclude = [\"a|b\"]\n"), 0644))
	t.Setenv("REMNANT_CONDITIONS_FILE", table)

	out, err := run(t, "conditions", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "| `org.example.tool` | ab | - | - | - |")
	assert.NotContains(t, out, "com.google.chrome")
}
