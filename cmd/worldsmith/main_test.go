package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with args and returns what it printed to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := rootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := run(t, "init", "--dir", dir, "--name", "test", "--dsn", "file://data")
	require.NoError(t, err)
	return filepath.Join(dir, "worldsmith.yaml")
}

func TestInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "init", "--dir", dir, "--name", "test")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "templates.yaml"))

	_, err = run(t, "init", "--dir", dir, "--name", "test")
	assert.Error(t, err)

	_, err = run(t, "init", "--dir", t.TempDir())
	assert.Error(t, err)
}

func TestWorldLifecycle(t *testing.T) {
	cfg := newProject(t)

	_, err := run(t, "--config", cfg, "character", "list")
	assert.Error(t, err, "no world selected")

	out, err := run(t, "--config", cfg, "world", "create", "Aeloria", "--template", "Fantasy", "--select")
	require.NoError(t, err)
	assert.Contains(t, out, "Created world Aeloria")

	out, err = run(t, "--config", cfg, "world", "current")
	require.NoError(t, err)
	assert.Contains(t, out, "Aeloria")

	out, err = run(t, "--config", cfg, "world", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Template: fantasy")
	assert.Contains(t, out, "Geography: Varied continents")

	_, err = run(t, "--config", cfg, "world", "create", "Second")
	require.NoError(t, err)

	out, err = run(t, "--config", cfg, "world", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "* ")
	assert.Contains(t, out, "Second")

	_, err = run(t, "--config", cfg, "world", "delete", "aeloria")
	require.NoError(t, err)

	out, err = run(t, "--config", cfg, "world", "current")
	require.NoError(t, err)
	assert.Contains(t, out, "No world selected.")
}

func TestCharactersAndRelationships(t *testing.T) {
	cfg := newProject(t)
	_, err := run(t, "--config", cfg, "world", "create", "Aeloria", "--select")
	require.NoError(t, err)

	_, err = run(t, "--config", cfg, "character", "add", "Mira", "--race", "Human", "--tags", "captain, sailor")
	require.NoError(t, err)
	_, err = run(t, "--config", cfg, "character", "add", "Orin")
	require.NoError(t, err)
	_, err = run(t, "--config", cfg, "relationship", "add", "Orin", "Rival", "mira")
	require.NoError(t, err)

	out, err := run(t, "--config", cfg, "character", "show", "Mira")
	require.NoError(t, err)
	assert.Contains(t, out, "Tags: captain, sailor")
	assert.Contains(t, out, "Orin -[rival]-> Mira")

	_, err = run(t, "--config", cfg, "character", "update", "Mira", "--age", "34")
	require.NoError(t, err)
	out, err = run(t, "--config", cfg, "character", "show", "Mira")
	require.NoError(t, err)
	assert.Contains(t, out, "Age: 34")

	_, err = run(t, "--config", cfg, "character", "update", "Mira", "--age=-1")
	assert.Error(t, err)

	_, err = run(t, "--config", cfg, "character", "remove", "Orin")
	require.NoError(t, err)

	out, err = run(t, "--config", cfg, "relationship", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "unknown character -[rival]-> Mira")

	out, err = run(t, "--config", cfg, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Warnings (1)")
	assert.Contains(t, out, "dangling_reference")
}

func TestTimelineRejectsNonNumericDate(t *testing.T) {
	cfg := newProject(t)
	_, err := run(t, "--config", cfg, "world", "create", "Aeloria", "--select")
	require.NoError(t, err)

	_, err = run(t, "--config", cfg, "timeline", "create", "Age of Tides", "--numeric-dates")
	require.NoError(t, err)
	_, err = run(t, "--config", cfg, "timeline", "add-event", "--", "Age of Tides", "-120", "The Drowning")
	require.NoError(t, err)
	_, err = run(t, "--config", cfg, "timeline", "add-event", "Age of Tides", "spring", "Festival")
	assert.Error(t, err)

	out, err := run(t, "--config", cfg, "timeline", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "(1 events)")
	assert.Contains(t, out, "[-120] The Drowning")
}

func TestExportImport(t *testing.T) {
	cfg := newProject(t)
	_, err := run(t, "--config", cfg, "world", "create", "Aeloria", "--select")
	require.NoError(t, err)
	_, err = run(t, "--config", cfg, "note", "add", "Tides", "--text", "Twice daily.", "--pinned")
	require.NoError(t, err)
	_, err = run(t, "--config", cfg, "lore", "add", "worldDescription-geography", "An archipelago.")
	require.NoError(t, err)

	exportDir := t.TempDir()
	_, err = run(t, "--config", cfg, "export", "-o", exportDir)
	require.NoError(t, err)
	entries, err := os.ReadDir(exportDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "world_"))

	_, err = run(t, "--config", cfg, "world", "create", "Copy", "--select")
	require.NoError(t, err)
	out, err := run(t, "--config", cfg, "import", filepath.Join(exportDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, out, "notes: 1")

	out, err = run(t, "--config", cfg, "note", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "* ")
	assert.Contains(t, out, "Tides [general]")

	out, err = run(t, "--config", cfg, "search", "archipelago")
	require.NoError(t, err)
	assert.Contains(t, out, "[lore]")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"unrelated": true}`), 0o600))
	_, err = run(t, "--config", cfg, "import", bad)
	assert.Error(t, err)
}

func TestMagicTree(t *testing.T) {
	cfg := newProject(t)
	_, err := run(t, "--config", cfg, "world", "create", "Aeloria", "--select")
	require.NoError(t, err)
	_, err = run(t, "--config", cfg, "magic", "add-type", "Tidecraft")
	require.NoError(t, err)
	_, err = run(t, "--config", cfg, "magic", "add-skill", "Tidecraft", "Call Water")
	require.NoError(t, err)
	_, err = run(t, "--config", cfg, "magic", "add-skill", "Tidecraft", "Maelstrom", "--parent", "Call Water", "--ultimate")
	require.NoError(t, err)

	out, err := run(t, "--config", cfg, "magic", "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "  - Call Water\n")
	assert.Contains(t, out, "    - Maelstrom [ultimate]\n")
}

func TestMapMarkers(t *testing.T) {
	cfg := newProject(t)
	_, err := run(t, "--config", cfg, "world", "create", "Aeloria", "--select")
	require.NoError(t, err)
	_, err = run(t, "--config", cfg, "map", "add", "Coast")
	require.NoError(t, err)
	_, err = run(t, "--config", cfg, "map", "mark", "Coast", "25", "50", "--label", "Port Vey")
	require.NoError(t, err)
	_, err = run(t, "--config", cfg, "map", "mark", "Coast", "120", "50")
	assert.Error(t, err)
	_, err = run(t, "--config", cfg, "map", "draw", "Coast", "0,0", "10,10")
	require.NoError(t, err)

	out, err := run(t, "--config", cfg, "map", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Coast (1 drawings)")
	assert.Contains(t, out, "Port Vey")
}
