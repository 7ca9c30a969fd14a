package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinicanvas/internal/config"
	"infinicanvas/internal/domain"
	"infinicanvas/internal/service"
	"infinicanvas/internal/storage"
)

// run executes the root command with args against a temp config and data dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut)
	root.SetArgs(append([]string{
		"--config", filepath.Join(dir, "config.toml"),
		"--data-dir", filepath.Join(dir, "data"),
	}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func seedPage(t *testing.T, dir string) {
	t.Helper()
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0755))
	db, err := storage.New(config.StorageConfig{DataDir: dataDir}.DBPath())
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, storage.NewPageStore(db).CreatePage(&domain.Page{ID: "p1", Name: "Main", CameraZoom: 1}))
}

func TestSetVersion(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2026-01-01")
	defer SetVersion("dev", "", "")
	assert.Equal(t, "1.2.3", version)
	assert.Equal(t, "abc123", commit)
	assert.Equal(t, "2026-01-01", date)
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "mcp", "place", "pages", "config"} {
		assert.Contains(t, names, want)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "config", "init")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)

	_, err = run(t, dir, "config", "init")
	assert.Error(t, err, "refuses to overwrite")
	_, err = run(t, dir, "config", "init", "--force")
	assert.NoError(t, err)

	out, err := run(t, dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "row_max_width = 15000.0")
	assert.Contains(t, out, filepath.Join(dir, "data"))
}

func TestPagesAndPlace(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "pages")
	require.NoError(t, err)
	assert.Contains(t, out, "no pages")

	_, err = run(t, dir, "place")
	assert.Error(t, err, "no page to place on")

	seedPage(t, dir)

	out, err = run(t, dir, "pages")
	require.NoError(t, err)
	assert.Contains(t, out, "Main")

	out, err = run(t, dir, "place", "--aspect", "16:9", "--count", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "origin")
	assert.Contains(t, out, "centred on viewport")

	out, err = run(t, dir, "place", "--json")
	require.NoError(t, err)
	var preview service.Preview
	require.NoError(t, json.Unmarshal([]byte(out), &preview))
	assert.Equal(t, -252.0, preview.Placement.X)

	_, err = run(t, dir, "place", "--count", "0")
	assert.Error(t, err)
}
