package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/ednavoyage/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingPathYieldsDefaults(t *testing.T) {
	// --- Act ---
	m, err := NewLoaderWithEnv(nil).Load(context.Background(), filepath.Join(t.TempDir(), "absent.hcl"))

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, config.Default(), m)
}

func TestLoad_AllBlocks(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	path := writeFile(t, dir, "ednavoyage.hcl", `
grid { size = 10 }

sequence {
  holds = ["1s", "500ms", "2s"]
  level = "reef"
}

aggregation "reef" {
  indices = [0, 9, 99]
}

storage {
  driver = "sqlite"
  path   = "/tmp/edna.db"
}

server { listen = "127.0.0.1:9000" }
`)

	// --- Act ---
	m, err := NewLoaderWithEnv(nil).Load(context.Background(), path)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 10, m.Grid.Size)
	assert.Equal(t, []time.Duration{time.Second, 500 * time.Millisecond, 2 * time.Second}, m.Sequence.Holds)
	assert.Equal(t, "reef", m.Sequence.Level)
	assert.Equal(t, []int{0, 9, 99}, m.Aggregations["reef"])
	assert.Equal(t, []string{"cluster", "reef", "zone"}, m.Levels())
	assert.Equal(t, config.Storage{Driver: "sqlite", Path: "/tmp/edna.db"}, m.Storage)
	assert.Equal(t, "127.0.0.1:9000", m.Server.Listen)
}

func TestLoad_DirectoryLaterFilesOverride(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, dir, "a.hcl", `server { listen = ":1111" }`)
	writeFile(t, dir, "b/override.hcl", `server { listen = ":2222" }`)
	writeFile(t, dir, "notes.txt", `this is not hcl`)

	// --- Act ---
	m, err := NewLoaderWithEnv(nil).Load(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, ":2222", m.Server.Listen)
}

func TestLoad_EnvAndFunctions(t *testing.T) {
	// --- Arrange ---
	loader := NewLoaderWithEnv([]string{"EDNA_DRIVER=BADGER", "EDNA_SIZE=9", "MALFORMED"})
	src := `
grid { size = env.EDNA_SIZE }
storage { driver = lower(env.EDNA_DRIVER) }
server { listen = try(env.EDNA_LISTEN, ":7070") }
`

	// --- Act ---
	m, err := loader.LoadString("inline.hcl", src)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 9, m.Grid.Size)
	assert.Equal(t, config.DriverBadger, m.Storage.Driver)
	assert.Equal(t, ":7070", m.Server.Listen)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"syntax", `grid {`, "failed to parse"},
		{"unknown block", `galaxy { x = 1 }`, "Unsupported block type"},
		{"bad duration", `sequence { holds = ["1s", "soon", "2s"] }`, "sequence hold 1"},
		{"invalid model", `grid { size = 0 }`, "grid size must be at least 1"},
		{"unknown level", `sequence { level = "nowhere" }`, "unknown aggregation level"},
		{"unset env", `server { listen = env.NOPE }`, "Unsupported attribute"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoaderWithEnv(nil).LoadString("bad.hcl", tc.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
