package hcl

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/ednavoyage/internal/config"
)

func TestEncode_LoadsBackToSameModel(t *testing.T) {
	// --- Arrange ---
	m := config.Default()
	m.Grid.Size = 10
	m.Sequence.Holds = []time.Duration{1800 * time.Millisecond, 250 * time.Millisecond, 2 * time.Second}
	m.Sequence.Level = "reef"
	m.Aggregations["reef"] = []int{0, 9, 99}
	m.Storage = config.Storage{Driver: config.DriverBadger, Path: "/var/lib/edna"}
	m.Server.Listen = "127.0.0.1:9000"

	// --- Act ---
	src, err := Encode(m)
	require.NoError(t, err)
	got, err := NewLoaderWithEnv(nil).LoadString("encoded.hcl", string(src))

	// --- Assert ---
	require.NoError(t, err, "encoded document:\n%s", src)
	if diff := cmp.Diff(m, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_Layout(t *testing.T) {
	src, err := Encode(config.Default())

	require.NoError(t, err)
	text := string(src)
	assert.Contains(t, text, "grid {\n  size = 8\n}")
	assert.Contains(t, text, `holds = ["1.8s", "1.8s", "1.6s"]`)
	assert.Contains(t, text, `aggregation "cluster" {`)
	assert.Contains(t, text, `indices = [6, 11, 33]`)
	assert.NotContains(t, text, "path")
}
