package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()

	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = 0

	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownDedupPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Topology.DedupPolicy = "keep_both"

	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsVertexMergeBelowSnap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Topology.SnapMeters = 5
	cfg.Topology.VertexMergeMeters = 1

	assert.Error(t, cfg.Validate())
}

func TestValidateRequiresSqlitePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = ""

	assert.Error(t, cfg.Validate())
}

func TestLoadFromYAMLOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trailnet.yaml")
	contents := "topology:\n  max_chain_edges: 128\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := LoadFromYAML(path)

	require.NoError(t, err)
	assert.Equal(t, 128, cfg.Topology.MaxChainEdges)
	assert.Equal(t, DefaultConfig().Topology.SnapMeters, cfg.Topology.SnapMeters)
}

func TestLoadFromYAMLMissingFile(t *testing.T) {
	_, err := LoadFromYAML("/nonexistent/trailnet.yaml")

	assert.Error(t, err)
}
