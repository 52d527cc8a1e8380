package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigPassesPlannerValidation(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Planner.Validate())
}

func TestLoadFromEnvOverridesDefaults(t *testing.T) {
	t.Setenv("LANTERN_DATA_DIR", "/var/lib/lantern")
	t.Setenv("LANTERN_PLANNER_CRAWL_BUDGET", "50000")
	t.Setenv("LANTERN_CROSS_ENCODER_ENABLED", "true")
	t.Setenv("LANTERN_CLUSTER_SEED_PEERS", "10.0.0.1:7700,10.0.0.2:7700")

	cfg := LoadFromEnv()
	require.Equal(t, "/var/lib/lantern", cfg.DataDir)
	require.Equal(t, 50000, cfg.Planner.CrawlBudget)
	require.True(t, cfg.CrossEncoder.Enabled)
	require.Equal(t, []string{"10.0.0.1:7700", "10.0.0.2:7700"}, cfg.Cluster.SeedPeers)
}

func TestLoadFromFileParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lantern.yaml")
	yaml := `
data_dir: /data/lantern
planner:
  crawl_budget: 75000
  top_host_fraction: 0.3
  wander_fraction: 0.15
  top_n_hosts_surplus: 500
  num_job_queues: 8
cluster:
  member_id: node-a
  listen_addr: ":9000"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, "/data/lantern", cfg.DataDir)
	require.Equal(t, 75000, cfg.Planner.CrawlBudget)
	require.Equal(t, "node-a", cfg.Cluster.MemberID)
}

func TestLoadFromEnvOrFileEnvTakesPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lantern.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: /from/file\n"), 0o644))
	t.Setenv("LANTERN_DATA_DIR", "/from/env")

	cfg, err := LoadFromEnvOrFile(path)
	require.NoError(t, err)
	require.Equal(t, "/from/env", cfg.DataDir)
}

func TestLoadFromFileMissingReturnsError(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/lantern.yaml")
	require.Error(t, err)
}
