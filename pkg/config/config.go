// Package config loads this module's runtime configuration two ways:
// LoadFromEnv for LANTERN_*-prefixed environment variables (Docker/K8s
// friendly) and LoadFromFile for a YAML document, with environment
// variables always taking precedence when both are used together via
// LoadFromEnvOrFile.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lanterngraph/core/pkg/planner"
	"github.com/lanterngraph/core/pkg/ranking"
)

// Config is the root configuration for every cmd/lantern subcommand. Each
// subcommand reads only the sections it needs.
type Config struct {
	// DataDir is the root directory badger-backed stores are opened under
	// (edge store segments, centrality stores, the proxy-node table, crawl
	// job queues each get their own subdirectory).
	DataDir string `yaml:"data_dir"`

	Planner      planner.Config            `yaml:"planner"`
	CrossEncoder ranking.CrossEncoderConfig `yaml:"cross_encoder"`
	Cluster      ClusterConfig             `yaml:"cluster"`
}

// ClusterConfig configures this node's membership and gossip behavior.
type ClusterConfig struct {
	MemberID     string        `yaml:"member_id"`
	ListenAddr   string        `yaml:"listen_addr"`
	SeedPeers    []string      `yaml:"seed_peers"`
	GossipPeriod time.Duration `yaml:"gossip_period"`
}

// DefaultConfig returns a configuration usable as a single-node deployment
// with no external cross-encoder service.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Planner: planner.Config{
			CrawlBudget:      100_000,
			TopHostFraction:  0.2,
			WanderFraction:   0.1,
			TopNHostsSurplus: 1000,
			NumJobQueues:     16,
		},
		CrossEncoder: ranking.DefaultCrossEncoderConfig(),
		Cluster: ClusterConfig{
			ListenAddr:   ":7700",
			GossipPeriod: 5 * time.Second,
		},
	}
}

// LoadFromFile reads a YAML config document from path, starting from
// DefaultConfig so an incomplete file still produces a usable Config.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromEnv loads configuration from LANTERN_*-prefixed environment
// variables on top of DefaultConfig.
//
// Environment Variables:
//
//	LANTERN_DATA_DIR                     - data root directory
//	LANTERN_PLANNER_CRAWL_BUDGET         - total URLs to schedule per planning pass
//	LANTERN_PLANNER_TOP_HOST_FRACTION    - fraction of hosts eligible for a budget
//	LANTERN_PLANNER_WANDER_FRACTION      - fraction of each host's budget spent wandering
//	LANTERN_PLANNER_NUM_JOB_QUEUES       - number of round-robined job queue files
//	LANTERN_CROSS_ENCODER_ENABLED        - enable the precision reranking stage
//	LANTERN_CROSS_ENCODER_API_URL        - reranking service URL
//	LANTERN_CLUSTER_MEMBER_ID            - this node's stable member id
//	LANTERN_CLUSTER_LISTEN_ADDR          - address this node's RPC/gossip server binds
//	LANTERN_CLUSTER_SEED_PEERS           - comma-separated peer addresses to gossip with
func LoadFromEnv() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv("LANTERN_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if v := os.Getenv("LANTERN_PLANNER_CRAWL_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Planner.CrawlBudget = n
		}
	}
	if v := os.Getenv("LANTERN_PLANNER_TOP_HOST_FRACTION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Planner.TopHostFraction = f
		}
	}
	if v := os.Getenv("LANTERN_PLANNER_WANDER_FRACTION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Planner.WanderFraction = f
		}
	}
	if v := os.Getenv("LANTERN_PLANNER_NUM_JOB_QUEUES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Planner.NumJobQueues = n
		}
	}

	if v := os.Getenv("LANTERN_CROSS_ENCODER_ENABLED"); v != "" {
		cfg.CrossEncoder.Enabled = parseBool(v, cfg.CrossEncoder.Enabled)
	}
	if v := os.Getenv("LANTERN_CROSS_ENCODER_API_URL"); v != "" {
		cfg.CrossEncoder.APIURL = v
	}

	if v := os.Getenv("LANTERN_CLUSTER_MEMBER_ID"); v != "" {
		cfg.Cluster.MemberID = v
	}
	if v := os.Getenv("LANTERN_CLUSTER_LISTEN_ADDR"); v != "" {
		cfg.Cluster.ListenAddr = v
	}
	if v := os.Getenv("LANTERN_CLUSTER_SEED_PEERS"); v != "" {
		cfg.Cluster.SeedPeers = strings.Split(v, ",")
	}

	return cfg
}

// LoadFromEnvOrFile loads filePath if it exists, then applies every
// LANTERN_*-prefixed environment variable on top, so operators can check a
// base config into source control and override per-deployment secrets and
// addresses via the environment.
func LoadFromEnvOrFile(filePath string) (*Config, error) {
	cfg := DefaultConfig()
	if filePath != "" {
		if _, err := os.Stat(filePath); err == nil {
			fileCfg, err := LoadFromFile(filePath)
			if err != nil {
				return nil, err
			}
			cfg = fileCfg
		}
	}

	env := LoadFromEnv()
	if v := os.Getenv("LANTERN_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if os.Getenv("LANTERN_PLANNER_CRAWL_BUDGET") != "" {
		cfg.Planner.CrawlBudget = env.Planner.CrawlBudget
	}
	if os.Getenv("LANTERN_PLANNER_TOP_HOST_FRACTION") != "" {
		cfg.Planner.TopHostFraction = env.Planner.TopHostFraction
	}
	if os.Getenv("LANTERN_PLANNER_WANDER_FRACTION") != "" {
		cfg.Planner.WanderFraction = env.Planner.WanderFraction
	}
	if os.Getenv("LANTERN_PLANNER_NUM_JOB_QUEUES") != "" {
		cfg.Planner.NumJobQueues = env.Planner.NumJobQueues
	}
	if os.Getenv("LANTERN_CROSS_ENCODER_ENABLED") != "" {
		cfg.CrossEncoder.Enabled = env.CrossEncoder.Enabled
	}
	if os.Getenv("LANTERN_CROSS_ENCODER_API_URL") != "" {
		cfg.CrossEncoder.APIURL = env.CrossEncoder.APIURL
	}
	if os.Getenv("LANTERN_CLUSTER_MEMBER_ID") != "" {
		cfg.Cluster.MemberID = env.Cluster.MemberID
	}
	if os.Getenv("LANTERN_CLUSTER_LISTEN_ADDR") != "" {
		cfg.Cluster.ListenAddr = env.Cluster.ListenAddr
	}
	if os.Getenv("LANTERN_CLUSTER_SEED_PEERS") != "" {
		cfg.Cluster.SeedPeers = env.Cluster.SeedPeers
	}

	return cfg, nil
}

func parseBool(s string, defaultVal bool) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultVal
	}
}
