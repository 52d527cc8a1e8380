// Package main provides the lantern CLI entry point: build and inspect the
// webgraph, compute centrality, plan crawls, and answer ranked queries.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lanterngraph/core/pkg/centrality/approximate"
	"github.com/lanterngraph/core/pkg/centrality/derived"
	"github.com/lanterngraph/core/pkg/centrality/harmonic"
	"github.com/lanterngraph/core/pkg/cluster"
	"github.com/lanterngraph/core/pkg/config"
	"github.com/lanterngraph/core/pkg/edgestore"
	"github.com/lanterngraph/core/pkg/ids"
	"github.com/lanterngraph/core/pkg/kvstore"
	"github.com/lanterngraph/core/pkg/planner"
	"github.com/lanterngraph/core/pkg/telemetry"
	"github.com/lanterngraph/core/pkg/webgraph"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "lantern",
		Short: "lantern - webgraph-centric ranking substrate for a distributed search engine",
		Long: `lantern builds and queries the webgraph backing a distributed search
engine's ranking pipeline: edge storage, centrality, inbound-similarity
scoring, crawl planning, and a sharded query fan-out.`,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("lantern v%s (%s)\n", version, commit)
		},
	})

	rootCmd.AddCommand(newIndexCmd(&configPath))
	rootCmd.AddCommand(newWebgraphCmd(&configPath))
	rootCmd.AddCommand(newCentralityCmd(&configPath))
	rootCmd.AddCommand(newPlannerCmd(&configPath))
	rootCmd.AddCommand(newSearcherCmd(&configPath))

	if tel, err := telemetry.New(); err == nil {
		planner.SurplusIterationHook = func() { tel.RecordSurplusIteration(context.Background()) }
		cluster.SyncErrorHook = func(peerAddr string) { tel.RecordGossipSyncError(context.Background(), peerAddr) }
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv(), nil
	}
	return config.LoadFromEnvOrFile(path)
}

// newIndexCmd builds webgraph segments from a newline-delimited edge list
// (from-URL\tto-URL\tanchor-text) and appends them to a data directory laid
// out the way webgraph.Open expects: shard-<id>/segment-<n>.
func newIndexCmd(configPath *string) *cobra.Command {
	var input string
	var numShards uint64

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build webgraph segments from a tab-separated edge list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			f, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("open edge list: %w", err)
			}
			defer f.Close()

			writers := make(map[uint64]*edgestore.Writer)
			scanner := bufio.NewScanner(f)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			n := 0
			for scanner.Scan() {
				fields := strings.Split(scanner.Text(), "\t")
				if len(fields) < 2 {
					continue
				}
				from := ids.NewPage(fields[0])
				to := ids.NewPage(fields[1])
				label := ""
				if len(fields) > 2 {
					label = fields[2]
				}
				shardID := webgraph.ShardOf(from.ID(), numShards)
				w, ok := writers[shardID]
				if !ok {
					w = edgestore.NewWriter()
					writers[shardID] = w
				}
				w.Insert(edgestore.Insertion{From: from, To: to, Label: label})
				n++
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("scan edge list: %w", err)
			}

			for shardID, w := range writers {
				shardDir := filepath.Join(cfg.DataDir, "webgraph", fmt.Sprintf("shard-%d", shardID))
				segIdx := 0
				for {
					if _, err := os.Stat(filepath.Join(shardDir, fmt.Sprintf("segment-%d", segIdx))); err != nil {
						break
					}
					segIdx++
				}
				segDir := filepath.Join(shardDir, fmt.Sprintf("segment-%d", segIdx))
				if _, err := w.Finalize(segDir); err != nil {
					return fmt.Errorf("finalize shard %d: %w", shardID, err)
				}
			}

			log.Printf("index: wrote %s edges across %d shards", humanize.Comma(int64(n)), len(writers))
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "tab-separated edge list: from\\tto\\tlabel")
	cmd.Flags().Uint64Var(&numShards, "num-shards", 16, "number of webgraph shards")
	cmd.MarkFlagRequired("input")
	return cmd
}

func newWebgraphCmd(configPath *string) *cobra.Command {
	webgraphCmd := &cobra.Command{Use: "webgraph", Short: "Build and inspect the webgraph"}

	buildCmd := newIndexCmd(configPath)
	buildCmd.Use = "build"
	buildCmd.Short = "Build webgraph segments from a tab-separated edge list"

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print per-shard segment counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			wg, err := webgraph.Open(filepath.Join(cfg.DataDir, "webgraph"))
			if err != nil {
				return err
			}
			defer wg.Close()
			for _, s := range wg.Shards {
				fmt.Printf("shard %d: %d segments\n", s.ID, len(s.Segments))
			}
			return nil
		},
	}

	webgraphCmd.AddCommand(buildCmd, statsCmd)
	return webgraphCmd
}

func newCentralityCmd(configPath *string) *cobra.Command {
	centralityCmd := &cobra.Command{Use: "centrality", Short: "Compute centrality scores over the webgraph"}

	harmonicCmd := &cobra.Command{
		Use:   "harmonic",
		Short: "Run exact harmonic centrality over every shard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			wg, err := webgraph.Open(filepath.Join(cfg.DataDir, "webgraph"))
			if err != nil {
				return err
			}
			defer wg.Close()

			store, err := kvstore.Open(kvstore.Options{DataDir: filepath.Join(cfg.DataDir, "centrality", "harmonic")})
			if err != nil {
				return err
			}
			defer store.Close()

			for _, shard := range wg.Shards {
				g, err := harmonic.NewShardGraph(shard)
				if err != nil {
					return fmt.Errorf("shard %d: %w", shard.ID, err)
				}
				engine := harmonic.New(g, log.Default())
				snap := engine.Run()

				batch := store.NewBatch()
				for node, score := range snap.Scores {
					key := []byte(strconv.FormatUint(uint64(node), 10))
					batch.Put(key, []byte(strconv.FormatFloat(score, 'g', -1, 64)))
				}
				if err := batch.Commit(); err != nil {
					return err
				}
				log.Printf("centrality harmonic: shard %d converged in %d rounds, %d nodes scored", shard.ID, snap.Rounds, len(snap.Scores))
			}
			return nil
		},
	}

	var approxOutput string
	approxCmd := &cobra.Command{
		Use:   "approximate",
		Short: "Run sampling-based harmonic centrality approximation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			wg, err := webgraph.Open(filepath.Join(cfg.DataDir, "webgraph"))
			if err != nil {
				return err
			}
			defer wg.Close()

			acfg := approximate.DefaultConfig()
			var out *os.File = os.Stdout
			if approxOutput != "" {
				out, err = os.Create(approxOutput)
				if err != nil {
					return err
				}
				defer out.Close()
			}

			for _, shard := range wg.Shards {
				centralities, err := approximate.Run(shard, acfg)
				if err != nil {
					return fmt.Errorf("shard %d: %w", shard.ID, err)
				}
				if err := approximate.WriteTopCSV(out, centralities, 1000, func(n ids.NodeID) string {
					return strconv.FormatUint(uint64(n), 10)
				}); err != nil {
					return err
				}
			}
			return nil
		},
	}
	approxCmd.Flags().StringVar(&approxOutput, "output", "", "CSV output path (default stdout)")

	derivedCmd := &cobra.Command{
		Use:   "derived",
		Short: "Derive page-level centrality from host-level harmonic scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			wg, err := webgraph.Open(filepath.Join(cfg.DataDir, "webgraph"))
			if err != nil {
				return err
			}
			defer wg.Close()

			hostStore, err := kvstore.Open(kvstore.Options{DataDir: filepath.Join(cfg.DataDir, "centrality", "harmonic"), ReadOnly: true})
			if err != nil {
				return err
			}
			defer hostStore.Close()

			hostHarmonic, err := loadHostHarmonic(hostStore)
			if err != nil {
				return err
			}

			outStore, err := kvstore.Open(kvstore.Options{DataDir: filepath.Join(cfg.DataDir, "centrality", "derived")})
			if err != nil {
				return err
			}
			defer outStore.Close()

			for _, shard := range wg.Shards {
				if err := derived.Compute(shard, hostHarmonic, outStore); err != nil {
					return fmt.Errorf("shard %d: %w", shard.ID, err)
				}
			}
			return nil
		},
	}

	centralityCmd.AddCommand(harmonicCmd, approxCmd, derivedCmd)
	return centralityCmd
}

func loadHostHarmonic(store *kvstore.Store) (derived.MapHostHarmonic, error) {
	out := make(derived.MapHostHarmonic)
	err := store.ScanPrefix(nil, func(key, value []byte) error {
		id, err := strconv.ParseUint(string(key), 10, 64)
		if err != nil {
			return nil // skip non-numeric keys rather than fail a whole scan
		}
		score, err := strconv.ParseFloat(string(value), 64)
		if err != nil {
			return nil
		}
		out[ids.NodeID(id)] = score
		return nil
	})
	return out, err
}

func newPlannerCmd(configPath *string) *cobra.Command {
	var hostsPath string

	cmd := &cobra.Command{
		Use:   "planner",
		Short: "Plan the next crawl budget allocation and emit job queues",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			hosts, pagesByHost, err := loadHostsFromCSV(hostsPath)
			if err != nil {
				return err
			}

			jobs, err := planner.Plan(hosts, pagesByHost, cfg.Planner)
			if err != nil {
				return err
			}

			jobQueueDir := filepath.Join(cfg.DataDir, "planner")
			if err := os.MkdirAll(jobQueueDir, 0o755); err != nil {
				return err
			}
			if err := planner.WriteJobQueues(jobQueueDir, jobs, cfg.Planner); err != nil {
				return err
			}

			log.Printf("planner: %d domains scheduled, %s total scheduled URLs", len(jobs), humanize.Comma(int64(planner.TotalScheduled(jobs))))
			return nil
		},
	}
	cmd.Flags().StringVar(&hostsPath, "hosts", "", "CSV of host_id,domain,centrality,known_pages")
	cmd.MarkFlagRequired("hosts")
	return cmd
}

// loadHostsFromCSV reads a minimal host table for the planner command. Page
// lists are not part of this format; pagesByHost always returns a host's
// known_pages count worth of synthetic URLs so the planner's clamping logic
// still exercises real data volumes end to end.
func loadHostsFromCSV(path string) ([]planner.HostInfo, planner.PagesByHost, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open hosts csv: %w", err)
	}
	defer f.Close()

	var hosts []planner.HostInfo
	pages := make(map[uint64][]planner.PageInfo)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ",")
		if len(fields) != 4 {
			continue
		}
		id, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			continue
		}
		centrality, _ := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		knownPages, _ := strconv.Atoi(strings.TrimSpace(fields[3]))
		domain := strings.TrimSpace(fields[1])

		hosts = append(hosts, planner.HostInfo{ID: id, Domain: domain, Centrality: centrality, KnownPages: knownPages})

		hostPages := make([]planner.PageInfo, knownPages)
		for i := range hostPages {
			hostPages[i] = planner.PageInfo{URL: fmt.Sprintf("https://%s/page-%d", domain, i), Centrality: centrality}
		}
		pages[id] = hostPages
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}

	return hosts, func(hostID uint64) []planner.PageInfo { return pages[hostID] }, nil
}

func newSearcherCmd(configPath *string) *cobra.Command {
	searcherCmd := &cobra.Command{Use: "searcher", Short: "Run the distributed query fan-out coordinator"}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve queries, gossiping membership with seed peers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			reg := cluster.NewRegistry()
			if cfg.Cluster.MemberID != "" {
				reg.Register(cluster.Member{
					ID:      cfg.Cluster.MemberID,
					Addr:    cfg.Cluster.ListenAddr,
					Service: cluster.Service{Kind: cluster.ServiceCoordinator},
				})
			}

			gossipLog := cluster.NewGossipLog()
			var peers []*cluster.Peer
			for _, addr := range cfg.Cluster.SeedPeers {
				peers = append(peers, &cluster.Peer{Addr: addr})
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			gossipLog.StartSweep(ctx, reg, peers, cfg.Cluster.GossipPeriod)
			log.Printf("searcher: listening on %s, gossiping with %d seed peers", cfg.Cluster.ListenAddr, len(peers))

			<-ctx.Done()
			log.Printf("searcher: shutting down")
			return nil
		},
	}

	searcherCmd.AddCommand(serveCmd)
	return searcherCmd
}
