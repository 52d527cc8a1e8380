package planner

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func threeEqualHosts() []HostInfo {
	return []HostInfo{
		{ID: 1, Domain: "a.example", Centrality: 1.0, KnownPages: 1000},
		{ID: 2, Domain: "b.example", Centrality: 1.0, KnownPages: 1000},
		{ID: 3, Domain: "c.example", Centrality: 1.0, KnownPages: 1000},
	}
}

func pagesForHost(hostID uint64) []PageInfo {
	pages := make([]PageInfo, 1000)
	for i := range pages {
		pages[i] = PageInfo{URL: "https://host.example/p"}
	}
	return pages
}

func TestPlanSurplusBounded(t *testing.T) {
	cfg := Config{
		CrawlBudget:      1000,
		TopHostFraction:  0.5,
		WanderFraction:   0.2,
		TopNHostsSurplus: 3,
		NumJobQueues:     2,
	}
	jobs, err := Plan(threeEqualHosts(), pagesForHost, cfg)
	require.NoError(t, err)

	total := 0
	for _, j := range jobs {
		total += j.ScheduleBudget + j.WanderBudget
	}
	require.InDelta(t, cfg.CrawlBudget, total, 3)
}

func TestPlanScheduledURLsNeverExceedCrawlBudget(t *testing.T) {
	cfg := Config{
		CrawlBudget:      1000,
		TopHostFraction:  0.5,
		WanderFraction:   0.2,
		TopNHostsSurplus: 3,
		NumJobQueues:     2,
	}
	jobs, err := Plan(threeEqualHosts(), pagesForHost, cfg)
	require.NoError(t, err)

	sum := 0
	for _, j := range jobs {
		sum += j.ScheduledURLs
	}
	require.LessOrEqual(t, sum, cfg.CrawlBudget)
}

func TestPlanPerHostScheduledURLsWithinKnownPages(t *testing.T) {
	cfg := Config{
		CrawlBudget:      1000,
		TopHostFraction:  1.0,
		WanderFraction:   0.2,
		TopNHostsSurplus: 3,
		NumJobQueues:     2,
	}
	hosts := []HostInfo{{ID: 1, Domain: "a.example", Centrality: 1.0, KnownPages: 5}}
	pages := func(uint64) []PageInfo {
		return []PageInfo{{URL: "https://a.example/1"}, {URL: "https://a.example/2"}}
	}
	jobs, err := Plan(hosts, pages, cfg)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.LessOrEqual(t, jobs[0].ScheduledURLs, 2)
}

func TestPlanRejectsInvalidConfig(t *testing.T) {
	cfg := Config{CrawlBudget: 0, TopHostFraction: 0.5, WanderFraction: 0.2, TopNHostsSurplus: 1, NumJobQueues: 1}
	_, err := Plan(threeEqualHosts(), pagesForHost, cfg)
	require.Error(t, err)
}

func TestValidateConfigDuplicateCheckStillRejectsOutOfRangeWanderFraction(t *testing.T) {
	// The validator's second branch duplicates the top_host_fraction check,
	// but wander_fraction has its own check after it, so an out-of-range
	// wander_fraction alone is still rejected.
	cfg := Config{CrawlBudget: 10, TopHostFraction: 0.5, WanderFraction: 2.0, TopNHostsSurplus: 1, NumJobQueues: 1}
	require.Error(t, cfg.Validate())
}

func TestValidateConfigRejectsOutOfRangeTopHostFraction(t *testing.T) {
	cfg := Config{CrawlBudget: 10, TopHostFraction: 1.5, WanderFraction: 0.2, TopNHostsSurplus: 1, NumJobQueues: 1}
	require.Error(t, cfg.Validate())
}

func TestWriteJobQueuesRoundTrips(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		CrawlBudget:      1000,
		TopHostFraction:  1.0,
		WanderFraction:   0.2,
		TopNHostsSurplus: 3,
		NumJobQueues:     2,
	}
	jobs, err := Plan(threeEqualHosts(), pagesForHost, cfg)
	require.NoError(t, err)
	require.NoError(t, WriteJobQueues(dir, jobs, cfg))

	_, err = os.Stat(dir + "/metadata.json")
	require.NoError(t, err)

	var allJobs []queueJob
	for i := 0; i < cfg.NumJobQueues; i++ {
		path := dir + "/job_queue/0.queue"
		if i == 1 {
			path = dir + "/job_queue/1.queue"
		}
		read, err := ReadJobQueue(path)
		require.NoError(t, err)
		allJobs = append(allJobs, read...)
	}
	require.Len(t, allJobs, len(jobs))
}
