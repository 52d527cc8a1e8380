// Package planner implements budget-proportional crawl planning with
// surplus redistribution and a wander budget, emitting per-domain jobs
// into round-robined, file-backed queues.
package planner

import (
	"math"
	"sort"
)

// HostInfo is one candidate host as seen by the planner: its registrable
// domain and known page count, used for grouping and budget clamping.
type HostInfo struct {
	ID         uint64
	Domain     string
	Centrality float64
	KnownPages int
}

// PageInfo is one known page under a host, with its derived centrality.
type PageInfo struct {
	URL        string
	Centrality float64
}

// Job is one domain's crawl assignment, emitted after the wander split.
// Field names match the metadata.json schema written by WriteJobQueues.
type Job struct {
	Domain         string
	NumHosts       int
	ScheduleBudget int
	ScheduledURLs  int
	WanderBudget   int
	KnownURLs      int
	URLs           []string
}

// PagesByHost resolves a host's known pages, sorted by centrality
// descending, the order Plan expects them in.
type PagesByHost func(hostID uint64) []PageInfo

// Plan runs host selection, proportional budgeting, surplus
// redistribution and the wander split, and returns the resulting
// per-domain jobs, sorted by schedule budget descending (the order
// metadata.json is written in). Writing the jobs into queues is done
// separately by WriteJobQueues.
func Plan(hosts []HostInfo, pagesByHost PagesByHost, cfg Config) ([]Job, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	topN := int(math.Round(cfg.TopHostFraction * float64(len(hosts))))
	sorted := make([]HostInfo, len(hosts))
	copy(sorted, hosts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Centrality > sorted[j].Centrality })
	if topN < len(sorted) {
		sorted = sorted[:topN]
	}

	totalCentrality := 0.0
	for _, h := range sorted {
		totalCentrality += h.Centrality
	}

	budgets := make(map[uint64]int, len(sorted))
	if totalCentrality > 0 {
		for _, h := range sorted {
			b := int(math.Round(float64(cfg.CrawlBudget) * h.Centrality / totalCentrality))
			if b > h.KnownPages {
				b = h.KnownPages
			}
			budgets[h.ID] = b
		}
	}

	redistributeSurplus(sorted, budgets, cfg)

	domains := groupByDomain(sorted)
	var jobs []Job
	for domain, domainHosts := range domains {
		job := Job{Domain: domain, NumHosts: len(domainHosts)}
		for _, h := range domainHosts {
			budget := budgets[h.ID]
			if budget <= 0 {
				continue
			}
			pages := pagesByHost(h.ID)
			targetScheduled := int(math.Round(float64(budget) * (1 - cfg.WanderFraction)))
			actualScheduled := targetScheduled
			if actualScheduled > len(pages) {
				actualScheduled = len(pages)
			}
			wanderN := int(math.Round(float64(budget) * cfg.WanderFraction))

			for i := 0; i < actualScheduled; i++ {
				job.URLs = append(job.URLs, pages[i].URL)
			}
			job.ScheduleBudget += targetScheduled
			job.ScheduledURLs += actualScheduled
			job.WanderBudget += wanderN
			job.KnownURLs += len(pages)
		}
		if len(job.URLs) == 0 {
			continue // empty-domain jobs are dropped
		}
		jobs = append(jobs, job)
	}

	sort.SliceStable(jobs, func(i, j int) bool { return jobs[i].ScheduleBudget > jobs[j].ScheduleBudget })
	return jobs, nil
}

// SurplusIterationHook, if non-nil, is called once per pass of
// redistributeSurplus's loop. cmd/lantern wires it to a telemetry counter;
// Plan itself takes no telemetry dependency so it stays trivially testable.
var SurplusIterationHook func()

// redistributeSurplus implements step 3: distribute crawl_budget minus the
// sum of current budgets across the top TopNHostsSurplus hosts,
// proportional to centrality, capped by remaining pages and scaled by
// 1/(1-wander_fraction). Terminates within 100 iterations or once a full
// pass changes no host's budget.
func redistributeSurplus(sorted []HostInfo, budgets map[uint64]int, cfg Config) {
	top := sorted
	if cfg.TopNHostsSurplus < len(top) {
		top = top[:cfg.TopNHostsSurplus]
	}
	topCentrality := 0.0
	for _, h := range top {
		topCentrality += h.Centrality
	}
	if topCentrality <= 0 {
		return
	}

	scale := 1.0
	if cfg.WanderFraction < 1 {
		scale = 1.0 / (1 - cfg.WanderFraction)
	}

	for iter := 0; iter < 100; iter++ {
		if SurplusIterationHook != nil {
			SurplusIterationHook()
		}
		sum := 0
		for _, h := range sorted {
			sum += budgets[h.ID]
		}
		surplus := cfg.CrawlBudget - sum
		if surplus <= 0 {
			return
		}

		changed := false
		for _, h := range top {
			share := int(math.Round(float64(surplus) * h.Centrality / topCentrality * scale))
			remaining := h.KnownPages - budgets[h.ID]
			if share > remaining {
				share = remaining
			}
			if share > 0 {
				budgets[h.ID] += share
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

func groupByDomain(hosts []HostInfo) map[string][]HostInfo {
	out := make(map[string][]HostInfo)
	for _, h := range hosts {
		out[h.Domain] = append(out[h.Domain], h)
	}
	return out
}

// TotalScheduled sums ScheduledURLs across jobs, a convenience for the
// "Σ scheduled_urls ≤ crawl_budget" testable property.
func TotalScheduled(jobs []Job) int {
	total := 0
	for _, j := range jobs {
		total += j.ScheduledURLs
	}
	return total
}

