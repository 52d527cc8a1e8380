package planner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/lanterngraph/core/pkg/wire"
)

// queueJob is one domain's URL batch as written to a job_queue file: a
// length-prefixed gob frame per job, read back by a crawl worker with
// wire.ReadFrame.
type queueJob struct {
	Domain string
	URLs   []string
}

// metadataEntry is one row of metadata.json, mirroring Job's accounting
// fields without the URL payload itself.
type metadataEntry struct {
	Domain         string `json:"domain"`
	NumHosts       int    `json:"num_hosts"`
	ScheduleBudget int    `json:"schedule_budget"`
	ScheduledURLs  int    `json:"scheduled_urls"`
	WanderBudget   int    `json:"wander_budget"`
	KnownURLs      int    `json:"known_urls"`
}

// WriteJobQueues round-robins jobs across cfg.NumJobQueues files named
// job_queue/{i}.queue under dir, and writes dir/metadata.json as an array
// of accounting rows sorted by schedule budget descending. Jobs are
// assumed already sorted that way by Plan.
func WriteJobQueues(dir string, jobs []Job, cfg Config) error {
	queueDir := filepath.Join(dir, "job_queue")
	if err := os.MkdirAll(queueDir, 0o755); err != nil {
		return fmt.Errorf("planner: mkdir %s: %w", queueDir, err)
	}

	files := make([]*os.File, cfg.NumJobQueues)
	for i := range files {
		path := filepath.Join(queueDir, fmt.Sprintf("%d.queue", i))
		f, err := os.Create(path)
		if err != nil {
			closeAll(files)
			return fmt.Errorf("planner: create %s: %w", path, err)
		}
		files[i] = f
	}
	defer closeAll(files)

	metadata := make([]metadataEntry, 0, len(jobs))
	for i, job := range jobs {
		queue := files[i%cfg.NumJobQueues]
		if err := wire.WriteFrame(queue, queueJob{Domain: job.Domain, URLs: job.URLs}); err != nil {
			return fmt.Errorf("planner: write job for %s: %w", job.Domain, err)
		}
		metadata = append(metadata, metadataEntry{
			Domain:         job.Domain,
			NumHosts:       job.NumHosts,
			ScheduleBudget: job.ScheduleBudget,
			ScheduledURLs:  job.ScheduledURLs,
			WanderBudget:   job.WanderBudget,
			KnownURLs:      job.KnownURLs,
		})
	}
	sort.SliceStable(metadata, func(i, j int) bool {
		return metadata[i].ScheduleBudget > metadata[j].ScheduleBudget
	})

	metaPath := filepath.Join(dir, "metadata.json")
	f, err := os.Create(metaPath)
	if err != nil {
		return fmt.Errorf("planner: create %s: %w", metaPath, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(metadata); err != nil {
		return fmt.Errorf("planner: encode metadata.json: %w", err)
	}
	return nil
}

func closeAll(files []*os.File) {
	for _, f := range files {
		if f != nil {
			f.Close()
		}
	}
}

// ReadJobQueue drains all jobs from a single job_queue/{i}.queue file,
// used by a crawl worker claiming its shard of the queue.
func ReadJobQueue(path string) ([]queueJob, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("planner: open %s: %w", path, err)
	}
	defer f.Close()

	var out []queueJob
	for {
		var job queueJob
		err := wire.ReadFrame(f, &job)
		if err != nil {
			break
		}
		out = append(out, job)
	}
	return out, nil
}
