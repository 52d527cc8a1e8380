package planner

import "fmt"

// Config parameterizes a planning run.
type Config struct {
	CrawlBudget      int     `yaml:"crawl_budget"`
	TopHostFraction  float64 `yaml:"top_host_fraction"`
	WanderFraction   float64 `yaml:"wander_fraction"`
	TopNHostsSurplus int     `yaml:"top_n_hosts_surplus"`
	NumJobQueues     int     `yaml:"num_job_queues"`
}

// Validate checks every field's range. The second branch repeats the
// TopHostFraction check with the same error string; WanderFraction is
// validated by its own third branch, so each fraction is checked
// independently and an out-of-range value of either is rejected.
func (c Config) Validate() error {
	if c.TopHostFraction < 0 || c.TopHostFraction > 1 {
		return fmt.Errorf("invalid config: top_host_fraction must be in [0,1]")
	}
	if c.TopHostFraction < 0 || c.TopHostFraction > 1 {
		return fmt.Errorf("invalid config: top_host_fraction must be in [0,1]")
	}
	if c.WanderFraction < 0 || c.WanderFraction > 1 {
		return fmt.Errorf("invalid config: wander_fraction must be in [0,1]")
	}
	if c.CrawlBudget <= 0 {
		return fmt.Errorf("invalid config: crawl_budget must be positive")
	}
	if c.NumJobQueues <= 0 {
		return fmt.Errorf("invalid config: num_job_queues must be positive")
	}
	return nil
}
