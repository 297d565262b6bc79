package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/fedcrawl"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	if deps.Runs == nil {
		err := fedcrawl.Errorf(fedcrawl.EINVALID, "run history is disabled")
		fmt.Fprintf(deps.Stderr, "error: %s\n", fedcrawl.ErrorMessage(err))
		return err
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", fedcrawl.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded. Use 'fedcrawl crawl' to start one.")
		return nil
	}

	for _, r := range runs {
		reason := r.Reason
		if !r.Finished() {
			reason = "running"
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  visited=%d skipped=%d errored=%d pending=%d  %s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Seed,
			r.Visited, r.Skipped, r.Errored, r.Pending, reason)
	}

	return nil
}
