package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fwojciec/fedcrawl"
	"github.com/fwojciec/fedcrawl/crawl"
	"github.com/fwojciec/fedcrawl/fs"
	fedhttp "github.com/fwojciec/fedcrawl/http"
	fedslog "github.com/fwojciec/fedcrawl/slog"
)

// crawlSettings is the effective configuration after merging flags,
// the config file, and defaults.
type crawlSettings struct {
	Exclusions  []string
	Concurrency int
	Timeout     time.Duration // zero means none
	Budget      time.Duration
	RPS         float64
	CacheDir    string
	Output      string
}

// settings merges flags over the config file over defaults.
// Exclusions from both sources are combined.
func (c *CrawlCmd) settings(cfg *Config, defaultCacheDir string) crawlSettings {
	s := crawlSettings{
		Exclusions:  append(append([]string{}, cfg.Exclude...), c.Exclude...),
		Concurrency: crawl.DefaultConcurrency,
		Timeout:     fedhttp.DefaultFetchTimeout,
		Budget:      cfg.Budget,
		RPS:         cfg.RPS,
		CacheDir:    firstNonEmpty(c.CacheDir, cfg.CacheDir, defaultCacheDir),
		Output:      firstNonEmpty(c.Output, cfg.Output, "."),
	}

	if c.Concurrency > 0 {
		s.Concurrency = c.Concurrency
	} else if cfg.Concurrency > 0 {
		s.Concurrency = cfg.Concurrency
	}

	switch {
	case c.NoTimeout:
		s.Timeout = 0
	case c.Timeout > 0:
		s.Timeout = c.Timeout
	case cfg.NoTimeout:
		s.Timeout = 0
	case cfg.Timeout > 0:
		s.Timeout = cfg.Timeout
	}

	if c.Budget > 0 {
		s.Budget = c.Budget
	}
	if c.RPS > 0 {
		s.RPS = c.RPS
	}
	return s
}

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	seed, err := fedcrawl.ParseDomain(c.Seed)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", fedcrawl.ErrorMessage(err))
		return err
	}
	s := c.settings(deps.Config, deps.DefaultCacheDir)
	logger := deps.Logger

	// Pre-flight: unusable output or cache locations are fatal before any work.
	logSink, err := fs.OpenLogSink(s.Output)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: output directory %q is not writable\n", s.Output)
		return err
	}
	defer logSink.Close()

	cache := fs.NewPeerCache(s.CacheDir)
	if err := cache.Check(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: cache directory %q is not writable\n", cache.Dir())
		return err
	}

	networkOpts := []fedhttp.Option{
		fedhttp.WithTimeout(s.Timeout),
		fedhttp.WithScheme(c.Scheme),
	}
	if deps.HTTPClient != nil {
		networkOpts = append(networkOpts, fedhttp.WithClient(deps.HTTPClient))
	}
	if s.RPS > 0 {
		networkOpts = append(networkOpts, fedhttp.WithLimiter(crawl.NewLimiter(s.RPS, 1)))
	}

	var storeFailures atomic.Int64
	fetcher := &crawl.CachingFetcher{
		Cache:   fedslog.NewLoggingPeerCache(cache, logger),
		Network: fedslog.NewLoggingPeerFetcher(fedhttp.NewPeerFetcher(networkOpts...), logger),
		Discard: c.DiscardCache,
		OnStoreError: func(_ fedcrawl.Domain, _ error) {
			storeFailures.Add(1)
		},
	}

	sinks := fedcrawl.MultiSink{logSink, fedslog.NewLoggingSink(logger)}

	var run *fedcrawl.Run
	if deps.Runs != nil {
		run = &fedcrawl.Run{Seed: seed}
		if err := deps.Runs.CreateRun(deps.Ctx, run); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", fedcrawl.ErrorMessage(err))
			return err
		}
		sinks = append(sinks, &fedcrawl.RunSink{Runs: deps.Runs, RunID: run.ID})
	}

	reporter := newProgressReporter(deps.Stderr, c.Progress)
	scheduler := &crawl.Scheduler{
		Fetcher:     fetcher,
		Exclusions:  fedcrawl.NewExclusionFilter(s.Exclusions...),
		Sink:        sinks,
		Concurrency: s.Concurrency,
		Budget:      s.Budget,
		Progress:    reporter.Report,
	}

	logger.Info("crawl started",
		"seed", seed,
		"concurrency", s.Concurrency,
		"timeout", s.Timeout,
		"budget", s.Budget,
		"cache", s.CacheDir,
		"output", s.Output,
	)

	result, runErr := scheduler.Run(deps.Ctx, seed)
	reporter.Finish()
	if result == nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", fedcrawl.ErrorMessage(runErr))
		return runErr
	}

	logger.Info("crawl finished",
		"seed", seed,
		"reason", result.Reason,
		"visited", result.Visited,
		"skipped", result.Skipped,
		"errored", result.Errored,
		"pending", result.Pending,
		"duration", result.Elapsed,
	)
	for _, d := range result.Unfinished {
		logger.Debug("domain pending", "domain", d)
	}

	if run != nil {
		run.Visited = result.Visited
		run.Skipped = result.Skipped
		run.Errored = result.Errored
		run.Pending = result.Pending
		run.Reason = result.Reason.String()
		// The run context may be canceled by an interrupt; history is still written.
		if err := deps.Runs.FinishRun(context.WithoutCancel(deps.Ctx), run); err != nil {
			logger.Warn("failed to record run", "run", run.ID, "err", err)
		}
	}

	writeSummary(deps.Stdout, result)
	if n := storeFailures.Load(); n > 0 {
		fmt.Fprintf(deps.Stderr, "warning: %d peer lists could not be cached\n", n)
	}
	if runErr != nil {
		fmt.Fprintf(deps.Stderr, "error: some outcomes were not recorded: %v\n", runErr)
		return runErr
	}
	return nil
}

// writeSummary prints final counts and a breakdown of error kinds.
func writeSummary(w io.Writer, r *crawl.Result) {
	fmt.Fprintf(w, "Crawl from %s %s in %s\n", r.Seed, r.Reason, crawl.FormatElapsed(r.Elapsed))
	fmt.Fprintf(w, "  visited: %d\n", r.Visited)
	fmt.Fprintf(w, "  skipped: %d\n", r.Skipped)
	fmt.Fprintf(w, "  errored: %d\n", r.Errored)
	fmt.Fprintf(w, "  pending: %d\n", r.Pending)

	if len(r.Errors) == 0 {
		return
	}
	kinds := make(map[string]int)
	for _, rec := range r.Errors {
		kinds[rec.Err.Label()]++
	}
	labels := make([]string, 0, len(kinds))
	for label := range kinds {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	parts := make([]string, len(labels))
	for i, label := range labels {
		parts[i] = fmt.Sprintf("%s=%d", label, kinds[label])
	}
	fmt.Fprintf(w, "  errors:  %s\n", strings.Join(parts, " "))
}
