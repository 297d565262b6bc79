package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/fedcrawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config *Config

	// Runs is nil when run history is disabled.
	Runs fedcrawl.RunService

	HTTPClient      *http.Client
	DefaultCacheDir string
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `help:"Path to a YAML config file" type:"path"`
	DB      string `help:"Run history database path" env:"FEDCRAWL_DB"`
	NoDB    bool   `name:"no-db" help:"Do not record run history"`
	LogFile string `help:"Write logs to a size-rotated file instead of stderr" type:"path"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Crawl CrawlCmd `cmd:"" help:"Crawl the federation starting from a seed domain"`
	Runs  RunsCmd  `cmd:"" help:"List recorded crawl runs"`
}

// CrawlCmd is the "crawl" subcommand.
// Zero values mean "not set" so the config file can supply them.
type CrawlCmd struct {
	Seed         string        `arg:"" help:"Seed domain"`
	Exclude      []string      `short:"x" help:"Exclude domains ending with this suffix (repeatable)"`
	Concurrency  int           `short:"c" help:"Concurrent fetch limit (default: 10)"`
	Timeout      time.Duration `short:"t" help:"Per-request timeout (default: 10s)"`
	NoTimeout    bool          `help:"Disable the per-request timeout"`
	DiscardCache bool          `help:"Ignore cached peer lists (successful fetches still refresh the cache)"`
	Budget       time.Duration `help:"Stop dispatching after this wall-clock duration"`
	Output       string        `short:"o" help:"Directory for visited/skipped/errors logs (default: .)" type:"path"`
	CacheDir     string        `help:"Peer list cache directory" type:"path"`
	RPS          float64       `name:"rps" help:"Maximum requests per second across all workers (default: unlimited)"`
	Progress     bool          `help:"Show a progress spinner"`
	Scheme       string        `hidden:"" default:"https" enum:"http,https" help:"URL scheme for peer requests"`
}

// RunsCmd is the "runs" subcommand.
type RunsCmd struct {
	Limit int `short:"n" default:"20" help:"Number of runs to show (0 for all)"`
}
