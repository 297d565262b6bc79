package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/alecthomas/kong"
	"github.com/fwojciec/fedcrawl/sqlite"
)

// AppName names the XDG directories used for defaults.
const AppName = "fedcrawl"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	m := NewMain()

	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Default paths. Set before calling Run(); flags and the config file
	// take precedence.
	ConfigPath string
	DBPath     string
	CacheDir   string

	// HTTPClient, if set, is used for all peer fetches.
	HTTPClient *http.Client

	// SQLite database opened for the current command.
	DB *sqlite.DB

	logFile io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		ConfigPath: filepath.Join(xdg.ConfigHome, AppName, "config.yaml"),
		DBPath:     filepath.Join(xdg.DataHome, AppName, "fedcrawl.db"),
		CacheDir:   filepath.Join(xdg.CacheHome, AppName),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var err error
	if m.DB != nil {
		err = m.DB.Close()
		m.DB = nil
	}
	if m.logFile != nil {
		if cerr := m.logFile.Close(); err == nil {
			err = cerr
		}
		m.logFile = nil
	}
	return err
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:             ctx,
		Stdout:          stdout,
		Stderr:          stderr,
		HTTPClient:      m.HTTPClient,
		DefaultCacheDir: m.CacheDir,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("fedcrawl"),
		kong.Description("Discover the servers of a federated network by crawling peer lists"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'fedcrawl --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Load the config file. A missing default file is fine; a missing
	// explicit one is not.
	configPath, explicit := m.ConfigPath, false
	if cli.Config != "" {
		configPath, explicit = cli.Config, true
	}
	cfg, err := LoadConfigFile(configPath)
	switch {
	case err == nil:
	case errors.Is(err, ErrConfigNotFound) && !explicit:
		cfg = &Config{}
	default:
		return fmt.Errorf("failed to load config %q: %w", configPath, err)
	}
	deps.Config = cfg

	defer m.Close()

	logger, closer := newLogger(firstNonEmpty(cli.LogFile, cfg.LogFile), cli.Verbose, stderr)
	m.logFile = closer
	deps.Logger = logger

	if !cli.NoDB {
		dbPath := firstNonEmpty(cli.DB, cfg.DB, m.DBPath)
		if dbPath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		m.DB = sqlite.NewDB(dbPath)
		if err := m.DB.Open(); err != nil {
			m.DB = nil
			fmt.Fprintf(stderr, "Hint: Set FEDCRAWL_DB or pass --no-db to run without history\n")
			return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
		}
		deps.Runs = sqlite.NewRunService(m.DB)
	}

	return kongCtx.Run(deps)
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
