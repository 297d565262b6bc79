package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/fedcrawl"
)

// Output log file names.
const (
	VisitedLog = "visited.txt"
	SkippedLog = "skipped.txt"
	ErrorsLog  = "errors.txt"
)

// Ensure LogSink implements fedcrawl.ResultSink at compile time.
var _ fedcrawl.ResultSink = (*LogSink)(nil)

// LogSink appends crawl outcomes to three line-oriented log files.
// Files are opened in append mode so earlier runs are preserved.
type LogSink struct {
	mu      sync.Mutex
	visited *os.File
	skipped *os.File
	errored *os.File
}

// OpenLogSink creates dir if needed and opens the three log files in it.
// An error here means the output location is unusable.
func OpenLogSink(dir string) (*LogSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	s := &LogSink{}
	var err error
	if s.visited, err = openLog(dir, VisitedLog); err != nil {
		return nil, err
	}
	if s.skipped, err = openLog(dir, SkippedLog); err != nil {
		s.visited.Close()
		return nil, err
	}
	if s.errored, err = openLog(dir, ErrorsLog); err != nil {
		s.visited.Close()
		s.skipped.Close()
		return nil, err
	}
	return s, nil
}

func openLog(dir, name string) (*os.File, error) {
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return f, nil
}

func (s *LogSink) Visited(ctx context.Context, domain fedcrawl.Domain) error {
	return s.writeLine(s.visited, string(domain))
}

func (s *LogSink) Skipped(ctx context.Context, domain fedcrawl.Domain) error {
	return s.writeLine(s.skipped, string(domain))
}

func (s *LogSink) Errored(ctx context.Context, domain fedcrawl.Domain, err *fedcrawl.FetchError) error {
	return s.writeLine(s.errored, string(domain)+" "+err.Label())
}

// writeLine issues a single write per line so appends never interleave.
func (s *LogSink) writeLine(f *os.File, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := f.WriteString(line + "\n")
	return err
}

// Close closes all log files.
func (s *LogSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.visited.Close(), s.skipped.Close(), s.errored.Close())
}
