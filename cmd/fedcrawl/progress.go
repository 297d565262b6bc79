package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/fwojciec/fedcrawl/crawl"
	"github.com/schollz/progressbar/v3"
)

// progressReporter renders crawl progress on stderr, either as periodic
// sample lines or as a spinner.
type progressReporter struct {
	mu  sync.Mutex
	w   io.Writer
	bar *progressbar.ProgressBar
}

func newProgressReporter(w io.Writer, spinner bool) *progressReporter {
	r := &progressReporter{w: w}
	if spinner {
		r.bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("crawling"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("domains"),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
	}
	return r
}

// Report handles one crawl event. It is called from more than one goroutine.
func (r *progressReporter) Report(e crawl.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar == nil {
		if e.Type == crawl.EventSample {
			fmt.Fprintln(r.w, crawl.FormatSnapshot(e.Snapshot))
		}
		return
	}

	switch e.Type {
	case crawl.EventVisited, crawl.EventErrored:
		_ = r.bar.Add(1)
	case crawl.EventSkipped:
		return
	}
	r.bar.Describe(describe(e))
}

// maxDescribedDomain keeps the spinner on one terminal line.
const maxDescribedDomain = 32

// describe returns the spinner text for an event.
func describe(e crawl.Event) string {
	if e.Type == crawl.EventSample {
		return fmt.Sprintf("crawling (%d in flight, %d queued)", e.Snapshot.InFlight, e.Snapshot.Queued)
	}
	return "crawling " + crawl.TruncateDomain(string(e.Domain), maxDescribedDomain)
}

// Finish clears the spinner.
func (r *progressReporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}
