package crawl

import (
	"fmt"
	"time"
)

// TruncateDomain shortens a domain for display, keeping the end which is
// more informative.
func TruncateDomain(domain string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		// Too short for "..." prefix
		return domain[:min(len(domain), maxLen)]
	}
	if len(domain) <= maxLen {
		return domain
	}
	return "..." + domain[len(domain)-maxLen+3:]
}

// FormatSnapshot renders a one-line progress report.
func FormatSnapshot(s Snapshot) string {
	return fmt.Sprintf("%s: %d visited, %d skipped, %d errored, %d in flight, %d queued (%s)",
		s.Phase, s.Visited, s.Skipped, s.Errored, s.InFlight, s.Queued, FormatElapsed(s.Elapsed))
}

// FormatElapsed renders a duration rounded for humans.
func FormatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(100 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}
