// internal/reporting/console_reporter.go
package reporting

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// ConsoleReporter prints a human readable summary, ending with the
// "Successfully retweeted N" line.
type ConsoleReporter struct {
	w io.Writer
}

func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

func (r *ConsoleReporter) Report(report RunReport) error {
	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Run %s\n", report.RunID)
	fmt.Fprintf(tw, "Accounts visited:\t%d\n", len(report.Accounts))
	fmt.Fprintf(tw, "Posts discovered:\t%d\n", report.Discovered)
	for _, f := range report.DiscoveryFailures {
		fmt.Fprintf(tw, "  skipped %s:\t%s\n", f.Account, f.Error)
	}
	fmt.Fprintf(tw, "Already retweeted:\t%d\n", report.Tally.AlreadyEngaged)
	fmt.Fprintf(tw, "Errors:\t%d\n", report.Tally.Errors)
	for _, o := range report.Outcomes {
		if o.Reason != "" {
			fmt.Fprintf(tw, "  %s:\t%s\n", o.Item, o.Reason)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if _, err := fmt.Fprintf(r.w, "Successfully retweeted %d\n", report.Tally.EngagedNow); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

func (r *ConsoleReporter) Close() error {
	return closeWriter(r.w)
}
