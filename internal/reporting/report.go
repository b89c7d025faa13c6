// internal/reporting/report.go
package reporting

import (
	"time"

	"github.com/xkilldash9x/boost-cli/internal/orchestrator"
)

// RunReport is the flat, serializable view of one batch.
type RunReport struct {
	RunID             string             `json:"run_id"`
	StartedAt         time.Time          `json:"started_at"`
	FinishedAt        time.Time          `json:"finished_at"`
	Accounts          []string           `json:"accounts"`
	Discovered        int                `json:"discovered"`
	DiscoveryFailures []AccountFailure   `json:"discovery_failures,omitempty"`
	Outcomes          []OutcomeRecord    `json:"outcomes"`
	Tally             orchestrator.Tally `json:"tally"`
}

type AccountFailure struct {
	Account string `json:"account"`
	Error   string `json:"error"`
}

type OutcomeRecord struct {
	Item       string `json:"item"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	Liked      bool   `json:"liked"`
	LikeError  string `json:"like_error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// NewRunReport flattens a batch. A nil batch yields an empty report.
func NewRunReport(result *orchestrator.BatchResult) RunReport {
	if result == nil {
		return RunReport{}
	}

	report := RunReport{
		RunID:      result.RunID.String(),
		StartedAt:  result.StartedAt.UTC(),
		FinishedAt: result.FinishedAt.UTC(),
		Accounts:   make([]string, 0, len(result.Accounts)),
		Discovered: result.Discovered,
		Outcomes:   make([]OutcomeRecord, 0, len(result.Outcomes)),
		Tally:      result.Tally,
	}
	for _, a := range result.Accounts {
		report.Accounts = append(report.Accounts, a.URL)
	}
	for _, f := range result.DiscoveryFailures {
		report.DiscoveryFailures = append(report.DiscoveryFailures, AccountFailure{
			Account: f.Account.URL,
			Error:   errorText(f.Err),
		})
	}
	for _, o := range result.Outcomes {
		report.Outcomes = append(report.Outcomes, OutcomeRecord{
			Item:       o.Item.String(),
			Status:     string(o.Status),
			Reason:     o.Reason(),
			Liked:      o.Secondary.Succeeded,
			LikeError:  errorText(o.Secondary.Err),
			DurationMS: o.Duration.Milliseconds(),
		})
	}
	return report
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
