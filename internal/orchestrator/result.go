// File: internal/orchestrator/result.go

package orchestrator

import (
	"time"

	"github.com/google/uuid"

	"github.com/xkilldash9x/boost-cli/internal/content"
	"github.com/xkilldash9x/boost-cli/internal/engagement"
)

// Tally counts outcomes by status.
type Tally struct {
	EngagedNow     int `json:"engaged_now"`
	AlreadyEngaged int `json:"already_engaged"`
	Errors         int `json:"errors"`
}

func (t *Tally) add(status engagement.Status) {
	switch status {
	case engagement.StatusEngagedNow:
		t.EngagedNow++
	case engagement.StatusAlreadyEngaged:
		t.AlreadyEngaged++
	default:
		t.Errors++
	}
}

// Total is the number of posts processed.
func (t Tally) Total() int {
	return t.EngagedNow + t.AlreadyEngaged + t.Errors
}

// DiscoveryFailure records an account that was skipped.
type DiscoveryFailure struct {
	Account content.Account
	Err     error
}

// BatchResult accumulates one run. Only the Orchestrator writes to it.
type BatchResult struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time

	// Accounts in the order they were visited.
	Accounts          []content.Account
	Discovered        int
	DiscoveryFailures []DiscoveryFailure

	// Outcomes in processing order.
	Outcomes []engagement.Outcome
	Tally    Tally
}

func newBatchResult() *BatchResult {
	return &BatchResult{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
	}
}

func (r *BatchResult) record(o engagement.Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.Tally.add(o.Status)
}
