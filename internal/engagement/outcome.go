// internal/engagement/outcome.go
package engagement

import (
	"time"

	"github.com/xkilldash9x/boost-cli/internal/content"
)

// Status is the result class of processing one post.
type Status string

const (
	StatusEngagedNow     Status = "engaged_now"
	StatusAlreadyEngaged Status = "already_engaged"
	StatusError          Status = "error"
)

// State is the engagement state observed on the live page.
type State int

const (
	StateNotEngaged State = iota
	StateEngaged
)

func (s State) String() string {
	if s == StateEngaged {
		return "engaged"
	}
	return "not_engaged"
}

// Secondary records the best-effort like that may follow a retweet.
// Its failure never changes Outcome.Status.
type Secondary struct {
	Attempted bool  `json:"attempted"`
	Succeeded bool  `json:"succeeded"`
	Err       error `json:"-"`
}

// Outcome is what happened to one post.
type Outcome struct {
	Item      content.Reference `json:"item"`
	Status    Status            `json:"status"`
	Err       error             `json:"-"`
	Secondary Secondary         `json:"secondary"`
	Duration  time.Duration     `json:"duration"`
}

// Reason returns the failure text, or "" when the outcome is not an error.
func (o Outcome) Reason() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}
