// internal/browser/executor_adapter.go
package browser

import (
	"context"
	"errors"
	"time"

	"github.com/xkilldash9x/boost-cli/internal/humanoid"
)

// SessionExecutorAdapter implements humanoid.Executor on top of a Session,
// so the behaviour engine stays unaware of the browser driving it.
type SessionExecutorAdapter struct {
	session Session
}

// NewSessionExecutorAdapter wraps session.
func NewSessionExecutorAdapter(session Session) *SessionExecutorAdapter {
	return &SessionExecutorAdapter{session: session}
}

var _ humanoid.Executor = (*SessionExecutorAdapter)(nil)

// Sleep blocks for d or until ctx is done.
func (a *SessionExecutorAdapter) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *SessionExecutorAdapter) ExecuteScript(ctx context.Context, script string) error {
	if a.session == nil {
		return errors.New("adapter session is nil")
	}
	return a.session.RunScript(ctx, script)
}
