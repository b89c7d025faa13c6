// internal/humanoid/interface.go
package humanoid

import (
	"context"
	"time"
)

// Executor defines the low-level operations the Humanoid drives.
// Implementations bridge to a live browser session; tests record the calls.
type Executor interface {
	Sleep(ctx context.Context, d time.Duration) error
	// ExecuteScript runs a script in the page and discards its result.
	ExecuteScript(ctx context.Context, script string) error
}
