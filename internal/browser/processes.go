// internal/browser/processes.go
package browser

import (
	"context"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// runningProcess is the part of a gopsutil process the shutdown step uses.
type runningProcess interface {
	NameWithContext(ctx context.Context) (string, error)
	TerminateWithContext(ctx context.Context) error
}

var listProcesses = func(ctx context.Context) ([]runningProcess, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]runningProcess, 0, len(procs))
	for _, p := range procs {
		out = append(out, p)
	}
	return out, nil
}

// processSettleDelay gives terminated browsers time to release the profile lock.
var processSettleDelay = 2 * time.Second

// processNames lists the executable names of each flavor, lowercased and
// without the .exe suffix.
var processNames = map[string][]string{
	FlavorEdge:   {"msedge", "microsoft edge"},
	FlavorChrome: {"chrome", "google chrome"},
}

func isBrowserProcess(flavor, name string) bool {
	name = strings.TrimSuffix(strings.ToLower(name), ".exe")
	for _, want := range processNames[flavor] {
		if name == want {
			return true
		}
	}
	return false
}

// CloseRunning terminates running browsers of the given flavor so the
// user-data directory is free to launch against. Processes that cannot be
// inspected or terminated are skipped. It returns how many were asked to exit.
func CloseRunning(ctx context.Context, flavor string, logger *zap.Logger) (int, error) {
	procs, err := listProcesses(ctx)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || !isBrowserProcess(flavor, name) {
			continue
		}
		if err := p.TerminateWithContext(ctx); err != nil {
			logger.Debug("Could not terminate browser process", zap.String("name", name), zap.Error(err))
			continue
		}
		closed++
	}

	if closed == 0 {
		return 0, nil
	}
	logger.Info("Closed running browser processes", zap.Int("count", closed))

	select {
	case <-ctx.Done():
		return closed, ctx.Err()
	case <-time.After(processSettleDelay):
	}
	return closed, nil
}
