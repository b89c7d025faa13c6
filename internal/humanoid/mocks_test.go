// internal/humanoid/mocks_test.go
package humanoid

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

// mockExecutor records every sleep and script without blocking.
type mockExecutor struct {
	mu             sync.Mutex
	sleepDurations []time.Duration
	scripts        []string
	scriptErr      error
	failOnScript   int // 1-based index of the script call that fails; 0 disables.
	cancelOnSleep  int
	cancelFunc     context.CancelFunc
}

func newMockExecutor() *mockExecutor {
	return &mockExecutor{}
}

func (m *mockExecutor) Sleep(ctx context.Context, d time.Duration) error {
	m.mu.Lock()
	m.sleepDurations = append(m.sleepDurations, d)
	n := len(m.sleepDurations)
	m.mu.Unlock()

	if m.cancelFunc != nil && n == m.cancelOnSleep {
		m.cancelFunc()
	}
	return ctx.Err()
}

func (m *mockExecutor) ExecuteScript(ctx context.Context, script string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts = append(m.scripts, script)
	if m.failOnScript > 0 && len(m.scripts) == m.failOnScript {
		return m.scriptErr
	}
	return nil
}

// scrolls parses the recorded scroll offsets.
func (m *mockExecutor) scrolls(t *testing.T) []int {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, 0, len(m.scripts))
	for _, s := range m.scripts {
		var dy int
		if !strings.HasPrefix(s, "window.scrollBy(0, ") {
			t.Fatalf("unexpected script %q", s)
		}
		if _, err := fmt.Sscanf(s, "window.scrollBy(0, %d)", &dy); err != nil {
			t.Fatalf("unparseable script %q: %v", s, err)
		}
		out = append(out, dy)
	}
	return out
}

// newHumanoid builds a Humanoid over a mock with config tweaks applied.
func newHumanoid(seed int64, tweak func(*Config)) (*Humanoid, *mockExecutor) {
	cfg := DefaultConfig()
	cfg.Rng = rand.New(rand.NewSource(seed))
	if tweak != nil {
		tweak(&cfg)
	}
	mock := newMockExecutor()
	return New(cfg, zap.NewNop(), mock), mock
}
