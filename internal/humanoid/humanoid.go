// internal/humanoid/humanoid.go
package humanoid

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Humanoid turns abstract intents ("read this", "scroll the feed") into
// randomized timed operations against an Executor.
type Humanoid struct {
	// mu protects rng. Every draw goes through the helpers below.
	mu       sync.Mutex
	config   Config
	logger   *zap.Logger
	executor Executor
	rng      *rand.Rand
}

// New creates and initializes a new Humanoid instance.
func New(config Config, logger *zap.Logger, executor Executor) *Humanoid {
	rng := config.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	config.Rng = rng

	return &Humanoid{
		config:   config,
		logger:   logger.Named("humanoid"),
		executor: executor,
		rng:      rng,
	}
}

// NewTestHumanoid creates a Humanoid with the default behaviour and a seeded RNG.
func NewTestHumanoid(executor Executor, seed int64) *Humanoid {
	config := DefaultConfig()
	config.Rng = rand.New(rand.NewSource(seed))
	return New(config, zap.NewNop(), executor)
}

// Config returns a copy of the active configuration.
func (h *Humanoid) Config() Config {
	return h.config
}

// Sleep suspends for exactly d.
func (h *Humanoid) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return h.executor.Sleep(ctx, d)
}

// Pause suspends for a duration drawn uniformly from r, bypassing the
// category model (no distraction substitution).
func (h *Humanoid) Pause(ctx context.Context, r DurationRange) error {
	return h.Sleep(ctx, h.drawDuration(r))
}

// Chance returns true with probability p.
func (h *Humanoid) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rng.Float64() < p
}

// Shuffle randomizes the order of n elements using swap.
func (h *Humanoid) Shuffle(n int, swap func(i, j int)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rng.Shuffle(n, swap)
}

// drawDuration samples uniformly from the closed range.
func (h *Humanoid) drawDuration(r DurationRange) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return r.Min + time.Duration(h.rng.Int63n(int64(r.Max-r.Min)+1))
}

// drawInt samples uniformly from the closed range.
func (h *Humanoid) drawInt(r IntRange) int {
	if r.Max <= r.Min {
		return r.Min
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return r.Min + h.rng.Intn(r.Max-r.Min+1)
}
