// File: internal/orchestrator/orchestrator.go
// Description: Runs one batch: discovers posts across accounts, engages each
// in random order, and always releases the browser session afterwards.

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boost-cli/internal/browser"
	"github.com/xkilldash9x/boost-cli/internal/content"
	"github.com/xkilldash9x/boost-cli/internal/engagement"
	"github.com/xkilldash9x/boost-cli/internal/humanoid"
)

// ErrAlreadyRun is returned when Run is called a second time. The session
// is released at the end of the first run.
var ErrAlreadyRun = errors.New("orchestrator has already run")

// Discoverer finds posts on one account's timeline.
type Discoverer interface {
	Discover(ctx context.Context, account content.Account, maxItems int) ([]content.Reference, error)
}

// Engager processes one post.
type Engager interface {
	EngageIfNeeded(ctx context.Context, item content.Reference) engagement.Outcome
}

// Config holds the teardown bounds.
type Config struct {
	// TeardownDelay is the pause before the browser is closed.
	TeardownDelay time.Duration `mapstructure:"teardown_delay" yaml:"teardown_delay"`
	// CloseTimeout bounds the session release itself.
	CloseTimeout time.Duration `mapstructure:"close_timeout" yaml:"close_timeout"`
}

// DefaultConfig waits 5s before closing and allows 10s for the close.
func DefaultConfig() Config {
	return Config{
		TeardownDelay: 5 * time.Second,
		CloseTimeout:  10 * time.Second,
	}
}

// Validate rejects a negative delay and a non-positive close bound.
func (c Config) Validate() error {
	if c.TeardownDelay < 0 {
		return errors.New("orchestrator.teardown_delay must not be negative")
	}
	if c.CloseTimeout <= 0 {
		return errors.New("orchestrator.close_timeout must be positive")
	}
	return nil
}

// Orchestrator owns the session for exactly one run.
type Orchestrator struct {
	session    browser.Session
	discoverer Discoverer
	engager    Engager
	humanoid   *humanoid.Humanoid
	cfg        Config
	logger     *zap.Logger

	used atomic.Bool
}

// New creates an Orchestrator. Every dependency is required.
func New(
	session browser.Session,
	discoverer Discoverer,
	engager Engager,
	h *humanoid.Humanoid,
	cfg Config,
	logger *zap.Logger,
) (*Orchestrator, error) {
	if session == nil ||
		discoverer == nil ||
		engager == nil ||
		h == nil ||
		logger == nil {
		return nil, fmt.Errorf("cannot initialize orchestrator with nil dependencies")
	}
	return &Orchestrator{
		session:    session,
		discoverer: discoverer,
		engager:    engager,
		humanoid:   h,
		cfg:        cfg,
		logger:     logger.Named("orchestrator"),
	}, nil
}

// Run processes accounts and their posts sequentially and returns the
// batch. Per-account and per-item failures are recorded, never returned.
// The error is non-nil only when ctx is cancelled or the run aborts; the
// partial batch is still returned. The session is released exactly once
// on every exit path.
func (o *Orchestrator) Run(ctx context.Context, accounts []content.Account, maxPerAccount int) (result *BatchResult, err error) {
	if !o.used.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRun
	}

	result = newBatchResult()
	logger := o.logger.With(zap.String("run_id", result.RunID.String()))
	logger.Info("Run starting", zap.Int("accounts", len(accounts)), zap.Int("max_per_account", maxPerAccount))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Run aborted", zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("run aborted: %v", r)
		}
		o.release(ctx, logger)
		result.FinishedAt = time.Now()
		logger.Info("Run finished",
			zap.Int("engaged_now", result.Tally.EngagedNow),
			zap.Int("already_engaged", result.Tally.AlreadyEngaged),
			zap.Int("errors", result.Tally.Errors))
	}()

	items, err := o.discover(ctx, logger, accounts, maxPerAccount, result)
	if err != nil {
		return result, err
	}

	o.humanoid.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	logger.Info("Posts to process", zap.Int("total", len(items)))

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		logger.Info("Processing post", zap.Int("index", i+1), zap.Int("total", len(items)), zap.String("item", item.String()))
		result.record(o.engageIsolated(ctx, item))
	}
	return result, nil
}

func (o *Orchestrator) discover(ctx context.Context, logger *zap.Logger, accounts []content.Account, maxPerAccount int, result *BatchResult) ([]content.Reference, error) {
	order := append([]content.Account(nil), accounts...)
	o.humanoid.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	result.Accounts = order

	var items []content.Reference
	for _, account := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		refs, err := o.discoverIsolated(ctx, account, maxPerAccount)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("Discovery failed, skipping account", zap.String("account", account.URL), zap.Error(err))
			result.DiscoveryFailures = append(result.DiscoveryFailures, DiscoveryFailure{Account: account, Err: err})
			continue
		}
		items = append(items, refs...)
		result.Discovered += len(refs)

		// Deciding which account to look at next.
		if err := o.humanoid.Delay(ctx, humanoid.CategoryDecision); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// discoverIsolated turns a panic while reading one timeline into a
// discovery failure so the other accounts are still visited.
func (o *Orchestrator) discoverIsolated(ctx context.Context, account content.Account, maxPerAccount int) (refs []content.Reference, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Recovered from panic while discovering posts", zap.String("account", account.URL), zap.Any("panic", r))
			refs, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return o.discoverer.Discover(ctx, account, maxPerAccount)
}

// engageIsolated turns a panic inside one item into an error outcome so
// the remaining items still run.
func (o *Orchestrator) engageIsolated(ctx context.Context, item content.Reference) (outcome engagement.Outcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Recovered from panic while processing post", zap.String("item", item.String()), zap.Any("panic", r))
			outcome = engagement.Outcome{
				Item:     item,
				Status:   engagement.StatusError,
				Err:      fmt.Errorf("panic: %v", r),
				Duration: time.Since(start),
			}
		}
	}()
	return o.engager.EngageIfNeeded(ctx, item)
}

// release waits out the teardown delay and closes the session on a
// context detached from ctx, so it also runs after an interrupt.
func (o *Orchestrator) release(ctx context.Context, logger *zap.Logger) {
	teardownCtx := browser.Detach(ctx)

	logger.Info("Closing browser", zap.Duration("delay", o.cfg.TeardownDelay))
	if err := o.humanoid.Sleep(teardownCtx, o.cfg.TeardownDelay); err != nil {
		logger.Debug("Teardown delay interrupted", zap.Error(err))
	}

	closeCtx, cancel := context.WithTimeout(teardownCtx, o.cfg.CloseTimeout)
	defer cancel()
	if err := o.session.Close(closeCtx); err != nil {
		logger.Warn("Failed to release browser session", zap.Error(err))
		return
	}
	logger.Info("Browser closed")
}
