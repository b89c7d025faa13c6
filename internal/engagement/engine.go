// internal/engagement/engine.go
package engagement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boost-cli/internal/browser"
	"github.com/xkilldash9x/boost-cli/internal/content"
	"github.com/xkilldash9x/boost-cli/internal/humanoid"
)

// ErrControlMissing is returned when an expected control never rendered.
var ErrControlMissing = errors.New("control not found")

// Engine reads a post and retweets it unless it already is.
type Engine struct {
	session   browser.Session
	humanoid  *humanoid.Humanoid
	selectors content.Selectors
	cfg       Config
	logger    *zap.Logger
}

func NewEngine(session browser.Session, h *humanoid.Humanoid, selectors content.Selectors, cfg Config, logger *zap.Logger) *Engine {
	return &Engine{
		session:   session,
		humanoid:  h,
		selectors: selectors,
		cfg:       cfg,
		logger:    logger.Named("engagement"),
	}
}

// EngageIfNeeded processes one post. It never returns an error; failures
// are carried in the Outcome with StatusError.
func (e *Engine) EngageIfNeeded(ctx context.Context, item content.Reference) Outcome {
	start := time.Now()
	outcome := Outcome{Item: item}
	logger := e.logger.With(zap.String("item", item.String()))

	status, err := e.engage(ctx, item, &outcome.Secondary)
	outcome.Status = status
	outcome.Err = err
	outcome.Duration = time.Since(start)

	switch status {
	case StatusEngagedNow:
		logger.Info("Retweeted successfully", zap.Bool("liked", outcome.Secondary.Succeeded))
		if outcome.Secondary.Err != nil {
			logger.Debug("Like skipped", zap.Error(outcome.Secondary.Err))
		}
	case StatusAlreadyEngaged:
		logger.Info("Already retweeted")
	default:
		logger.Warn("Could not retweet", zap.Error(err))
	}
	return outcome
}

func (e *Engine) engage(ctx context.Context, item content.Reference, secondary *Secondary) (Status, error) {
	if err := e.session.Navigate(ctx, item.String()); err != nil {
		return StatusError, fmt.Errorf("loading post: %w", err)
	}
	if err := e.humanoid.Delay(ctx, humanoid.CategoryReading); err != nil {
		return StatusError, err
	}

	if _, err := e.session.WaitFor(ctx, e.selectors.Post, e.cfg.LoadTimeout); err != nil {
		return StatusError, fmt.Errorf("post did not render: %w", err)
	}

	// The post and its replies are always read before deciding.
	if err := e.humanoid.ScrollComments(ctx); err != nil {
		return StatusError, fmt.Errorf("reading replies: %w", err)
	}

	state, control, err := e.ObserveState(ctx)
	if err != nil {
		return StatusError, err
	}
	if state == StateEngaged {
		if err := e.humanoid.Delay(ctx, humanoid.CategoryMicro); err != nil {
			return StatusError, err
		}
		return StatusAlreadyEngaged, nil
	}

	if err := e.retweet(ctx, control); err != nil {
		return StatusError, err
	}

	if e.humanoid.Chance(e.cfg.LikeProbability) {
		*secondary = e.like(ctx)
	}

	if err := e.humanoid.Delay(ctx, humanoid.CategoryStandard); err != nil {
		// The retweet itself went through.
		e.logger.Debug("Interrupted after retweet", zap.Error(err))
	}
	return StatusEngagedNow, nil
}

// ObserveState inspects the first retweet control on the page, which
// belongs to the post itself; reply and thread controls come later. When
// the post is not yet engaged the control is returned so it can be clicked.
func (e *Engine) ObserveState(ctx context.Context) (State, browser.Element, error) {
	selector := e.selectors.Retweet
	if e.selectors.Unretweet != "" {
		selector += ", " + e.selectors.Unretweet
	}

	control, err := e.session.WaitFor(ctx, selector, e.cfg.ControlTimeout)
	if err != nil {
		if errors.Is(err, browser.ErrWaitTimeout) {
			return StateNotEngaged, nil, fmt.Errorf("retweet %w: %v", ErrControlMissing, err)
		}
		return StateNotEngaged, nil, fmt.Errorf("waiting for retweet control: %w", err)
	}

	if e.selectors.Unretweet != "" {
		undo, err := control.Matches(ctx, e.selectors.Unretweet)
		if err != nil {
			return StateNotEngaged, nil, fmt.Errorf("inspecting retweet state: %w", err)
		}
		if undo {
			return StateEngaged, nil, nil
		}
	}

	if e.selectors.EngagedMarker != "" {
		markup, err := control.Attribute(ctx, "innerHTML")
		if err != nil {
			return StateNotEngaged, nil, fmt.Errorf("reading retweet control: %w", err)
		}
		if strings.Contains(markup, e.selectors.EngagedMarker) {
			return StateEngaged, nil, nil
		}
	}
	return StateNotEngaged, control, nil
}

// retweet runs decide, act, confirm.
func (e *Engine) retweet(ctx context.Context, control browser.Element) error {
	if err := e.humanoid.Delay(ctx, humanoid.CategoryDecision); err != nil {
		return err
	}
	if err := control.Click(ctx); err != nil {
		return fmt.Errorf("clicking retweet: %w", err)
	}

	confirm, err := e.session.WaitFor(ctx, e.selectors.Confirm, e.cfg.ConfirmTimeout)
	if err != nil {
		if errors.Is(err, browser.ErrWaitTimeout) {
			return fmt.Errorf("confirmation %w: %v", ErrControlMissing, err)
		}
		return fmt.Errorf("waiting for confirmation: %w", err)
	}

	if err := e.humanoid.Delay(ctx, humanoid.CategoryMicro); err != nil {
		return err
	}
	if err := confirm.Click(ctx); err != nil {
		return fmt.Errorf("confirming retweet: %w", err)
	}
	return nil
}

// like is best effort; its result only ever lands in Secondary.
func (e *Engine) like(ctx context.Context) Secondary {
	result := Secondary{Attempted: true}

	controls, err := e.session.Find(ctx, e.selectors.Like)
	if err != nil {
		result.Err = err
		return result
	}
	if len(controls) == 0 {
		result.Err = fmt.Errorf("like %w", ErrControlMissing)
		return result
	}

	if err := e.humanoid.Delay(ctx, humanoid.CategoryStandard); err != nil {
		result.Err = err
		return result
	}
	if err := controls[0].Click(ctx); err != nil {
		result.Err = err
		return result
	}
	result.Succeeded = true
	return result
}
