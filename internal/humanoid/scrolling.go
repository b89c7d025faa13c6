// internal/humanoid/scrolling.go
package humanoid

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ScrollScript renders the instruction that moves the viewport by dy pixels.
func ScrollScript(dy int) string {
	return fmt.Sprintf("window.scrollBy(0, %d)", dy)
}

func (h *Humanoid) scrollBy(ctx context.Context, dy int) error {
	if err := h.executor.ExecuteScript(ctx, ScrollScript(dy)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("humanoid: scroll by %d failed: %w", dy, err)
	}
	return nil
}

// smoothScroll splits distance into chunks, each followed by a micro delay.
func (h *Humanoid) smoothScroll(ctx context.Context, distance, chunks int) error {
	if chunks < 1 {
		chunks = 1
	}
	step := distance / chunks
	for i := 0; i < chunks; i++ {
		if err := h.scrollBy(ctx, step); err != nil {
			return err
		}
		if err := h.Delay(ctx, CategoryMicro); err != nil {
			return err
		}
	}
	return nil
}

// ScrollTimeline skims a feed: a few broad steps, each followed by time to
// digest what loaded, occasionally glancing back up at the end.
func (h *Humanoid) ScrollTimeline(ctx context.Context) error {
	cfg := h.config.Timeline

	if err := h.Delay(ctx, CategoryReading); err != nil {
		return err
	}

	steps := h.drawInt(cfg.Steps)
	for i := 0; i < steps; i++ {
		distance := h.drawInt(cfg.Distance)

		if h.Chance(cfg.SmoothProbability) {
			if err := h.smoothScroll(ctx, distance, h.drawInt(cfg.Chunks)); err != nil {
				return err
			}
		} else if err := h.scrollBy(ctx, distance); err != nil {
			return err
		}

		if err := h.Delay(ctx, CategoryReading); err != nil {
			return err
		}
	}

	if h.Chance(cfg.BacktrackProbability) {
		if err := h.scrollBy(ctx, -h.drawInt(cfg.Backtrack)); err != nil {
			return err
		}
		if err := h.Delay(ctx, CategoryStandard); err != nil {
			return err
		}
	}

	h.logger.Debug("Timeline scroll complete", zap.Int("steps", steps))
	return nil
}

// ScrollComments reads down a discussion in short, finely smoothed steps,
// dwelling on each and sometimes re-reading, then returns the viewport
// toward the item so the action controls are back in view.
func (h *Humanoid) ScrollComments(ctx context.Context) error {
	cfg := h.config.Comments

	if err := h.Delay(ctx, CategoryReading); err != nil {
		return err
	}

	steps := h.drawInt(cfg.Steps)
	for i := 0; i < steps; i++ {
		distance := h.drawInt(cfg.Distance)

		if h.Chance(cfg.SmoothProbability) {
			if err := h.smoothScroll(ctx, distance, h.drawInt(cfg.Chunks)); err != nil {
				return err
			}
		} else if err := h.scrollBy(ctx, distance); err != nil {
			return err
		}

		if err := h.Pause(ctx, cfg.ReadPause); err != nil {
			return err
		}

		if h.Chance(cfg.RereadProbability) {
			if err := h.scrollBy(ctx, -h.drawInt(cfg.RereadUp)); err != nil {
				return err
			}
			if err := h.Delay(ctx, CategoryReading); err != nil {
				return err
			}
			if err := h.scrollBy(ctx, h.drawInt(cfg.RereadDown)); err != nil {
				return err
			}
		}
	}

	if err := h.scrollBy(ctx, -h.drawInt(cfg.Return)); err != nil {
		return err
	}
	if err := h.Delay(ctx, CategoryStandard); err != nil {
		return err
	}

	h.logger.Debug("Comment scroll complete", zap.Int("steps", steps))
	return nil
}
