// internal/humanoid/timing.go
package humanoid

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Category classifies the intent behind a delay.
type Category string

const (
	// CategoryMicro covers small adjustments and reflexive reactions.
	CategoryMicro Category = "micro"
	// CategoryStandard covers ordinary actions.
	CategoryStandard Category = "standard"
	// CategoryReading covers taking in freshly rendered content.
	CategoryReading Category = "reading"
	// CategoryDecision covers deliberating before committing to an action.
	CategoryDecision Category = "decision"
)

// rangeFor maps a category to its configured range. Unknown categories
// fall back to the standard range.
func (c TimingConfig) rangeFor(category Category) DurationRange {
	switch category {
	case CategoryMicro:
		return c.Micro
	case CategoryReading:
		return c.Reading
	case CategoryDecision:
		return c.Decision
	default:
		return c.Standard
	}
}

// DelayDuration draws the duration for one delay request. The second return
// value reports whether the distraction branch replaced the category draw.
func (h *Humanoid) DelayDuration(category Category) (time.Duration, bool) {
	timing := h.config.Timing
	if h.Chance(timing.DistractionProbability) {
		return h.drawDuration(timing.Distraction), true
	}
	return h.drawDuration(timing.rangeFor(category)), false
}

// Delay suspends the caller for a duration appropriate to category.
// The only error is cancellation of ctx.
func (h *Humanoid) Delay(ctx context.Context, category Category) error {
	d, distracted := h.DelayDuration(category)
	if distracted {
		h.logger.Debug("Distraction pause", zap.String("category", string(category)), zap.Duration("duration", d))
	}
	return h.Sleep(ctx, d)
}
