// internal/engagement/config.go
package engagement

import (
	"fmt"
	"time"
)

// Config bounds the waits of the act path and sets the follow-up odds.
type Config struct {
	// LoadTimeout bounds the wait for the post itself to render.
	LoadTimeout time.Duration `mapstructure:"load_timeout" yaml:"load_timeout"`
	// ControlTimeout bounds the wait for the retweet control after reading.
	ControlTimeout time.Duration `mapstructure:"control_timeout" yaml:"control_timeout"`
	// ConfirmTimeout bounds the wait for the confirmation menu entry.
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout" yaml:"confirm_timeout"`
	// LikeProbability is the chance of also liking a freshly retweeted post.
	LikeProbability float64 `mapstructure:"like_probability" yaml:"like_probability"`
}

// DefaultConfig returns the standard wait bounds and a 30% like rate.
func DefaultConfig() Config {
	return Config{
		LoadTimeout:     10 * time.Second,
		ControlTimeout:  10 * time.Second,
		ConfirmTimeout:  5 * time.Second,
		LikeProbability: 0.3,
	}
}

// Validate checks that every timeout is positive and the like rate is a probability.
func (c Config) Validate() error {
	timeouts := []struct {
		name string
		d    time.Duration
	}{
		{"load_timeout", c.LoadTimeout},
		{"control_timeout", c.ControlTimeout},
		{"confirm_timeout", c.ConfirmTimeout},
	}
	for _, t := range timeouts {
		if t.d <= 0 {
			return fmt.Errorf("engagement.%s must be positive", t.name)
		}
	}
	if c.LikeProbability < 0 || c.LikeProbability > 1 {
		return fmt.Errorf("engagement.like_probability must be between 0.0 and 1.0, got %v", c.LikeProbability)
	}
	return nil
}
