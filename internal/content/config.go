// internal/content/config.go
package content

import (
	"errors"
	"fmt"
	"time"
)

// Selectors locate the site's affordances. They are kept together so a markup
// change is a configuration change.
type Selectors struct {
	Post      string `mapstructure:"post" yaml:"post"`
	PostLink  string `mapstructure:"post_link" yaml:"post_link"`
	Retweet   string `mapstructure:"retweet" yaml:"retweet"`
	Unretweet string `mapstructure:"unretweet" yaml:"unretweet"`
	Confirm   string `mapstructure:"confirm" yaml:"confirm"`
	Like      string `mapstructure:"like" yaml:"like"`
	// EngagedMarker is text the retweet control renders once the post has
	// already been retweeted.
	EngagedMarker string `mapstructure:"engaged_marker" yaml:"engaged_marker"`
}

// DefaultSelectors matches the site's current data-testid markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Post:          "[data-testid='tweet']",
		PostLink:      "[data-testid='tweet'] a[href*='/status/']",
		Retweet:       "[data-testid='retweet']",
		Unretweet:     "[data-testid='unretweet']",
		Confirm:       "[data-testid='retweetConfirm']",
		Like:          "[data-testid='like']",
		EngagedMarker: "Undo retweet",
	}
}

// Validate requires every selector except the optional unretweet and marker.
func (s Selectors) Validate() error {
	fields := map[string]string{
		"post":      s.Post,
		"post_link": s.PostLink,
		"retweet":   s.Retweet,
		"confirm":   s.Confirm,
		"like":      s.Like,
	}
	for name, v := range fields {
		if v == "" {
			return fmt.Errorf("selectors.%s must not be empty", name)
		}
	}
	return nil
}

// Config controls timeline discovery.
type Config struct {
	Selectors Selectors `mapstructure:"selectors" yaml:"selectors"`
	// LoadTimeout bounds the wait for the first post on a timeline.
	LoadTimeout time.Duration `mapstructure:"load_timeout" yaml:"load_timeout"`
}

// DefaultConfig returns the default selectors with a 15s load bound.
func DefaultConfig() Config {
	return Config{
		Selectors:   DefaultSelectors(),
		LoadTimeout: 15 * time.Second,
	}
}

// Validate checks the selectors and the load timeout.
func (c Config) Validate() error {
	if err := c.Selectors.Validate(); err != nil {
		return fmt.Errorf("content.%w", err)
	}
	if c.LoadTimeout <= 0 {
		return errors.New("content.load_timeout must be positive")
	}
	return nil
}
