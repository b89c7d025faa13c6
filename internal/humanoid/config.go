// internal/humanoid/config.go
package humanoid

import (
	"fmt"
	"math/rand"
	"time"
)

// DurationRange is a closed interval of durations a delay is drawn from.
type DurationRange struct {
	Min time.Duration `mapstructure:"min" yaml:"min"`
	Max time.Duration `mapstructure:"max" yaml:"max"`
}

// Validate checks 0 <= Min <= Max.
func (r DurationRange) Validate() error {
	if r.Min < 0 || r.Max < 0 {
		return fmt.Errorf("bounds must be non-negative (min=%s, max=%s)", r.Min, r.Max)
	}
	if r.Min > r.Max {
		return fmt.Errorf("min %s exceeds max %s", r.Min, r.Max)
	}
	return nil
}

// Contains reports whether d lies within the range.
func (r DurationRange) Contains(d time.Duration) bool {
	return d >= r.Min && d <= r.Max
}

// IntRange is a closed interval of integers (step counts, scroll distances, chunk counts).
type IntRange struct {
	Min int `mapstructure:"min" yaml:"min"`
	Max int `mapstructure:"max" yaml:"max"`
}

// Validate checks floor <= Min <= Max.
func (r IntRange) Validate(floor int) error {
	if r.Min < floor {
		return fmt.Errorf("min %d is below %d", r.Min, floor)
	}
	if r.Min > r.Max {
		return fmt.Errorf("min %d exceeds max %d", r.Min, r.Max)
	}
	return nil
}

// TimingConfig holds the delay range of every action category plus the distraction override.
type TimingConfig struct {
	Micro    DurationRange `mapstructure:"micro" yaml:"micro"`
	Standard DurationRange `mapstructure:"standard" yaml:"standard"`
	Reading  DurationRange `mapstructure:"reading" yaml:"reading"`
	Decision DurationRange `mapstructure:"decision" yaml:"decision"`

	// DistractionProbability is the chance that any single delay request is
	// replaced by one draw from Distraction.
	DistractionProbability float64       `mapstructure:"distraction_probability" yaml:"distraction_probability"`
	Distraction            DurationRange `mapstructure:"distraction" yaml:"distraction"`
}

// TimelineScrollConfig shapes feed skimming.
type TimelineScrollConfig struct {
	Steps                IntRange `mapstructure:"steps" yaml:"steps"`
	Distance             IntRange `mapstructure:"distance" yaml:"distance"`
	SmoothProbability    float64  `mapstructure:"smooth_probability" yaml:"smooth_probability"`
	Chunks               IntRange `mapstructure:"chunks" yaml:"chunks"`
	BacktrackProbability float64  `mapstructure:"backtrack_probability" yaml:"backtrack_probability"`
	Backtrack            IntRange `mapstructure:"backtrack" yaml:"backtrack"`
}

// CommentScrollConfig shapes careful reading of a discussion thread.
type CommentScrollConfig struct {
	Steps             IntRange      `mapstructure:"steps" yaml:"steps"`
	Distance          IntRange      `mapstructure:"distance" yaml:"distance"`
	SmoothProbability float64       `mapstructure:"smooth_probability" yaml:"smooth_probability"`
	Chunks            IntRange      `mapstructure:"chunks" yaml:"chunks"`
	ReadPause         DurationRange `mapstructure:"read_pause" yaml:"read_pause"`
	RereadProbability float64       `mapstructure:"reread_probability" yaml:"reread_probability"`
	RereadUp          IntRange      `mapstructure:"reread_up" yaml:"reread_up"`
	RereadDown        IntRange      `mapstructure:"reread_down" yaml:"reread_down"`
	Return            IntRange      `mapstructure:"return" yaml:"return"`
}

// Config holds the parameters defining the behaviour of the simulation.
type Config struct {
	// Rng is the random source for every draw. A time-seeded source is
	// created when nil.
	Rng *rand.Rand `mapstructure:"-" yaml:"-"`

	Timing   TimingConfig         `mapstructure:"timing" yaml:"timing"`
	Timeline TimelineScrollConfig `mapstructure:"timeline" yaml:"timeline"`
	Comments CommentScrollConfig  `mapstructure:"comments" yaml:"comments"`
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

// DefaultConfig returns the behaviour of a focused, fairly quick user.
func DefaultConfig() Config {
	return Config{
		Timing: TimingConfig{
			Micro:                  DurationRange{Min: seconds(0.1), Max: seconds(0.5)},
			Standard:               DurationRange{Min: seconds(0.8), Max: seconds(2.5)},
			Reading:                DurationRange{Min: seconds(1.5), Max: seconds(8)},
			Decision:               DurationRange{Min: seconds(1.5), Max: seconds(4)},
			DistractionProbability: 0.08,
			Distraction:            DurationRange{Min: seconds(7), Max: seconds(15)},
		},
		Timeline: TimelineScrollConfig{
			Steps:                IntRange{Min: 2, Max: 4},
			Distance:             IntRange{Min: 300, Max: 700},
			SmoothProbability:    0.4,
			Chunks:               IntRange{Min: 3, Max: 5},
			BacktrackProbability: 0.3,
			Backtrack:            IntRange{Min: 100, Max: 300},
		},
		Comments: CommentScrollConfig{
			Steps:             IntRange{Min: 2, Max: 5},
			Distance:          IntRange{Min: 200, Max: 400},
			SmoothProbability: 0.7,
			Chunks:            IntRange{Min: 4, Max: 7},
			ReadPause:         DurationRange{Min: seconds(3), Max: seconds(8)},
			RereadProbability: 0.3,
			RereadUp:          IntRange{Min: 50, Max: 150},
			RereadDown:        IntRange{Min: 70, Max: 170},
			Return:            IntRange{Min: 300, Max: 600},
		},
	}
}

// Validate checks every range and probability.
func (c Config) Validate() error {
	durations := map[string]DurationRange{
		"timing.micro":        c.Timing.Micro,
		"timing.standard":     c.Timing.Standard,
		"timing.reading":      c.Timing.Reading,
		"timing.decision":     c.Timing.Decision,
		"timing.distraction":  c.Timing.Distraction,
		"comments.read_pause": c.Comments.ReadPause,
	}
	for name, r := range durations {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("humanoid.%s: %w", name, err)
		}
	}

	ints := []struct {
		name  string
		r     IntRange
		floor int
	}{
		{"timeline.steps", c.Timeline.Steps, 0},
		{"timeline.distance", c.Timeline.Distance, 0},
		{"timeline.chunks", c.Timeline.Chunks, 1},
		{"timeline.backtrack", c.Timeline.Backtrack, 0},
		{"comments.steps", c.Comments.Steps, 0},
		{"comments.distance", c.Comments.Distance, 0},
		{"comments.chunks", c.Comments.Chunks, 1},
		{"comments.reread_up", c.Comments.RereadUp, 0},
		{"comments.reread_down", c.Comments.RereadDown, 0},
		{"comments.return", c.Comments.Return, 0},
	}
	for _, i := range ints {
		if err := i.r.Validate(i.floor); err != nil {
			return fmt.Errorf("humanoid.%s: %w", i.name, err)
		}
	}

	probabilities := map[string]float64{
		"timing.distraction_probability": c.Timing.DistractionProbability,
		"timeline.smooth_probability":    c.Timeline.SmoothProbability,
		"timeline.backtrack_probability": c.Timeline.BacktrackProbability,
		"comments.smooth_probability":    c.Comments.SmoothProbability,
		"comments.reread_probability":    c.Comments.RereadProbability,
	}
	for name, p := range probabilities {
		if p < 0 || p > 1 {
			return fmt.Errorf("humanoid.%s must be between 0.0 and 1.0, got %v", name, p)
		}
	}
	return nil
}
