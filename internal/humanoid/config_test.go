// internal/humanoid/config_test.go
package humanoid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_Valid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "InvertedDurationRange",
			mutate:  func(c *Config) { c.Timing.Reading = DurationRange{Min: 3 * time.Second, Max: time.Second} },
			wantErr: "humanoid.timing.reading",
		},
		{
			name:    "NegativeDuration",
			mutate:  func(c *Config) { c.Timing.Micro.Min = -time.Millisecond },
			wantErr: "non-negative",
		},
		{
			name:    "ZeroChunks",
			mutate:  func(c *Config) { c.Comments.Chunks = IntRange{Min: 0, Max: 3} },
			wantErr: "humanoid.comments.chunks",
		},
		{
			name:    "ProbabilityAboveOne",
			mutate:  func(c *Config) { c.Timeline.BacktrackProbability = 1.2 },
			wantErr: "humanoid.timeline.backtrack_probability",
		},
		{
			name:    "NegativeProbability",
			mutate:  func(c *Config) { c.Timing.DistractionProbability = -0.1 },
			wantErr: "between 0.0 and 1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestDurationRangeContains(t *testing.T) {
	r := DurationRange{Min: time.Second, Max: 2 * time.Second}
	assert.True(t, r.Contains(time.Second))
	assert.True(t, r.Contains(2*time.Second))
	assert.False(t, r.Contains(999*time.Millisecond))
}
