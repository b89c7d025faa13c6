// File: internal/config/humanoid_config.go
// Registers the defaults for the humanoid behaviour model: the four delay
// categories plus distraction, and the timeline and reply scroll patterns.
// Every key can be overridden from the config file to tune how patient or
// restless the simulated user is.
package config

import (
	"github.com/spf13/viper"

	"github.com/xkilldash9x/boost-cli/internal/humanoid"
)

func setDurationRange(v *viper.Viper, key string, r humanoid.DurationRange) {
	v.SetDefault(key+".min", r.Min)
	v.SetDefault(key+".max", r.Max)
}

func setIntRange(v *viper.Viper, key string, r humanoid.IntRange) {
	v.SetDefault(key+".min", r.Min)
	v.SetDefault(key+".max", r.Max)
}

func setHumanoidDefaults(v *viper.Viper) {
	d := humanoid.DefaultConfig()

	// -- Timing --
	setDurationRange(v, "humanoid.timing.micro", d.Timing.Micro)
	setDurationRange(v, "humanoid.timing.standard", d.Timing.Standard)
	setDurationRange(v, "humanoid.timing.reading", d.Timing.Reading)
	setDurationRange(v, "humanoid.timing.decision", d.Timing.Decision)
	setDurationRange(v, "humanoid.timing.distraction", d.Timing.Distraction)
	v.SetDefault("humanoid.timing.distraction_probability", d.Timing.DistractionProbability)

	// -- Timeline scrolling --
	setIntRange(v, "humanoid.timeline.steps", d.Timeline.Steps)
	setIntRange(v, "humanoid.timeline.distance", d.Timeline.Distance)
	setIntRange(v, "humanoid.timeline.chunks", d.Timeline.Chunks)
	setIntRange(v, "humanoid.timeline.backtrack", d.Timeline.Backtrack)
	v.SetDefault("humanoid.timeline.smooth_probability", d.Timeline.SmoothProbability)
	v.SetDefault("humanoid.timeline.backtrack_probability", d.Timeline.BacktrackProbability)

	// -- Reply scrolling --
	setIntRange(v, "humanoid.comments.steps", d.Comments.Steps)
	setIntRange(v, "humanoid.comments.distance", d.Comments.Distance)
	setIntRange(v, "humanoid.comments.chunks", d.Comments.Chunks)
	setDurationRange(v, "humanoid.comments.read_pause", d.Comments.ReadPause)
	setIntRange(v, "humanoid.comments.reread_up", d.Comments.RereadUp)
	setIntRange(v, "humanoid.comments.reread_down", d.Comments.RereadDown)
	setIntRange(v, "humanoid.comments.return", d.Comments.Return)
	v.SetDefault("humanoid.comments.smooth_probability", d.Comments.SmoothProbability)
	v.SetDefault("humanoid.comments.reread_probability", d.Comments.RereadProbability)
}
