// internal/browser/config.go
package browser

import (
	"errors"
	"fmt"
	"time"
)

// Config describes how the browser process is launched and paced.
type Config struct {
	// Flavor is "edge" or "chrome". It selects the default binary and
	// user-data root.
	Flavor   string `mapstructure:"flavor" yaml:"flavor"`
	Headless bool   `mapstructure:"headless" yaml:"headless"`
	// ExecPath selects a specific Chrome or Edge binary. Empty lets chromedp
	// search the usual install locations.
	ExecPath string `mapstructure:"exec_path" yaml:"exec_path"`
	// UserDataDir is the browser's user-data root. Empty selects the
	// platform default for Flavor. A leading ~ is expanded.
	UserDataDir string `mapstructure:"user_data_dir" yaml:"user_data_dir"`
	// Profile is a profile display name or directory name (e.g. "Work" or
	// "Profile 2"). Empty uses "Default".
	Profile string   `mapstructure:"profile" yaml:"profile"`
	Args    []string `mapstructure:"args" yaml:"args"`
	// CloseRunning terminates running browsers of Flavor before launch,
	// since a running instance holds the user-data directory.
	CloseRunning bool `mapstructure:"close_running" yaml:"close_running"`

	StartupTimeout time.Duration `mapstructure:"startup_timeout" yaml:"startup_timeout"`
	ActionTimeout  time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
	// CloseTimeout caps how long Close waits for the browser to exit.
	CloseTimeout time.Duration `mapstructure:"close_timeout" yaml:"close_timeout"`
	// NavigationInterval is the minimum spacing between navigations. Zero disables pacing.
	NavigationInterval time.Duration `mapstructure:"navigation_interval" yaml:"navigation_interval"`
	// WaitPollInterval is how often WaitFor re-queries the document.
	WaitPollInterval time.Duration `mapstructure:"wait_poll_interval" yaml:"wait_poll_interval"`
}

const (
	FlavorEdge   = "edge"
	FlavorChrome = "chrome"
)

// DefaultConfig returns a headed Edge on the default profile.
func DefaultConfig() Config {
	return Config{
		Flavor:             FlavorEdge,
		Headless:           false,
		StartupTimeout:     30 * time.Second,
		ActionTimeout:      30 * time.Second,
		CloseTimeout:       10 * time.Second,
		NavigationInterval: 2 * time.Second,
		WaitPollInterval:   250 * time.Millisecond,
	}
}

// Validate checks the flavor and that every bound is usable.
func (c Config) Validate() error {
	if c.Flavor != FlavorEdge && c.Flavor != FlavorChrome {
		return fmt.Errorf("browser.flavor must be %q or %q, got %q", FlavorEdge, FlavorChrome, c.Flavor)
	}
	if c.StartupTimeout <= 0 {
		return errors.New("browser.startup_timeout must be positive")
	}
	if c.ActionTimeout <= 0 {
		return errors.New("browser.action_timeout must be positive")
	}
	if c.CloseTimeout <= 0 {
		return errors.New("browser.close_timeout must be positive")
	}
	if c.NavigationInterval < 0 {
		return errors.New("browser.navigation_interval must not be negative")
	}
	if c.WaitPollInterval <= 0 {
		return errors.New("browser.wait_poll_interval must be positive")
	}
	return nil
}
