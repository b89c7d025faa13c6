// File: internal/config/config_test.go
package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/boost-cli/internal/humanoid"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "boost-cli", cfg.Logger.ServiceName)
	assert.Equal(t, "edge", cfg.Browser.Flavor)
	assert.False(t, cfg.Browser.Headless)
	assert.False(t, cfg.Browser.CloseRunning)
	assert.Equal(t, []string{DefaultAccount}, cfg.Run.Accounts)
	assert.Equal(t, 10, cfg.Run.MaxItemsPerAccount)
	assert.Equal(t, 5*time.Second, cfg.Orchestrator.TeardownDelay)
	assert.Equal(t, 0.3, cfg.Engagement.LikeProbability)
	assert.False(t, cfg.Database.Enabled())
	assert.NoError(t, cfg.Validate())
}

func TestHumanoidDefaultsMatchPackageDefaults(t *testing.T) {
	cfg := NewDefaultConfig()

	want := humanoid.DefaultConfig()
	if diff := cmp.Diff(want, cfg.Humanoid, cmpopts.IgnoreFields(humanoid.Config{}, "Rng")); diff != "" {
		t.Errorf("humanoid defaults mismatch (-want +got):\n%s", diff)
	}
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"NoAccounts", func(c *Config) { c.Run.Accounts = nil }, "run.accounts"},
		{"ZeroItems", func(c *Config) { c.Run.MaxItemsPerAccount = 0 }, "run.max_items_per_account"},
		{"BadLogFormat", func(c *Config) { c.Logger.Format = "xml" }, "logger.format"},
		{"BadHumanoidRange", func(c *Config) {
			c.Humanoid.Timing.Reading = humanoid.DurationRange{Min: 2 * time.Second, Max: time.Second}
		}, "humanoid.timing.reading"},
		{"BadLikeProbability", func(c *Config) { c.Engagement.LikeProbability = -0.1 }, "like_probability"},
		{"EmptySelector", func(c *Config) { c.Content.Selectors.Retweet = "" }, "content."},
		{"NegativeTeardown", func(c *Config) { c.Orchestrator.TeardownDelay = -time.Second }, "orchestrator.teardown_delay"},
		{"DatabaseWithoutTimeout", func(c *Config) {
			c.Database.URL = "postgres://localhost/boost"
			c.Database.Timeout = 0
		}, "database.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// -- Viper Loading Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("FileOverridesDefaults", func(t *testing.T) {
		yamlInput := `
browser:
  flavor: chrome
  headless: true
  navigation_interval: 500ms
humanoid:
  timing:
    reading:
      min: 2s
      max: 3s
run:
  accounts:
    - "@newsdesk"
    - https://x.com/other
  max_items_per_account: 3
  seed: 42
`
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBufferString(yamlInput)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, "chrome", cfg.Browser.Flavor)
		assert.True(t, cfg.Browser.Headless)
		assert.Equal(t, 500*time.Millisecond, cfg.Browser.NavigationInterval)
		assert.Equal(t, humanoid.DurationRange{Min: 2 * time.Second, Max: 3 * time.Second}, cfg.Humanoid.Timing.Reading)
		// Untouched siblings keep their defaults.
		assert.Equal(t, humanoid.DefaultConfig().Timing.Micro, cfg.Humanoid.Timing.Micro)
		assert.Equal(t, []string{"@newsdesk", "https://x.com/other"}, cfg.Run.Accounts)
		assert.Equal(t, 3, cfg.Run.MaxItemsPerAccount)
		assert.Equal(t, int64(42), cfg.Run.Seed)
		assert.Equal(t, "info", cfg.Logger.Level)
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("run.max_items_per_account", 0)

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "run.max_items_per_account")
	})

	t.Run("DatabaseURLFromEnvironment", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBufferString("database:\n  url: postgres://configfile/db\n")))

		t.Setenv("BOOST_DATABASE_URL", "postgres://envvar/db")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "postgres://envvar/db", cfg.Database.URL)
		assert.True(t, cfg.Database.Enabled())
	})
}
