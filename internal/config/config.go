// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/boost-cli/internal/browser"
	"github.com/xkilldash9x/boost-cli/internal/content"
	"github.com/xkilldash9x/boost-cli/internal/engagement"
	"github.com/xkilldash9x/boost-cli/internal/humanoid"
	"github.com/xkilldash9x/boost-cli/internal/orchestrator"
)

// DefaultAccount is visited when no accounts are configured.
const DefaultAccount = "https://x.com/Timesofgaza"

// Config is the root of every setting the CLI reads.
type Config struct {
	Logger       LoggerConfig        `mapstructure:"logger" yaml:"logger"`
	Browser      browser.Config      `mapstructure:"browser" yaml:"browser"`
	Humanoid     humanoid.Config     `mapstructure:"humanoid" yaml:"humanoid"`
	Content      content.Config      `mapstructure:"content" yaml:"content"`
	Engagement   engagement.Config   `mapstructure:"engagement" yaml:"engagement"`
	Orchestrator orchestrator.Config `mapstructure:"orchestrator" yaml:"orchestrator"`
	Run          RunConfig           `mapstructure:"run" yaml:"run"`
	Database     DatabaseConfig      `mapstructure:"database" yaml:"database"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color settings for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// RunConfig describes one batch.
type RunConfig struct {
	Accounts           []string `mapstructure:"accounts" yaml:"accounts"`
	MaxItemsPerAccount int      `mapstructure:"max_items_per_account" yaml:"max_items_per_account"`
	// Seed fixes the random source when non-zero.
	Seed int64 `mapstructure:"seed" yaml:"seed"`
	// ReportPath receives a JSON report of the run when set.
	ReportPath string `mapstructure:"report_path" yaml:"report_path"`
}

// DatabaseConfig enables run history persistence when URL is set.
type DatabaseConfig struct {
	URL     string        `mapstructure:"url" yaml:"url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Enabled reports whether run history should be persisted.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for every configuration parameter.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "boost-cli")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "red")

	// -- Browser --
	b := browser.DefaultConfig()
	v.SetDefault("browser.flavor", b.Flavor)
	v.SetDefault("browser.headless", b.Headless)
	v.SetDefault("browser.exec_path", b.ExecPath)
	v.SetDefault("browser.user_data_dir", b.UserDataDir)
	v.SetDefault("browser.profile", b.Profile)
	v.SetDefault("browser.args", []string{})
	v.SetDefault("browser.close_running", b.CloseRunning)
	v.SetDefault("browser.startup_timeout", b.StartupTimeout)
	v.SetDefault("browser.action_timeout", b.ActionTimeout)
	v.SetDefault("browser.close_timeout", b.CloseTimeout)
	v.SetDefault("browser.navigation_interval", b.NavigationInterval)
	v.SetDefault("browser.wait_poll_interval", b.WaitPollInterval)

	// Initialize all Humanoid defaults using the centralized function in humanoid_config.go.
	setHumanoidDefaults(v)

	// -- Content --
	c := content.DefaultConfig()
	v.SetDefault("content.load_timeout", c.LoadTimeout)
	v.SetDefault("content.selectors.post", c.Selectors.Post)
	v.SetDefault("content.selectors.post_link", c.Selectors.PostLink)
	v.SetDefault("content.selectors.retweet", c.Selectors.Retweet)
	v.SetDefault("content.selectors.unretweet", c.Selectors.Unretweet)
	v.SetDefault("content.selectors.confirm", c.Selectors.Confirm)
	v.SetDefault("content.selectors.like", c.Selectors.Like)
	v.SetDefault("content.selectors.engaged_marker", c.Selectors.EngagedMarker)

	// -- Engagement --
	e := engagement.DefaultConfig()
	v.SetDefault("engagement.load_timeout", e.LoadTimeout)
	v.SetDefault("engagement.control_timeout", e.ControlTimeout)
	v.SetDefault("engagement.confirm_timeout", e.ConfirmTimeout)
	v.SetDefault("engagement.like_probability", e.LikeProbability)

	// -- Orchestrator --
	o := orchestrator.DefaultConfig()
	v.SetDefault("orchestrator.teardown_delay", o.TeardownDelay)
	v.SetDefault("orchestrator.close_timeout", o.CloseTimeout)

	// -- Run --
	v.SetDefault("run.accounts", []string{DefaultAccount})
	v.SetDefault("run.max_items_per_account", 10)
	v.SetDefault("run.seed", 0)
	v.SetDefault("run.report_path", "")

	// -- Database --
	v.SetDefault("database.url", "")
	v.SetDefault("database.timeout", "10s")
}

// NewConfigFromViper unmarshals v and validates the result.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// The database URL usually carries credentials, keep it out of files.
	v.BindEnv("database.url", "BOOST_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("BOOST_DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.Logger.Validate(); err != nil {
		return err
	}
	if err := c.Browser.Validate(); err != nil {
		return err
	}
	if err := c.Humanoid.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Engagement.Validate(); err != nil {
		return err
	}
	if err := c.Orchestrator.Validate(); err != nil {
		return err
	}
	if err := c.Run.Validate(); err != nil {
		return err
	}
	if c.Database.Enabled() && c.Database.Timeout <= 0 {
		return errors.New("database.timeout must be positive when database.url is set")
	}
	return nil
}

func (l LoggerConfig) Validate() error {
	switch l.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be 'console' or 'json', got %q", l.Format)
	}
	return nil
}

func (r RunConfig) Validate() error {
	if len(r.Accounts) == 0 {
		return errors.New("run.accounts must list at least one account")
	}
	if r.MaxItemsPerAccount <= 0 {
		return errors.New("run.max_items_per_account must be a positive integer")
	}
	return nil
}
