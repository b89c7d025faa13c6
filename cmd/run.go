// File: cmd/run.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/boost-cli/internal/browser"
	"github.com/xkilldash9x/boost-cli/internal/config"
	"github.com/xkilldash9x/boost-cli/internal/content"
	"github.com/xkilldash9x/boost-cli/internal/engagement"
	"github.com/xkilldash9x/boost-cli/internal/humanoid"
	"github.com/xkilldash9x/boost-cli/internal/observability"
	"github.com/xkilldash9x/boost-cli/internal/orchestrator"
	"github.com/xkilldash9x/boost-cli/internal/reporting"
	"github.com/xkilldash9x/boost-cli/internal/store"
)

// runStore is the part of store.Store the run command needs.
type runStore interface {
	EnsureSchema(ctx context.Context) error
	SaveRun(ctx context.Context, report reporting.RunReport) error
}

// Swapped out in tests.
var (
	acquireSession = func(ctx context.Context, cfg browser.Config, logger *zap.Logger) (browser.Session, error) {
		return browser.NewManager(cfg, logger).Acquire(ctx)
	}
	newExecutor = func(session browser.Session) humanoid.Executor {
		return browser.NewSessionExecutorAdapter(session)
	}
	openStore = openPostgresStore
)

func newRunCmd(v *viper.Viper) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Discover recent posts on each account and retweet the ones not yet retweeted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				return err
			}
			return runBatch(cmd.Context(), cfg, cmd.OutOrStdout(), observability.GetLogger())
		},
	}

	flags := runCmd.Flags()
	flags.StringSlice("account", nil, "account URL, @handle or handle to visit (repeatable)")
	flags.Int("max-items", 0, "maximum posts to take from each account")
	flags.Int64("seed", 0, "seed for the random source, 0 picks one from the clock")
	flags.String("report", "", "write a JSON report of the run to this path")
	flags.Bool("headless", false, "run the browser without a window")
	flags.String("profile", "", "browser profile directory or display name")
	flags.Bool("close-running", false, "terminate running browsers of the configured flavor before launch")

	bindings := map[string]string{
		"run.accounts":              "account",
		"run.max_items_per_account": "max-items",
		"run.seed":                  "seed",
		"run.report_path":           "report",
		"browser.headless":          "headless",
		"browser.profile":           "profile",
		"browser.close_running":     "close-running",
	}
	for key, flag := range bindings {
		// Only a changed flag overrides the file and environment.
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("binding --%s: %v", flag, err))
		}
	}
	return runCmd
}

// runBatch wires one session through the behaviour engine and runs a
// single batch. Reporting and persistence happen even after an interrupt.
func runBatch(ctx context.Context, cfg *config.Config, out io.Writer, logger *zap.Logger) error {
	accounts, err := content.ParseAccounts(cfg.Run.Accounts)
	if err != nil {
		return fmt.Errorf("invalid account list: %w", err)
	}

	reporters, err := buildReporters(cfg.Run, out)
	if err != nil {
		return err
	}
	defer func() {
		if err := reporters.Close(); err != nil {
			logger.Warn("Failed to close report output", zap.Error(err))
		}
	}()

	session, err := acquireSession(ctx, cfg.Browser, logger)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}

	humanoidCfg := cfg.Humanoid
	if cfg.Run.Seed != 0 {
		humanoidCfg.Rng = rand.New(rand.NewSource(cfg.Run.Seed))
	}
	h := humanoid.New(humanoidCfg, logger, newExecutor(session))

	discoverer := content.NewDiscoverer(session, h, cfg.Content, logger)
	engine := engagement.NewEngine(session, h, cfg.Content.Selectors, cfg.Engagement, logger)
	orch, err := orchestrator.New(session, discoverer, engine, h, cfg.Orchestrator, logger)
	if err != nil {
		closeSession(ctx, session, cfg.Orchestrator.CloseTimeout, logger)
		return err
	}

	result, runErr := orch.Run(ctx, accounts, cfg.Run.MaxItemsPerAccount)
	if result == nil {
		return runErr
	}

	report := reporting.NewRunReport(result)
	if err := reporters.Report(report); err != nil {
		logger.Warn("Failed to write report", zap.Error(err))
	}
	if cfg.Database.Enabled() {
		persistRun(ctx, cfg.Database, report, logger)
	}
	return runErr
}

// closeSession releases a session no orchestrator took ownership of.
func closeSession(ctx context.Context, session browser.Session, timeout time.Duration, logger *zap.Logger) {
	closeCtx, cancel := context.WithTimeout(browser.Detach(ctx), timeout)
	defer cancel()
	if err := session.Close(closeCtx); err != nil {
		logger.Warn("Failed to release browser session", zap.Error(err))
	}
}

func buildReporters(run config.RunConfig, out io.Writer) (reporting.Multi, error) {
	// Hide any Close on out; stdout belongs to the process.
	reporters := reporting.Multi{reporting.NewConsoleReporter(struct{ io.Writer }{out})}
	if run.ReportPath != "" {
		r, err := reporting.New("json", run.ReportPath)
		if err != nil {
			return nil, err
		}
		reporters = append(reporters, r)
	}
	return reporters, nil
}

// persistRun saves the report on a context detached from ctx. A failure is
// logged, the run itself already happened.
func persistRun(ctx context.Context, cfg config.DatabaseConfig, report reporting.RunReport, logger *zap.Logger) {
	dbCtx, cancel := context.WithTimeout(browser.Detach(ctx), cfg.Timeout)
	defer cancel()

	s, cleanup, err := openStore(dbCtx, cfg, logger)
	if err != nil {
		logger.Warn("Run history unavailable", zap.Error(err))
		return
	}
	defer cleanup()

	if err := s.EnsureSchema(dbCtx); err != nil {
		logger.Warn("Run history unavailable", zap.Error(err))
		return
	}
	if err := s.SaveRun(dbCtx, report); err != nil {
		logger.Warn("Failed to save run history", zap.Error(err))
		return
	}
	logger.Info("Run history saved", zap.String("run_id", report.RunID))
}

func openPostgresStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (runStore, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s, err := store.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		logger.Debug("Database connection pool closed.")
	}
	return s, cleanup, nil
}
