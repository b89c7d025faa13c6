// internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Manager launches the browser against a persistent, pre-authenticated
// profile and hands out the single session a run works with.
type Manager struct {
	cfg    Config
	logger *zap.Logger
}

func NewManager(cfg Config, logger *zap.Logger) *Manager {
	return &Manager{cfg: cfg, logger: logger.Named("browser_manager")}
}

// defaultExecPath returns a well-known Edge location. Chrome is left to
// chromedp's own lookup.
func defaultExecPath(flavor string) string {
	if flavor != FlavorEdge {
		return ""
	}
	switch runtime.GOOS {
	case "windows":
		return `C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`
	case "darwin":
		return "/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge"
	default:
		return "microsoft-edge"
	}
}

// allocatorOptions assembles the launch flags for the given profile.
func (m *Manager) allocatorOptions(root string, profile Profile) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	opts = append(opts,
		chromedp.Flag("headless", m.cfg.Headless),
		chromedp.Flag("start-maximized", !m.cfg.Headless),
		chromedp.UserDataDir(root),
		chromedp.Flag("profile-directory", profile.Dir),
	)

	execPath := m.cfg.ExecPath
	if execPath == "" {
		execPath = defaultExecPath(m.cfg.Flavor)
	}
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}

	// Custom arguments from config.yaml, as "--name=value" or "--name".
	for _, arg := range m.cfg.Args {
		parts := strings.SplitN(arg, "=", 2)
		flagName := strings.TrimPrefix(parts[0], "--")
		if len(parts) == 2 {
			opts = append(opts, chromedp.Flag(flagName, parts[1]))
		} else {
			opts = append(opts, chromedp.Flag(flagName, true))
		}
	}

	return opts
}

// Acquire resolves the profile, launches the browser and returns a ready
// session. The browser process is tied to the returned session rather
// than to ctx, so an interrupt still leaves time for an orderly Close.
func (m *Manager) Acquire(ctx context.Context) (*CDPSession, error) {
	root, err := m.cfg.UserDataRoot()
	if err != nil {
		return nil, err
	}
	profile, err := ResolveProfile(root, m.cfg.Profile)
	if err != nil {
		return nil, err
	}

	if m.cfg.CloseRunning {
		if _, err := CloseRunning(ctx, m.cfg.Flavor, m.logger); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			m.logger.Warn("Could not close running browsers", zap.Error(err))
		}
	}
	m.logger.Info("Found browser profile",
		zap.String("profile", profile.Name),
		zap.String("path", profile.Path))

	allocCtx, allocCancel := chromedp.NewExecAllocator(Detach(ctx), m.allocatorOptions(root, profile)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(m.logger.Sugar().Debugf))

	// The first Run on tabCtx launches the process and binds it to tabCtx,
	// so the startup bound is applied around the call rather than to it.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(tabCtx) }()

	startCtx, cancelStart := context.WithTimeout(ctx, m.cfg.StartupTimeout)
	defer cancelStart()
	select {
	case err := <-started:
		if err != nil {
			tabCancel()
			allocCancel()
			return nil, fmt.Errorf("browser failed to start or respond: %w", err)
		}
	case <-startCtx.Done():
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("browser did not start within %s: %w", m.cfg.StartupTimeout, startCtx.Err())
	}

	m.logger.Info("Browser launched", zap.String("flavor", m.cfg.Flavor), zap.Bool("headless", m.cfg.Headless))
	return newCDPSession(tabCtx, tabCancel, allocCancel, m.cfg, m.logger), nil
}
