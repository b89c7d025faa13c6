// internal/browser/cdp_session.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// CDPSession implements Session over a chromedp tab.
type CDPSession struct {
	// ctx is the chromedp tab context. Operational contexts are combined
	// with it so the CDP target is always reachable.
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	logger        *zap.Logger
	limiter       *rate.Limiter
	actionTimeout time.Duration
	closeTimeout  time.Duration
	pollInterval  time.Duration

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

var _ Session = (*CDPSession)(nil)

func newCDPSession(tabCtx context.Context, cancel, allocCancel context.CancelFunc, cfg Config, logger *zap.Logger) *CDPSession {
	limit := rate.Inf
	if cfg.NavigationInterval > 0 {
		limit = rate.Every(cfg.NavigationInterval)
	}
	return &CDPSession{
		ctx:           tabCtx,
		cancel:        cancel,
		allocCancel:   allocCancel,
		logger:        logger.Named("cdp_session"),
		limiter:       rate.NewLimiter(limit, 1),
		actionTimeout: cfg.ActionTimeout,
		closeTimeout:  cfg.CloseTimeout,
		pollInterval:  cfg.WaitPollInterval,
	}
}

// run executes actions on the tab, bounded by both ctx and the action timeout.
func (s *CDPSession) run(ctx context.Context, actions ...chromedp.Action) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	if s.actionTimeout > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, s.actionTimeout)
		defer cancelTimeout()
	}
	return chromedp.Run(runCtx, actions...)
}

func (s *CDPSession) Navigate(ctx context.Context, url string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("navigation to %s not started: %w", url, err)
	}
	s.logger.Debug("Navigating", zap.String("url", url))
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (s *CDPSession) RunScript(ctx context.Context, code string) error {
	if err := s.run(ctx, chromedp.Evaluate(code, nil)); err != nil {
		return fmt.Errorf("script evaluation failed: %w", err)
	}
	return nil
}

func (s *CDPSession) Find(ctx context.Context, selector string) ([]Element, error) {
	var nodes []*cdp.Node
	// AtLeast(0) makes the query return immediately when nothing matches.
	if err := s.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("query %q failed: %w", selector, err)
	}
	elements := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		elements = append(elements, &cdpElement{session: s, node: n})
	}
	return elements, nil
}

func (s *CDPSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) (Element, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		elements, err := s.Find(ctx, selector)
		if err != nil {
			return nil, err
		}
		if len(elements) > 0 {
			return elements[0], nil
		}
		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("%w: %q after %s", ErrWaitTimeout, selector, timeout)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close shuts the browser down gracefully, giving up when ctx expires or
// browser.close_timeout elapses, whichever comes first.
func (s *CDPSession) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.logger.Debug("Closing browser session")

		s.closeErr = awaitClose(ctx, s.closeTimeout, func() error { return chromedp.Cancel(s.ctx) })
		s.cancel()
		if s.allocCancel != nil {
			s.allocCancel()
		}
	})
	return s.closeErr
}

// awaitClose runs shutdown in the background and waits for it, bounded by
// ctx and, when positive, by timeout.
func awaitClose(ctx context.Context, timeout time.Duration, shutdown func() error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() { done <- shutdown() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to close browser: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("browser did not close in time: %w", ctx.Err())
	}
}

type cdpElement struct {
	session *CDPSession
	node    *cdp.Node
}

func (e *cdpElement) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

// Attribute reads the live DOM property, so href comes back absolute.
func (e *cdpElement) Attribute(ctx context.Context, name string) (string, error) {
	var value string
	if err := e.session.run(ctx, chromedp.JavascriptAttribute(e.ids(), name, &value, chromedp.ByNodeID)); err != nil {
		return "", fmt.Errorf("reading %q of <%s>: %w", name, e.node.LocalName, err)
	}
	return value, nil
}

const matchesJS = `function(selector) { return this.matches(selector); }`

func (e *cdpElement) Matches(ctx context.Context, selector string) (bool, error) {
	var matched bool
	err := e.session.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(e.node.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		return chromedp.CallFunctionOn(matchesJS, &matched,
			func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
				return p.WithObjectID(obj.ObjectID)
			},
			selector,
		).Do(ctx)
	}))
	if err != nil {
		return false, fmt.Errorf("matching <%s> against %q: %w", e.node.LocalName, selector, err)
	}
	return matched, nil
}

func (e *cdpElement) Click(ctx context.Context) error {
	if err := e.session.run(ctx, chromedp.Click(e.ids(), chromedp.ByNodeID)); err != nil {
		return fmt.Errorf("click on <%s> failed: %w", e.node.LocalName, err)
	}
	return nil
}
