// internal/content/discovery.go
package content

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/boost-cli/internal/browser"
	"github.com/xkilldash9x/boost-cli/internal/humanoid"
)

// ErrContentNotLoaded is returned when a timeline shows no post in time.
var ErrContentNotLoaded = errors.New("content did not load")

// pinnedSlots is how many leading references are treated as pinned and skipped.
const pinnedSlots = 1

// Discoverer collects recent post references from account timelines.
type Discoverer struct {
	session  browser.Session
	humanoid *humanoid.Humanoid
	cfg      Config
	logger   *zap.Logger
}

func NewDiscoverer(session browser.Session, h *humanoid.Humanoid, cfg Config, logger *zap.Logger) *Discoverer {
	return &Discoverer{
		session:  session,
		humanoid: h,
		cfg:      cfg,
		logger:   logger.Named("discovery"),
	}
}

// Discover loads the account's timeline, skims it, and returns at most
// maxItems references in the order they are rendered, the leading one
// excluded.
func (d *Discoverer) Discover(ctx context.Context, account Account, maxItems int) ([]Reference, error) {
	logger := d.logger.With(zap.String("account", account.URL))
	logger.Info("Visiting timeline")

	if err := d.session.Navigate(ctx, account.URL); err != nil {
		return nil, fmt.Errorf("failed to load timeline %s: %w", account.URL, err)
	}
	if err := d.humanoid.Delay(ctx, humanoid.CategoryReading); err != nil {
		return nil, err
	}

	if _, err := d.session.WaitFor(ctx, d.cfg.Selectors.Post, d.cfg.LoadTimeout); err != nil {
		if errors.Is(err, browser.ErrWaitTimeout) {
			return nil, fmt.Errorf("%w: no post on %s within %s", ErrContentNotLoaded, account.URL, d.cfg.LoadTimeout)
		}
		return nil, fmt.Errorf("waiting for posts on %s: %w", account.URL, err)
	}

	if err := d.humanoid.ScrollTimeline(ctx); err != nil {
		return nil, fmt.Errorf("scrolling timeline %s: %w", account.URL, err)
	}

	links, err := d.session.Find(ctx, d.cfg.Selectors.PostLink)
	if err != nil {
		return nil, fmt.Errorf("enumerating posts on %s: %w", account.URL, err)
	}

	hrefs := make([]string, 0, len(links))
	for _, link := range links {
		href, err := link.Attribute(ctx, "href")
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Elements can go stale as the timeline re-renders.
			logger.Debug("Skipping unreadable link", zap.Error(err))
			continue
		}
		hrefs = append(hrefs, href)
	}

	refs := Select(hrefs, maxItems)
	logger.Info("Found posts", zap.Int("count", len(refs)), zap.Int("links", len(hrefs)))
	return refs, nil
}

// Select canonicalizes raw links, keeps the first occurrence of each post,
// drops the leading (pinned) post and truncates to maxItems. Links that
// are not posts are ignored.
func Select(raw []string, maxItems int) []Reference {
	refs := dropLeading(dedupe(canonicalizeAll(raw)), pinnedSlots)
	if maxItems < 0 {
		maxItems = 0
	}
	if len(refs) > maxItems {
		refs = refs[:maxItems]
	}
	return refs
}

func canonicalizeAll(raw []string) []Reference {
	out := make([]Reference, 0, len(raw))
	for _, r := range raw {
		ref, err := Canonicalize(r)
		if err != nil {
			continue
		}
		out = append(out, ref)
	}
	return out
}

// dedupe keeps the first occurrence of each reference, preserving order.
func dedupe(refs []Reference) []Reference {
	seen := make(map[Reference]struct{}, len(refs))
	out := make([]Reference, 0, len(refs))
	for _, r := range refs {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// dropLeading removes the first n references unconditionally. The first
// rendered post is assumed pinned; no pin detection is attempted.
func dropLeading(refs []Reference, n int) []Reference {
	if len(refs) <= n {
		return []Reference{}
	}
	return refs[n:]
}
