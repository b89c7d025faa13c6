// internal/browser/session.go
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrWaitTimeout is returned by WaitFor when no matching element appeared in time.
var ErrWaitTimeout = errors.New("browser: timed out waiting for element")

// ErrSessionClosed is returned by operations on a released session.
var ErrSessionClosed = errors.New("browser: session closed")

// Element is a handle to one node of the live document.
type Element interface {
	// Attribute returns the named attribute or DOM property. A missing
	// attribute yields an empty string and no error.
	Attribute(ctx context.Context, name string) (string, error)
	// Matches reports whether the element itself matches selector.
	Matches(ctx context.Context, selector string) (bool, error)
	Click(ctx context.Context) error
}

// Session is a single, exclusively owned, pre-authenticated browser tab.
// It is not safe for concurrent use.
type Session interface {
	Navigate(ctx context.Context, url string) error
	// RunScript evaluates code in the page, discarding the result.
	RunScript(ctx context.Context, code string) error
	// Find returns every element currently matching selector, possibly none.
	Find(ctx context.Context, selector string) ([]Element, error)
	// WaitFor polls until selector matches and returns the first match, or
	// fails with ErrWaitTimeout once timeout elapses.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) (Element, error)
	// Close releases the tab and the browser process behind it. Calling
	// Close more than once is safe; only the first call does work.
	Close(ctx context.Context) error
}
