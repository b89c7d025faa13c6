// internal/browser/browsertest/fake_session.go

// Package browsertest provides an in-memory browser.Session whose pages are
// scripted by tests and whose every call is recorded.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xkilldash9x/boost-cli/internal/browser"
	"github.com/xkilldash9x/boost-cli/internal/humanoid"
)

// FakeElement is a scripted element.
type FakeElement struct {
	Attrs    map[string]string
	AttrErr  error
	ClickErr error
	// OnClick runs after a successful click, typically to mutate the page.
	OnClick func()

	mu        sync.Mutex
	clicks    int
	selectors map[string]bool
}

// NewLink returns an anchor element with the given href.
func NewLink(href string) *FakeElement {
	return &FakeElement{Attrs: map[string]string{"href": href}}
}

// NewElement returns an element with the given attributes; pairs are name, value.
func NewElement(pairs ...string) *FakeElement {
	attrs := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		attrs[pairs[i]] = pairs[i+1]
	}
	return &FakeElement{Attrs: attrs}
}

func (e *FakeElement) Attribute(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if e.AttrErr != nil {
		return "", e.AttrErr
	}
	return e.Attrs[name], nil
}

func (e *FakeElement) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.ClickErr != nil {
		return e.ClickErr
	}
	e.mu.Lock()
	e.clicks++
	e.mu.Unlock()
	if e.OnClick != nil {
		e.OnClick()
	}
	return nil
}

// Matches reports whether the element was added under selector or under
// any entry of a comma-separated selector list.
func (e *FakeElement) Matches(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, part := range splitSelector(selector) {
		if e.selectors[part] {
			return true, nil
		}
	}
	return false, nil
}

func (e *FakeElement) tag(selector string, on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selectors == nil {
		e.selectors = make(map[string]bool)
	}
	if on {
		e.selectors[selector] = true
	} else {
		delete(e.selectors, selector)
	}
}

// Clicks reports how many successful clicks the element received.
func (e *FakeElement) Clicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}

// Page maps selectors to the elements they match. Elements sit in
// document order, which is the order they were first added.
type Page struct {
	mu       sync.Mutex
	elements map[string][]*FakeElement
	position map[*FakeElement]int
}

// Add appends els to what selector matches.
func (p *Page) Add(selector string, els ...*FakeElement) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.elements == nil {
		p.elements = make(map[string][]*FakeElement)
		p.position = make(map[*FakeElement]int)
	}
	for _, el := range els {
		if _, ok := p.position[el]; !ok {
			p.position[el] = len(p.position)
		}
		el.tag(selector, true)
	}
	p.elements[selector] = append(p.elements[selector], els...)
	return p
}

// Remove drops every element matching selector.
func (p *Page) Remove(selector string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, el := range p.elements[selector] {
		el.tag(selector, false)
	}
	delete(p.elements, selector)
}

// match resolves a selector or a comma-separated selector list, returning
// each element once in document order.
func (p *Page) match(selector string) []*FakeElement {
	p.mu.Lock()
	defer p.mu.Unlock()

	parts := splitSelector(selector)
	if len(parts) == 1 {
		return append([]*FakeElement(nil), p.elements[parts[0]]...)
	}

	seen := make(map[*FakeElement]bool)
	var out []*FakeElement
	for _, part := range parts {
		for _, el := range p.elements[part] {
			if !seen[el] {
				seen[el] = true
				out = append(out, el)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return p.position[out[i]] < p.position[out[j]] })
	return out
}

func splitSelector(selector string) []string {
	parts := strings.Split(selector, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// FakeSession implements browser.Session and humanoid.Executor. Sleeps
// are recorded and return immediately; WaitFor never blocks and times
// out at once when nothing matches.
type FakeSession struct {
	mu sync.Mutex

	pages   map[string]*Page
	current *Page

	// NavigateErr, keyed by URL, fails navigation to that URL.
	NavigateErr map[string]error
	// FindErr, keyed by selector, fails queries for that selector.
	FindErr map[string]error
	// PanicOn, keyed by selector, makes a query on the current page panic.
	PanicOn   map[string]bool
	ScriptErr error
	CloseErr  error

	Navigations []string
	Queries     []string
	Scripts     []string
	Sleeps      []time.Duration
	closes      int
}

var (
	_ browser.Session   = (*FakeSession)(nil)
	_ humanoid.Executor = (*FakeSession)(nil)
)

func NewFakeSession() *FakeSession {
	return &FakeSession{
		pages:       make(map[string]*Page),
		NavigateErr: make(map[string]error),
		FindErr:     make(map[string]error),
		PanicOn:     make(map[string]bool),
	}
}

// Page returns the page served at url, creating it on first use.
func (s *FakeSession) Page(url string) *Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[url]
	if !ok {
		p = &Page{}
		s.pages[url] = p
	}
	return p
}

func (s *FakeSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Navigations = append(s.Navigations, url)
	if err := s.NavigateErr[url]; err != nil {
		s.current = nil
		return err
	}
	p, ok := s.pages[url]
	if !ok {
		p = &Page{}
		s.pages[url] = p
	}
	s.current = p
	return nil
}

func (s *FakeSession) RunScript(ctx context.Context, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Scripts = append(s.Scripts, code)
	return s.ScriptErr
}

// ExecuteScript lets the session double as the humanoid's executor.
func (s *FakeSession) ExecuteScript(ctx context.Context, script string) error {
	return s.RunScript(ctx, script)
}

func (s *FakeSession) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.Sleeps = append(s.Sleeps, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *FakeSession) Find(ctx context.Context, selector string) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.Queries = append(s.Queries, selector)
	page := s.current
	err := s.FindErr[selector]
	panics := s.PanicOn[selector]
	s.mu.Unlock()

	if panics {
		panic(fmt.Sprintf("browsertest: scripted panic on %q", selector))
	}
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, errors.New("browsertest: no page loaded")
	}
	matches := page.match(selector)
	out := make([]browser.Element, 0, len(matches))
	for _, m := range matches {
		out = append(out, m)
	}
	return out, nil
}

func (s *FakeSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) (browser.Element, error) {
	found, err := s.Find(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %q after %s", browser.ErrWaitTimeout, selector, timeout)
	}
	return found[0], nil
}

func (s *FakeSession) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return s.CloseErr
}

// Closes reports how many times Close was called.
func (s *FakeSession) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// QueryCount reports how many times selector was queried.
func (s *FakeSession) QueryCount(selector string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, q := range s.Queries {
		if q == selector {
			n++
		}
	}
	return n
}
