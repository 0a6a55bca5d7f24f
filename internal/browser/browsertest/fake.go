// Package browsertest provides an in-memory browser.Session for tests.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"letraz-autoapply/internal/browser"
)

// Element is a scripted DOM node
type Element struct {
	TextValue string
	Props     map[string]string
	Children  map[string][]*Element
	HTMLValue string
	ClickErr  error
	OnClick   func()

	mu     sync.Mutex
	clicks int
	files  []string
}

func (e *Element) Element(_ context.Context, selector string) (browser.Element, error) {
	if kids := e.Children[selector]; len(kids) > 0 {
		return kids[0], nil
	}
	return nil, fmt.Errorf("%w: %s", browser.ErrElementNotFound, selector)
}

func (e *Element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	e.clicks++
	e.mu.Unlock()
	if e.ClickErr != nil {
		return e.ClickErr
	}
	if e.OnClick != nil {
		e.OnClick()
	}
	return nil
}

func (e *Element) Text(context.Context) (string, error) {
	return e.TextValue, nil
}

func (e *Element) Property(_ context.Context, name string) (string, error) {
	return e.Props[name], nil
}

func (e *Element) SetFiles(ctx context.Context, paths ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.files = append([]string(nil), paths...)
	return nil
}

// Files returns the paths last attached to the element
func (e *Element) Files() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.files
}

// Clicks returns how many times the element was clicked
func (e *Element) Clicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}

// Session is a scripted browser.Session. The current DOM is a flat map of
// selector to matching elements; hooks let a test react to navigation and
// in-page evaluation.
type Session struct {
	// OnNavigate runs after the URL changes and may rewrite the DOM
	OnNavigate func(s *Session, url string) error
	// OnEvaluate answers Evaluate calls
	OnEvaluate func(s *Session, js string, args []interface{}) (interface{}, error)
	// OnCondition answers WaitForCondition; false makes the wait time out
	OnCondition func(s *Session, js string) bool

	mu        sync.Mutex
	url       string
	dom       map[string][]*Element
	invisible map[string]bool
	typed     map[string]string
	calls     []string
}

// NewSession returns an empty page at about:blank
func NewSession() *Session {
	return &Session{
		url:       "about:blank",
		dom:       make(map[string][]*Element),
		invisible: make(map[string]bool),
		typed:     make(map[string]string),
	}
}

// Set replaces the elements matching selector
func (s *Session) Set(selector string, els ...*Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(els) == 0 {
		delete(s.dom, selector)
		return
	}
	s.dom[selector] = els
}

// Hide keeps selector present but never visible
func (s *Session) Hide(selector string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invisible[selector] = true
}

// SetURL changes the current URL without recording a navigation
func (s *Session) SetURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.url = url
}

// Calls returns the ordered call log, e.g. "navigate https://..." or "click sel"
func (s *Session) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Count returns how many logged calls start with prefix
func (s *Session) Count(prefix string) int {
	n := 0
	for _, c := range s.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Navigations returns the URLs navigated to, in order
func (s *Session) Navigations() []string {
	var urls []string
	for _, c := range s.Calls() {
		if url, ok := strings.CutPrefix(c, "navigate "); ok {
			urls = append(urls, url)
		}
	}
	return urls
}

// Typed returns everything typed into selector
func (s *Session) Typed(selector string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typed[selector]
}

func (s *Session) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *Session) first(selector string) (*Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	els := s.dom[selector]
	if len(els) == 0 {
		return nil, false
	}
	return els[0], true
}

func (s *Session) Navigate(ctx context.Context, url string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.record("navigate " + url)
	s.SetURL(url)
	if s.OnNavigate != nil {
		return s.OnNavigate(s, url)
	}
	return nil
}

func (s *Session) CurrentURL(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url, nil
}

func (s *Session) WaitForSelector(ctx context.Context, selector string, opts browser.WaitOptions) (browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.record("wait " + selector)
	el, ok := s.first(selector)
	s.mu.Lock()
	hidden := s.invisible[selector]
	s.mu.Unlock()
	if !ok || (opts.Visible && hidden) {
		return nil, fmt.Errorf("%w: %s", browser.ErrTimeout, selector)
	}
	return el, nil
}

func (s *Session) Query(ctx context.Context, selector string) (browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.record("query " + selector)
	el, ok := s.first(selector)
	if !ok {
		return nil, fmt.Errorf("%w: %s", browser.ErrElementNotFound, selector)
	}
	return el, nil
}

func (s *Session) QueryAll(ctx context.Context, selector string) ([]browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.record("queryAll " + selector)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]browser.Element, 0, len(s.dom[selector]))
	for _, el := range s.dom[selector] {
		out = append(out, el)
	}
	return out, nil
}

func (s *Session) Evaluate(ctx context.Context, js string, args ...interface{}) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.record("eval")
	if s.OnEvaluate != nil {
		return s.OnEvaluate(s, js, args)
	}
	return nil, nil
}

func (s *Session) Type(ctx context.Context, selector, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.record("type " + selector)
	if _, ok := s.first(selector); !ok {
		return fmt.Errorf("%w: %s", browser.ErrElementNotFound, selector)
	}
	s.mu.Lock()
	s.typed[selector] += text
	s.mu.Unlock()
	return nil
}

func (s *Session) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.record("click " + selector)
	el, ok := s.first(selector)
	if !ok {
		return fmt.Errorf("%w: %s", browser.ErrElementNotFound, selector)
	}
	return el.Click(ctx)
}

func (s *Session) WaitForCondition(ctx context.Context, js string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.record("condition")
	if s.OnCondition != nil && !s.OnCondition(s, js) {
		return fmt.Errorf("condition never held: %w", browser.ErrTimeout)
	}
	return nil
}
