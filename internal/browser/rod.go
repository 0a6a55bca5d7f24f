package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
)

const (
	// conditionPollInterval is how often WaitForCondition re-evaluates its predicate
	conditionPollInterval = 200 * time.Millisecond

	// DefaultActionTimeout bounds a call that was given no timeout of its own
	DefaultActionTimeout = 10 * time.Second
)

// clickJS clicks inside the page, so an overlay covering the element cannot
// stall the call the way a synthetic mouse event would
const clickJS = `() => this.click()`

// RodSession implements Session over a single go-rod page. Every call runs
// under a deadline: the caller's timeout when it passes one, the action
// timeout otherwise.
type RodSession struct {
	page          *rod.Page
	actionTimeout time.Duration
}

// NewRodSession wraps an already opened page. A non-positive actionTimeout
// falls back to DefaultActionTimeout.
func NewRodSession(page *rod.Page, actionTimeout time.Duration) *RodSession {
	if actionTimeout <= 0 {
		actionTimeout = DefaultActionTimeout
	}
	return &RodSession{page: page, actionTimeout: actionTimeout}
}

func (s *RodSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	navCtx, cancel := bounded(ctx, timeout, s.actionTimeout)
	defer cancel()

	p := s.page.Context(navCtx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, classify(err))
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("failed waiting for %s to load: %w", url, classify(err))
	}
	return nil
}

func (s *RodSession) CurrentURL(ctx context.Context) (string, error) {
	actCtx, cancel := bounded(ctx, 0, s.actionTimeout)
	defer cancel()

	info, err := s.page.Context(actCtx).Info()
	if err != nil {
		return "", fmt.Errorf("failed to read page info: %w", classify(err))
	}
	return info.URL, nil
}

func (s *RodSession) WaitForSelector(ctx context.Context, selector string, opts WaitOptions) (Element, error) {
	waitCtx, cancel := bounded(ctx, opts.Timeout, s.actionTimeout)
	defer cancel()

	el, err := s.page.Context(waitCtx).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("waiting for %q: %w", selector, classify(err))
	}
	if opts.Visible {
		if err := el.WaitVisible(); err != nil {
			return nil, fmt.Errorf("waiting for %q to become visible: %w", selector, classify(err))
		}
	}
	return s.element(ctx, el), nil
}

func (s *RodSession) Query(ctx context.Context, selector string) (Element, error) {
	el, err := s.first(ctx, selector)
	if err != nil {
		return nil, err
	}
	return s.element(ctx, el), nil
}

func (s *RodSession) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	actCtx, cancel := bounded(ctx, 0, s.actionTimeout)
	defer cancel()

	els, err := s.page.Context(actCtx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("querying %q: %w", selector, classify(err))
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, s.element(ctx, el))
	}
	return out, nil
}

func (s *RodSession) Evaluate(ctx context.Context, js string, args ...interface{}) (interface{}, error) {
	actCtx, cancel := bounded(ctx, 0, s.actionTimeout)
	defer cancel()

	res, err := s.page.Context(actCtx).Eval(js, args...)
	if err != nil {
		return nil, fmt.Errorf("in-page evaluation failed: %w", classify(err))
	}
	return res.Value.Val(), nil
}

func (s *RodSession) Type(ctx context.Context, selector, text string) error {
	actCtx, cancel := bounded(ctx, 0, s.actionTimeout)
	defer cancel()

	el, err := s.first(actCtx, selector)
	if err != nil {
		return fmt.Errorf("typing into %q: %w", selector, err)
	}
	// Input waits for the element to be enabled and writable
	if err := el.Input(text); err != nil {
		return fmt.Errorf("typing into %q: %w", selector, classify(err))
	}
	return nil
}

func (s *RodSession) Click(ctx context.Context, selector string) error {
	el, err := s.Query(ctx, selector)
	if err != nil {
		return err
	}
	return el.Click(ctx)
}

func (s *RodSession) WaitForCondition(ctx context.Context, js string, timeout time.Duration) error {
	waitCtx, cancel := bounded(ctx, timeout, s.actionTimeout)
	defer cancel()

	ticker := time.NewTicker(conditionPollInterval)
	defer ticker.Stop()

	for {
		res, err := s.page.Context(waitCtx).Eval(js)
		if err == nil && res.Value.Bool() {
			return nil
		}
		select {
		case <-waitCtx.Done():
			if err != nil {
				return fmt.Errorf("condition never held: %w", classify(errors.Join(waitCtx.Err(), err)))
			}
			return fmt.Errorf("condition never held: %w", classify(waitCtx.Err()))
		case <-ticker.C:
		}
	}
}

func (s *RodSession) HTML(ctx context.Context, selector string) (string, error) {
	actCtx, cancel := bounded(ctx, 0, s.actionTimeout)
	defer cancel()

	el, err := s.first(actCtx, selector)
	if err != nil {
		return "", err
	}
	html, err := el.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML of %q: %w", selector, classify(err))
	}
	return html, nil
}

// first looks selector up once, without rod's retry-until-found wait. The
// returned element carries ctx.
func (s *RodSession) first(ctx context.Context, selector string) (*rod.Element, error) {
	els, err := s.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("querying %q: %w", selector, classify(err))
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return els.First(), nil
}

// element detaches el from any call-scoped context so the handle stays
// usable after that call returns
func (s *RodSession) element(ctx context.Context, el *rod.Element) *rodElement {
	return &rodElement{el: el.Context(ctx), timeout: s.actionTimeout}
}

type rodElement struct {
	el      *rod.Element
	timeout time.Duration
}

func (e *rodElement) Element(ctx context.Context, selector string) (Element, error) {
	actCtx, cancel := bounded(ctx, 0, e.timeout)
	defer cancel()

	els, err := e.el.Context(actCtx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("querying %q: %w", selector, classify(err))
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return &rodElement{el: els.First().Context(ctx), timeout: e.timeout}, nil
}

func (e *rodElement) Click(ctx context.Context) error {
	actCtx, cancel := bounded(ctx, 0, e.timeout)
	defer cancel()

	if _, err := e.el.Context(actCtx).Eval(clickJS); err != nil {
		return fmt.Errorf("click failed: %w", classify(err))
	}
	return nil
}

func (e *rodElement) Text(ctx context.Context) (string, error) {
	actCtx, cancel := bounded(ctx, 0, e.timeout)
	defer cancel()

	text, err := e.el.Context(actCtx).Text()
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", classify(err))
	}
	return text, nil
}

func (e *rodElement) Property(ctx context.Context, name string) (string, error) {
	actCtx, cancel := bounded(ctx, 0, e.timeout)
	defer cancel()

	v, err := e.el.Context(actCtx).Property(name)
	if err != nil {
		return "", fmt.Errorf("failed to read property %s: %w", name, classify(err))
	}
	if v.Nil() {
		return "", nil
	}
	return v.Str(), nil
}

func (e *rodElement) SetFiles(ctx context.Context, paths ...string) error {
	actCtx, cancel := bounded(ctx, 0, e.timeout)
	defer cancel()

	if err := e.el.Context(actCtx).SetFiles(paths); err != nil {
		return fmt.Errorf("setting files: %w", classify(err))
	}
	return nil
}

// bounded derives a context that expires after d, or after fallback when d
// is not positive
func bounded(ctx context.Context, d, fallback time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = fallback
	}
	if d <= 0 {
		d = DefaultActionTimeout
	}
	return context.WithTimeout(ctx, d)
}

// classify maps deadline expiry onto ErrTimeout while keeping the cause
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
