package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrElementNotFound is returned by Query and Element when nothing matches
	ErrElementNotFound = errors.New("element not found")
	// ErrTimeout is returned when a bounded wait expires
	ErrTimeout = errors.New("timed out waiting for page state")
)

// WaitOptions configures WaitForSelector
type WaitOptions struct {
	Visible bool
	Timeout time.Duration
}

// Session is the automation capability shared by discovery and the
// application driver. Calls are sequential; a Session is not safe for
// concurrent use. Every call returns within a bounded time even when ctx
// carries no deadline: a missing element fails at once, and waits end with
// ErrTimeout.
type Session interface {
	// Navigate loads url and waits for the load event
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	CurrentURL(ctx context.Context) (string, error)
	WaitForSelector(ctx context.Context, selector string, opts WaitOptions) (Element, error)
	// Query returns the first match or ErrElementNotFound without waiting
	Query(ctx context.Context, selector string) (Element, error)
	QueryAll(ctx context.Context, selector string) ([]Element, error)
	// Evaluate runs a JavaScript function expression in the page with args
	Evaluate(ctx context.Context, js string, args ...interface{}) (interface{}, error)
	// Type appends text to the first element matching selector
	Type(ctx context.Context, selector, text string) error
	Click(ctx context.Context, selector string) error
	// WaitForCondition polls a JavaScript predicate until it returns true
	WaitForCondition(ctx context.Context, js string, timeout time.Duration) error
	// HTML returns the outer HTML of the first element matching selector
	HTML(ctx context.Context, selector string) (string, error)
}

// Element is a handle to a node previously returned by a Session
type Element interface {
	Element(ctx context.Context, selector string) (Element, error)
	Click(ctx context.Context) error
	Text(ctx context.Context) (string, error)
	Property(ctx context.Context, name string) (string, error)
	// SetFiles attaches paths to a file input
	SetFiles(ctx context.Context, paths ...string) error
}
