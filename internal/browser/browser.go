// Package browser defines the page-automation surface the applier drives,
// with a Chrome implementation built on chromedp.
package browser

import (
	"context"
	"errors"
	"time"

	"github.com/chromedp/chromedp/kb"
	"github.com/jonathan/apply-agent/internal/pacing"
)

// Sentinel errors for expected absence
var (
	// ErrNotFound means no element matched a selector
	ErrNotFound = errors.New("element not found")
	// ErrTimeout means a bounded wait expired before its condition held
	ErrTimeout = errors.New("wait timed out")
)

// Special keys accepted by Element.SendKeys
const (
	KeyEnter     = kb.Enter
	KeyArrowDown = kb.ArrowDown
)

// Page is a browser tab
type Page interface {
	Navigate(ctx context.Context, url string) error
	URL(ctx context.Context) (string, error)
	// Find returns the first element matching selector, or ErrNotFound
	Find(ctx context.Context, selector string) (Element, error)
	// FindAll returns every element matching selector in document order
	FindAll(ctx context.Context, selector string) ([]Element, error)
	// HTML returns the serialized document
	HTML(ctx context.Context) (string, error)
	// Eval runs a script for its side effects
	Eval(ctx context.Context, script string) error
	ScrollTo(ctx context.Context, y int) error
	ScrollHeight(ctx context.Context) (int, error)
}

// Element is a handle to a DOM element
type Element interface {
	Find(ctx context.Context, selector string) (Element, error)
	FindAll(ctx context.Context, selector string) ([]Element, error)
	// Text returns the rendered text content
	Text(ctx context.Context) (string, error)
	// Attribute returns the attribute value, "" when absent
	Attribute(ctx context.Context, name string) (string, error)
	Click(ctx context.Context) error
	Clear(ctx context.Context) error
	// SendKeys focuses the element and types keys, which may include KeyEnter and KeyArrowDown
	SendKeys(ctx context.Context, keys string) error
	ScrollIntoView(ctx context.Context) error
	Visible(ctx context.Context) (bool, error)
	Enabled(ctx context.Context) (bool, error)
	// SetFiles attaches local files to a file input
	SetFiles(ctx context.Context, paths ...string) error
	// Parent returns the parent element, or ErrNotFound at the root
	Parent(ctx context.Context) (Element, error)
	// Options returns the option texts of a select element
	Options(ctx context.Context) ([]string, error)
	// Selected returns the text of the selected option
	Selected(ctx context.Context) (string, error)
	// SelectOption selects the option whose text equals text, or returns ErrNotFound
	SelectOption(ctx context.Context, text string) error
	// Eval runs a function body with this bound to the element
	Eval(ctx context.Context, function string) error
}

// Condition reports whether a wait is satisfied. ErrNotFound counts as not yet.
type Condition func(ctx context.Context) (bool, error)

// WaitFor polls cond every interval until it holds, returning ErrTimeout once
// timeout has elapsed. cond is always checked at least once.
func WaitFor(ctx context.Context, timeout, interval time.Duration, cond Condition) error {
	deadline := time.Now().Add(timeout)
	for {
		ok, err := cond(ctx)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return ErrTimeout
		}
		if err := pacing.Sleep(ctx, min(interval, time.Until(deadline))); err != nil {
			return err
		}
	}
}

// WaitForElement waits until selector matches on page and returns the element
func WaitForElement(ctx context.Context, page Page, selector string, timeout time.Duration) (Element, error) {
	var found Element
	err := WaitFor(ctx, timeout, 250*time.Millisecond, func(ctx context.Context) (bool, error) {
		el, err := page.Find(ctx, selector)
		if err != nil {
			return false, err
		}
		found = el
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// FirstClickable returns the first of els that becomes visible and then enabled,
// each within timeout. It returns ErrNotFound when none qualifies.
func FirstClickable(ctx context.Context, els []Element, timeout time.Duration) (Element, error) {
	for _, el := range els {
		if err := WaitFor(ctx, timeout, 250*time.Millisecond, el.Visible); err != nil {
			if errors.Is(err, ErrTimeout) {
				continue
			}
			return nil, err
		}
		if err := WaitFor(ctx, timeout, 250*time.Millisecond, el.Enabled); err != nil {
			if errors.Is(err, ErrTimeout) {
				continue
			}
			return nil, err
		}
		return el, nil
	}
	return nil, ErrNotFound
}

// SlowScroll scrolls from start to end in step-pixel increments, pausing between
// increments so lazily loaded content renders. A negative step scrolls up.
func SlowScroll(ctx context.Context, page Page, pacer pacing.Pacer, start, end, step int) error {
	if step == 0 || (step > 0 && start > end) || (step < 0 && start < end) {
		return nil
	}
	for y := start; (step > 0 && y < end) || (step < 0 && y > end); y += step {
		if err := page.ScrollTo(ctx, y); err != nil {
			return err
		}
		if err := pacer.Pause(ctx, 50*time.Millisecond, 150*time.Millisecond); err != nil {
			return err
		}
	}
	if err := page.ScrollTo(ctx, end); err != nil {
		return err
	}
	return pacer.Pause(ctx, 500*time.Millisecond, time.Second)
}

// TextOf returns the element text, "" on error
func TextOf(ctx context.Context, el Element) string {
	text, err := el.Text(ctx)
	if err != nil {
		return ""
	}
	return text
}
