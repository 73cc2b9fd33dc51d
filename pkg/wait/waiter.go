// Package wait converts possibly-not-yet-true UI conditions into bounded,
// fixed-interval polling waits, so callers never sleep a fixed duration and
// never busy-spin unbounded.
//
// Every wait evaluates its condition immediately, then re-evaluates every
// poll interval until the condition holds, the timeout elapses, or the
// context is canceled. Transient query failures (element not yet in the
// document, or a stale reference after a document mutation) are retried as
// "condition not yet met", never surfaced as hard failures.
package wait

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/webtest/pkg/browser"
)

// Defaults. The poll interval is a fixed small value independent of the
// timeout; it is only tunable through the Waiter options, not per call.
const (
	DefaultTimeout  = 10 * time.Second
	DefaultInterval = 500 * time.Millisecond
)

// Named conditions accepted by Waiter.WaitFor.
const (
	ConditionVisible   = "visible"
	ConditionClickable = "clickable"
	ConditionPresent   = "present"
)

// Condition is one evaluation of a poll: a satisfying value plus ready=true,
// ready=false for "not yet", or an error for a query that legitimately
// failed. "Not yet" is an ordinary value here, not a thrown-and-caught
// control signal.
type Condition[T any] func(h browser.Handle) (T, bool, error)

// Waiter polls conditions against a single session handle.
type Waiter struct {
	handle   browser.Handle
	timeout  time.Duration
	interval time.Duration
	ignored  []error
}

// Option customizes a Waiter.
type Option func(*Waiter)

// WithTimeout sets the default timeout, typically the ambient explicit-wait
// duration.
func WithTimeout(d time.Duration) Option {
	return func(w *Waiter) {
		if d > 0 {
			w.timeout = d
		}
	}
}

// WithInterval sets the fixed sleep between evaluations.
func WithInterval(d time.Duration) Option {
	return func(w *Waiter) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithIgnored replaces the set of failure kinds retried as "not yet". The
// default set is {browser.ErrNoSuchElement, browser.ErrStaleElement}.
func WithIgnored(errs ...error) Option {
	return func(w *Waiter) {
		w.ignored = errs
	}
}

// New creates a Waiter bound to a session handle.
func New(handle browser.Handle, opts ...Option) *Waiter {
	w := &Waiter{
		handle:   handle,
		timeout:  DefaultTimeout,
		interval: DefaultInterval,
		ignored:  []error{browser.ErrNoSuchElement, browser.ErrStaleElement},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// TimeoutError reports a precondition-style wait that ran out of time. It
// carries the locator, condition name and timeout so failure messages stay
// actionable.
type TimeoutError struct {
	Condition string
	Locator   browser.Locator
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Locator == (browser.Locator{}) {
		return fmt.Sprintf("condition %q not met within %v", e.Condition, e.Timeout)
	}
	return fmt.Sprintf("element %s not found: condition %q not met within %v",
		e.Locator, e.Condition, e.Timeout)
}

// IsTimeout reports whether err is a wait timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// WaitFor polls the named built-in condition ("visible", "clickable",
// "present") for the located element, returning it once the condition
// holds. On timeout it returns a *TimeoutError naming the locator, the
// condition and the timeout. An unknown condition name errors without
// polling.
func (w *Waiter) WaitFor(ctx context.Context, condition string, loc browser.Locator, override ...time.Duration) (browser.Element, error) {
	var cond Condition[browser.Element]
	switch condition {
	case ConditionVisible:
		cond = Visible(loc)
	case ConditionClickable:
		cond = Clickable(loc)
	case ConditionPresent:
		cond = Present(loc)
	default:
		return nil, fmt.Errorf("unknown wait condition %q", condition)
	}
	return poll(ctx, w, cond, condition, loc, w.waitTimeout(override))
}

// WaitGone polls until the located element is absent or not visible.
// Returns false on timeout rather than failing: disappearance is a
// best-effort assertion.
func (w *Waiter) WaitGone(ctx context.Context, loc browser.Locator, override ...time.Duration) bool {
	_, err := poll(ctx, w, Gone(loc), "gone", loc, w.waitTimeout(override))
	return err == nil
}

// WaitTextPresent polls until the located element's text contains text.
// Returns false on timeout.
func (w *Waiter) WaitTextPresent(ctx context.Context, loc browser.Locator, text string, override ...time.Duration) bool {
	_, err := poll(ctx, w, TextContains(loc, text), "text", loc, w.waitTimeout(override))
	return err == nil
}

// WaitAttributeContains polls until the located element's attribute attr
// contains value. Returns false on timeout.
func (w *Waiter) WaitAttributeContains(ctx context.Context, loc browser.Locator, attr, value string, override ...time.Duration) bool {
	_, err := poll(ctx, w, AttributeContains(loc, attr, value), "attribute", loc, w.waitTimeout(override))
	return err == nil
}

// WaitTitleContains polls until the page title contains text. Returns false
// on timeout.
func (w *Waiter) WaitTitleContains(ctx context.Context, text string, override ...time.Duration) bool {
	_, err := poll(ctx, w, TitleContains(text), "title", browser.Locator{}, w.waitTimeout(override))
	return err == nil
}

// WaitURLContains polls until the current URL contains fragment. Returns
// false on timeout.
func (w *Waiter) WaitURLContains(ctx context.Context, fragment string, override ...time.Duration) bool {
	_, err := poll(ctx, w, URLContains(fragment), "url", browser.Locator{}, w.waitTimeout(override))
	return err == nil
}

// For is the generalized polling primitive every named wait is built on.
// Errors from cond matching the waiter's ignored set are retried as "not
// yet"; any other error propagates immediately without waiting out the
// timeout. Go methods cannot be generic, so this is a package-level
// function.
func For[T any](ctx context.Context, w *Waiter, cond Condition[T], override ...time.Duration) (T, error) {
	return poll(ctx, w, cond, "custom", browser.Locator{}, w.waitTimeout(override))
}

func (w *Waiter) waitTimeout(override []time.Duration) time.Duration {
	if len(override) > 0 && override[0] > 0 {
		return override[0]
	}
	return w.timeout
}

func (w *Waiter) ignores(err error) bool {
	for _, kind := range w.ignored {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// poll evaluates cond immediately, then on every interval tick, until it is
// satisfied, the deadline fires, or ctx is canceled. Timer and ticker both
// run on the monotonic clock, so system-clock adjustments cannot distort
// the wait.
func poll[T any](ctx context.Context, w *Waiter, cond Condition[T], name string, loc browser.Locator, timeout time.Duration) (T, error) {
	var zero T

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		value, ready, err := cond(w.handle)
		if err != nil && !w.ignores(err) {
			return zero, err
		}
		if err == nil && ready {
			return value, nil
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-deadline.C:
			return zero, &TimeoutError{Condition: name, Locator: loc, Timeout: timeout}
		case <-ticker.C:
		}
	}
}
