package browser

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedVariant is returned by ParseVariant for browser names
	// outside the supported set.
	ErrUnsupportedVariant = errors.New("unsupported browser variant")

	// ErrNoSuchElement indicates the located element is not (yet) in the
	// document. Transient: polling loops retry through it.
	ErrNoSuchElement = errors.New("no such element")

	// ErrStaleElement indicates the element reference was invalidated by a
	// document mutation between query and use. Transient: polling loops
	// retry through it.
	ErrStaleElement = errors.New("stale element reference")

	// ErrHeadlessUnsupported is returned by the factory when headless mode
	// is requested for a family without headless support and the
	// strict-headless option is set.
	ErrHeadlessUnsupported = errors.New("headless mode not supported")
)

// IsTransient reports whether err is a query failure expected to resolve
// itself shortly (element not yet rendered, or its reference invalidated by
// a page mutation). Waits treat these as "condition not yet met".
func IsTransient(err error) bool {
	return errors.Is(err, ErrNoSuchElement) || errors.Is(err, ErrStaleElement)
}

// CreateError wraps any failure during handle construction or
// post-construction configuration with the requested variant for diagnosis.
type CreateError struct {
	Variant Variant
	Err     error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("create %s session: %v", e.Variant, e.Err)
}

func (e *CreateError) Unwrap() error {
	return e.Err
}
