package browser

import (
	"time"
)

// Locator identifies one or more elements on a page by a WebDriver locator
// strategy and its value.
type Locator struct {
	// By is the locator strategy ("css selector", "xpath", ...)
	By string

	// Value is the strategy-specific expression
	Value string
}

// Locator strategy names, matching the W3C WebDriver strategies.
const (
	byCSS      = "css selector"
	byID       = "id"
	byXPath    = "xpath"
	byName     = "name"
	byLinkText = "link text"
	byTag      = "tag name"
)

// ByCSS locates elements by CSS selector.
func ByCSS(selector string) Locator { return Locator{By: byCSS, Value: selector} }

// ByID locates an element by its id attribute.
func ByID(id string) Locator { return Locator{By: byID, Value: id} }

// ByXPath locates elements by XPath expression.
func ByXPath(expr string) Locator { return Locator{By: byXPath, Value: expr} }

// ByName locates elements by their name attribute.
func ByName(name string) Locator { return Locator{By: byName, Value: name} }

// ByLinkText locates anchor elements by their exact visible text.
func ByLinkText(text string) Locator { return Locator{By: byLinkText, Value: text} }

// ByTag locates elements by tag name.
func ByTag(tag string) Locator { return Locator{By: byTag, Value: tag} }

// String renders the locator for error messages.
func (l Locator) String() string {
	return l.By + "=" + l.Value
}

// Element is the subset of driver element behavior the library reads.
// Implementations must normalize driver failures into ErrNoSuchElement /
// ErrStaleElement where those conditions apply.
type Element interface {
	IsDisplayed() (bool, error)
	IsEnabled() (bool, error)
	IsSelected() (bool, error)
	Text() (string, error)
	Attribute(name string) (string, error)
	Click() error
}

// Handle is an open connection to a controllable browser instance. The
// library is agnostic to how the handle communicates with the browser
// process; the production implementation wraps a remote WebDriver.
type Handle interface {
	Find(l Locator) (Element, error)
	FindAll(l Locator) ([]Element, error)
	Title() (string, error)
	URL() (string, error)
	Resize(width, height int) error
	Quit() error
}

// State describes where a session is in its lifecycle.
type State int

const (
	// StateUninitialized is the zero state before the handle is built.
	StateUninitialized State = iota

	// StateActive means the session owns a live handle.
	StateActive

	// StateTerminated means the session has been quit and removed from the
	// registry. Terminated sessions are never reused.
	StateTerminated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Session is one exclusively-owned browser handle bound to a single worker
// for its lifetime. The handle must never be used from a worker other than
// the one that registered it.
type Session struct {
	// ID uniquely identifies the session for logging and reporting
	ID string

	// Worker is the identifier of the owning worker
	Worker string

	// Variant records how the session was built
	Variant Variant

	// Handle is the live driver connection
	Handle Handle

	// State is the session's lifecycle state
	State State

	// CreatedAt is when the handle was built
	CreatedAt time.Time
}

// Default values for session construction.
const (
	DefaultWindowWidth  = 1280
	DefaultWindowHeight = 720
	DefaultRemoteURL    = "http://127.0.0.1:4444/wd/hub"
)
