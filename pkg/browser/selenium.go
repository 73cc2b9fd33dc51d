package browser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tebeka/selenium"
)

// seleniumHandle adapts a remote WebDriver to the Handle interface,
// normalizing driver failures into the package's error sentinels so polling
// code never inspects driver-specific error types.
type seleniumHandle struct {
	wd selenium.WebDriver
}

func (h *seleniumHandle) Find(l Locator) (Element, error) {
	el, err := h.wd.FindElement(l.By, l.Value)
	if err != nil {
		return nil, normalizeDriverError(err)
	}
	return &seleniumElement{el: el}, nil
}

func (h *seleniumHandle) FindAll(l Locator) ([]Element, error) {
	els, err := h.wd.FindElements(l.By, l.Value)
	if err != nil {
		return nil, normalizeDriverError(err)
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &seleniumElement{el: el})
	}
	return out, nil
}

func (h *seleniumHandle) Title() (string, error) {
	title, err := h.wd.Title()
	return title, normalizeDriverError(err)
}

func (h *seleniumHandle) URL() (string, error) {
	url, err := h.wd.CurrentURL()
	return url, normalizeDriverError(err)
}

func (h *seleniumHandle) Resize(width, height int) error {
	return normalizeDriverError(h.wd.ResizeWindow("", width, height))
}

func (h *seleniumHandle) Quit() error {
	return h.wd.Quit()
}

// seleniumElement adapts a WebElement to the Element interface.
type seleniumElement struct {
	el selenium.WebElement
}

func (e *seleniumElement) IsDisplayed() (bool, error) {
	displayed, err := e.el.IsDisplayed()
	return displayed, normalizeDriverError(err)
}

func (e *seleniumElement) IsEnabled() (bool, error) {
	enabled, err := e.el.IsEnabled()
	return enabled, normalizeDriverError(err)
}

func (e *seleniumElement) IsSelected() (bool, error) {
	selected, err := e.el.IsSelected()
	return selected, normalizeDriverError(err)
}

func (e *seleniumElement) Text() (string, error) {
	text, err := e.el.Text()
	return text, normalizeDriverError(err)
}

func (e *seleniumElement) Attribute(name string) (string, error) {
	value, err := e.el.GetAttribute(name)
	if err != nil {
		// The driver reports an absent attribute as a nil value; read it as
		// empty so attribute waits keep polling instead of failing.
		if strings.Contains(strings.ToLower(err.Error()), "nil return value") {
			return "", nil
		}
		return "", normalizeDriverError(err)
	}
	return value, nil
}

func (e *seleniumElement) Click() error {
	return normalizeDriverError(e.el.Click())
}

// W3C WebDriver error codes for the transient query failures.
const (
	w3cNoSuchElement = "no such element"
	w3cStaleElement  = "stale element reference"
)

// normalizeDriverError maps WebDriver protocol errors onto the package
// sentinels. Anything else passes through untouched.
func normalizeDriverError(err error) error {
	if err == nil {
		return nil
	}

	var se *selenium.Error
	if errors.As(err, &se) {
		switch se.Err {
		case w3cNoSuchElement:
			return fmt.Errorf("%w: %s", ErrNoSuchElement, se.Message)
		case w3cStaleElement:
			return fmt.Errorf("%w: %s", ErrStaleElement, se.Message)
		}
		return err
	}

	// Legacy wire-protocol servers report failures as bare strings.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, w3cNoSuchElement):
		return fmt.Errorf("%w: %v", ErrNoSuchElement, err)
	case strings.Contains(msg, w3cStaleElement):
		return fmt.Errorf("%w: %v", ErrStaleElement, err)
	}
	return err
}
