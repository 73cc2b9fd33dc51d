package wait

import (
	"regexp"
	"strings"

	"github.com/entrhq/webtest/pkg/browser"
)

// Condition builders. Each is a pure function of a locator (plus an expected
// count or pattern where relevant), independent of any particular session,
// producing a predicate consumable by For. On a transient query failure the
// predicate reports "not yet" rather than propagating, regardless of the
// waiter's ignored set.

// transientErr maps transient query failures to nil so the poll loop treats
// them as "condition not yet met".
func transientErr(err error) error {
	if browser.IsTransient(err) {
		return nil
	}
	return err
}

// Present is satisfied once the element is in the document.
func Present(loc browser.Locator) Condition[browser.Element] {
	return func(h browser.Handle) (browser.Element, bool, error) {
		el, err := h.Find(loc)
		if err != nil {
			return nil, false, transientErr(err)
		}
		return el, true, nil
	}
}

// Visible is satisfied once the element is in the document and displayed.
func Visible(loc browser.Locator) Condition[browser.Element] {
	return func(h browser.Handle) (browser.Element, bool, error) {
		el, err := h.Find(loc)
		if err != nil {
			return nil, false, transientErr(err)
		}
		displayed, err := el.IsDisplayed()
		if err != nil {
			return nil, false, transientErr(err)
		}
		return el, displayed, nil
	}
}

// Clickable is satisfied once the element is displayed and enabled.
func Clickable(loc browser.Locator) Condition[browser.Element] {
	return func(h browser.Handle) (browser.Element, bool, error) {
		el, err := h.Find(loc)
		if err != nil {
			return nil, false, transientErr(err)
		}
		displayed, err := el.IsDisplayed()
		if err != nil {
			return nil, false, transientErr(err)
		}
		if !displayed {
			return nil, false, nil
		}
		enabled, err := el.IsEnabled()
		if err != nil {
			return nil, false, transientErr(err)
		}
		return el, enabled, nil
	}
}

// Gone is satisfied once the element is absent from the document or not
// visible. A stale reference counts as gone: the document no longer holds
// the element that was there.
func Gone(loc browser.Locator) Condition[bool] {
	return func(h browser.Handle) (bool, bool, error) {
		el, err := h.Find(loc)
		if err != nil {
			if browser.IsTransient(err) {
				return true, true, nil
			}
			return false, false, err
		}
		displayed, err := el.IsDisplayed()
		if err != nil {
			if browser.IsTransient(err) {
				return true, true, nil
			}
			return false, false, err
		}
		return !displayed, !displayed, nil
	}
}

// TextContains is satisfied once the element's text contains text.
func TextContains(loc browser.Locator, text string) Condition[string] {
	return func(h browser.Handle) (string, bool, error) {
		el, err := h.Find(loc)
		if err != nil {
			return "", false, transientErr(err)
		}
		actual, err := el.Text()
		if err != nil {
			return "", false, transientErr(err)
		}
		return actual, strings.Contains(actual, text), nil
	}
}

// AttributeContains is satisfied once the element's attribute attr contains
// value. An absent attribute reads as empty, so it is "not yet", not an
// error.
func AttributeContains(loc browser.Locator, attr, value string) Condition[string] {
	return func(h browser.Handle) (string, bool, error) {
		el, err := h.Find(loc)
		if err != nil {
			return "", false, transientErr(err)
		}
		actual, err := el.Attribute(attr)
		if err != nil {
			return "", false, transientErr(err)
		}
		return actual, strings.Contains(actual, value), nil
	}
}

// TitleContains is satisfied once the page title contains text.
func TitleContains(text string) Condition[string] {
	return func(h browser.Handle) (string, bool, error) {
		title, err := h.Title()
		if err != nil {
			return "", false, transientErr(err)
		}
		return title, strings.Contains(title, text), nil
	}
}

// URLContains is satisfied once the current URL contains fragment.
func URLContains(fragment string) Condition[string] {
	return func(h browser.Handle) (string, bool, error) {
		url, err := h.URL()
		if err != nil {
			return "", false, transientErr(err)
		}
		return url, strings.Contains(url, fragment), nil
	}
}

// ElementEnabled is satisfied once the element is enabled.
func ElementEnabled(loc browser.Locator) Condition[browser.Element] {
	return func(h browser.Handle) (browser.Element, bool, error) {
		el, err := h.Find(loc)
		if err != nil {
			return nil, false, transientErr(err)
		}
		enabled, err := el.IsEnabled()
		if err != nil {
			return nil, false, transientErr(err)
		}
		return el, enabled, nil
	}
}

// ElementSelected is satisfied once the element is selected (checkboxes,
// radio buttons, options).
func ElementSelected(loc browser.Locator) Condition[browser.Element] {
	return func(h browser.Handle) (browser.Element, bool, error) {
		el, err := h.Find(loc)
		if err != nil {
			return nil, false, transientErr(err)
		}
		selected, err := el.IsSelected()
		if err != nil {
			return nil, false, transientErr(err)
		}
		return el, selected, nil
	}
}

// ElementCountIs is satisfied once exactly count elements match the locator.
func ElementCountIs(loc browser.Locator, count int) Condition[[]browser.Element] {
	return func(h browser.Handle) ([]browser.Element, bool, error) {
		els, err := h.FindAll(loc)
		if err != nil {
			return nil, false, transientErr(err)
		}
		return els, len(els) == count, nil
	}
}

// TextMatches is satisfied once the element's text matches the pattern.
func TextMatches(loc browser.Locator, pattern *regexp.Regexp) Condition[string] {
	return func(h browser.Handle) (string, bool, error) {
		el, err := h.Find(loc)
		if err != nil {
			return "", false, transientErr(err)
		}
		actual, err := el.Text()
		if err != nil {
			return "", false, transientErr(err)
		}
		return actual, pattern.MatchString(actual), nil
	}
}
