package browser

import (
	"fmt"
	"strings"
)

// Family identifies a browser engine family supported by the session factory.
type Family int

const (
	Chrome Family = iota
	Firefox
	Edge
	Safari
)

// String returns the lower-case family name.
func (f Family) String() string {
	switch f {
	case Chrome:
		return "chrome"
	case Firefox:
		return "firefox"
	case Edge:
		return "edge"
	case Safari:
		return "safari"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Variant is a (family, headless) pair identifying how a session is built.
// It is a closed enumeration: Safari has no headless derivative because the
// underlying driver does not support headless operation for that family.
type Variant struct {
	family   Family
	headless bool
}

// The supported variants.
var (
	VariantChrome          = Variant{family: Chrome}
	VariantChromeHeadless  = Variant{family: Chrome, headless: true}
	VariantFirefox         = Variant{family: Firefox}
	VariantFirefoxHeadless = Variant{family: Firefox, headless: true}
	VariantEdge            = Variant{family: Edge}
	VariantEdgeHeadless    = Variant{family: Edge, headless: true}
	VariantSafari          = Variant{family: Safari}
)

// DefaultVariant is used when no browser name is configured.
var DefaultVariant = VariantChrome

// Base returns the variant's browser family, mapping a headless variant back
// to its base family.
func (v Variant) Base() Family {
	return v.family
}

// Headless reports whether the variant runs without a visible window.
func (v Variant) Headless() bool {
	return v.headless
}

// String returns the variant's display label, e.g. "chrome-headless".
func (v Variant) String() string {
	if v.headless {
		return v.family.String() + "-headless"
	}
	return v.family.String()
}

// WithHeadless returns the headless derivative of the variant's family when
// one exists. Safari has no headless mode, so the request has no effect.
func (v Variant) WithHeadless(headless bool) Variant {
	if v.family == Safari {
		return Variant{family: Safari}
	}
	return Variant{family: v.family, headless: headless}
}

// ParseVariant parses a free-text browser name into a Variant. Matching is
// case-insensitive and ignores surrounding whitespace; "-", "_" and spaces
// are all accepted as separators ("Chrome Headless" == "chrome_headless").
// An empty name yields DefaultVariant; anything unrecognized returns
// ErrUnsupportedVariant.
func ParseVariant(name string) (Variant, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.NewReplacer("-", "", "_", "", " ", "").Replace(normalized)

	switch normalized {
	case "":
		return DefaultVariant, nil
	case "chrome":
		return VariantChrome, nil
	case "chromeheadless", "headlesschrome":
		return VariantChromeHeadless, nil
	case "firefox":
		return VariantFirefox, nil
	case "firefoxheadless", "headlessfirefox":
		return VariantFirefoxHeadless, nil
	case "edge", "microsoftedge":
		return VariantEdge, nil
	case "edgeheadless", "headlessedge":
		return VariantEdgeHeadless, nil
	case "safari":
		return VariantSafari, nil
	default:
		return Variant{}, fmt.Errorf("%w: %q", ErrUnsupportedVariant, name)
	}
}
