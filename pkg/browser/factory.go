package browser

import (
	"fmt"
	"time"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
)

// BuildOptions configures handle construction. Zero-value geometry and URL
// fall back to the package defaults.
type BuildOptions struct {
	// Headless requests headless mode in addition to the variant's own flag
	Headless bool

	// Width and Height set the initial window geometry
	Width  int
	Height int

	// ImplicitWait is applied to the constructed handle before it is returned
	ImplicitWait time.Duration

	// RemoteURL is the WebDriver endpoint to dial
	RemoteURL string

	// StrictHeadless makes a headless request against a family without
	// headless support fail instead of being silently ignored
	StrictHeadless bool

	// ExtraArgs are appended to the family's baseline launch arguments.
	// Ignored for Safari, which accepts no launch arguments.
	ExtraArgs []string
}

func (o *BuildOptions) applyDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWindowWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultWindowHeight
	}
	if o.RemoteURL == "" {
		o.RemoteURL = DefaultRemoteURL
	}
}

// NewHandle constructs a remote-control handle for the requested variant.
// It is a pure factory: it does not touch any session registry. Family
// baseline arguments (sandbox off, GPU off, notifications and popups
// suppressed) are applied unconditionally; they are stability defaults, not
// per-call options. Any construction failure is wrapped in a *CreateError
// carrying the variant.
func NewHandle(v Variant, opts BuildOptions) (Handle, error) {
	opts.applyDefaults()

	headless := v.Headless() || opts.Headless
	if headless && v.Base() == Safari {
		if opts.StrictHeadless {
			return nil, &CreateError{Variant: v, Err: ErrHeadlessUnsupported}
		}
		// Safari has no headless mode; the request is accepted and ignored.
		headless = false
	}

	caps, needsResize := capabilitiesFor(v, headless, opts)

	wd, err := selenium.NewRemote(caps, opts.RemoteURL)
	if err != nil {
		return nil, &CreateError{Variant: v, Err: err}
	}

	// Safari does not accept a startup geometry argument; resize the window
	// after construction instead.
	if needsResize {
		if err := wd.ResizeWindow("", opts.Width, opts.Height); err != nil {
			_ = wd.Quit()
			return nil, &CreateError{Variant: v, Err: fmt.Errorf("resize window: %w", err)}
		}
	}

	if opts.ImplicitWait > 0 {
		if err := wd.SetImplicitWaitTimeout(opts.ImplicitWait); err != nil {
			_ = wd.Quit()
			return nil, &CreateError{Variant: v, Err: fmt.Errorf("set implicit wait: %w", err)}
		}
	}

	return &seleniumHandle{wd: wd}, nil
}

// capabilitiesFor builds the WebDriver capabilities for a variant. The
// second result reports whether window geometry must be applied with a
// post-construction resize (Safari) instead of a launch argument.
func capabilitiesFor(v Variant, headless bool, opts BuildOptions) (selenium.Capabilities, bool) {
	switch v.Base() {
	case Chrome:
		caps := selenium.Capabilities{"browserName": "chrome"}
		caps.AddChrome(chrome.Capabilities{Args: chromiumArgs(headless, opts)})
		return caps, false

	case Edge:
		caps := selenium.Capabilities{"browserName": "MicrosoftEdge"}
		caps["ms:edgeOptions"] = map[string]interface{}{"args": chromiumArgs(headless, opts)}
		return caps, false

	case Firefox:
		args := []string{
			fmt.Sprintf("--width=%d", opts.Width),
			fmt.Sprintf("--height=%d", opts.Height),
		}
		if headless {
			args = append(args, "-headless")
		}
		args = append(args, opts.ExtraArgs...)
		caps := selenium.Capabilities{"browserName": "firefox"}
		caps.AddFirefox(firefox.Capabilities{
			Args: args,
			Prefs: map[string]interface{}{
				"dom.webnotifications.enabled": false,
				"dom.push.enabled":             false,
			},
		})
		return caps, false

	case Safari:
		// Safari accepts neither launch arguments nor a startup geometry.
		return selenium.Capabilities{"browserName": "safari"}, true

	default:
		// Unreachable for the closed variant set; fall back to Chrome.
		caps := selenium.Capabilities{"browserName": "chrome"}
		caps.AddChrome(chrome.Capabilities{Args: chromiumArgs(headless, opts)})
		return caps, false
	}
}

// chromiumArgs builds the launch arguments shared by the Chromium-based
// families (Chrome, Edge).
func chromiumArgs(headless bool, opts BuildOptions) []string {
	args := []string{
		"--no-sandbox",
		"--disable-gpu",
		"--disable-notifications",
		"--disable-popup-blocking",
		fmt.Sprintf("--window-size=%d,%d", opts.Width, opts.Height),
	}
	if headless {
		args = append(args, "--headless=new")
	}
	return append(args, opts.ExtraArgs...)
}
