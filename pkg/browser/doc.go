// Package browser owns the browser-session lifecycle for automated UI
// verification: one exclusively-owned remote-control session per worker,
// created from ambient configuration and torn down cleanly.
//
// # Architecture
//
// The package is built around three core concepts:
//
// 1. Variant: a closed (family, headless) enumeration describing how a session is built
// 2. Handle: the narrow driver surface the library touches, backed by a remote WebDriver
// 3. SessionManager: the registry mapping each worker to its exclusive session
//
// # Session Lifecycle
//
// Sessions follow this lifecycle per worker:
//
//  1. Create: GetOrCreate builds a session from configuration on first use;
//     CreateWithVariant replaces any existing session with a fresh one
//  2. Use: the handle is passed to page objects and to a wait.Waiter
//  3. Terminate: quits the driver and removes the registry entry; Quit
//     failures are logged and never propagated
//
// A terminated session is removed, never reused; the next GetOrCreate
// builds a brand-new one.
//
// # Concurrency
//
// Each worker owns its handle exclusively. The registry maps are the only
// shared state; creation and teardown do their slow driver work outside the
// registry lock so parallel workers never stall each other's lookups.
//
// # Example Usage
//
//	manager := browser.NewSessionManager(cfg, nil)
//
//	session, err := manager.GetOrCreate("worker-1")
//	if err != nil {
//	    return err
//	}
//	defer manager.Terminate("worker-1")
//
//	w := wait.New(session.Handle, wait.WithTimeout(cfg.ExplicitWait))
//	el, err := w.WaitFor(ctx, wait.ConditionVisible, browser.ByCSS("#login"))
package browser
