package browser

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/entrhq/webtest/pkg/config"
	"github.com/entrhq/webtest/pkg/logging"
)

// SessionManager guarantees one exclusively-owned, correctly-configured
// browser session per worker, and its clean teardown.
//
// Workers are identified by a caller-supplied id (typically the test name or
// the parallel runner's worker id). A session's handle must only ever be
// used by the worker that registered it; the manager never hands a handle
// registered under one worker to another. Only the registry maps are shared
// state, so parallel workers coordinate without locking the handles
// themselves.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	labels   map[string]string
	cfg      *config.Config
	log      *logging.Logger

	// buildHandle is swapped out in tests to avoid dialing a real driver.
	buildHandle func(Variant, BuildOptions) (Handle, error)
}

// NewSessionManager creates a session manager over the given ambient
// configuration. Construct one at process startup and pass it by reference;
// there is no global instance. A nil logger falls back to stderr.
func NewSessionManager(cfg *config.Config, log *logging.Logger) *SessionManager {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logging.New("browser")
	}
	return &SessionManager{
		sessions:    make(map[string]*Session),
		labels:      make(map[string]string),
		cfg:         cfg,
		log:         log,
		buildHandle: NewHandle,
	}
}

// GetOrCreate returns the worker's existing session, or builds one from the
// ambient configuration, registers it, and returns it. Repeated calls before
// Terminate return the same session.
func (m *SessionManager) GetOrCreate(worker string) (*Session, error) {
	if session, ok := m.Get(worker); ok {
		return session, nil
	}

	variant, err := ParseVariant(m.cfg.Browser)
	if err != nil {
		return nil, err
	}
	return m.create(worker, variant, m.cfg.Headless)
}

// CreateWithVariant always produces a fresh session of the requested
// variant. Any existing session for the worker is terminated first, so no
// session leaks.
func (m *SessionManager) CreateWithVariant(worker string, v Variant) (*Session, error) {
	m.Terminate(worker)
	return m.create(worker, v, false)
}

// create builds a handle outside the registry lock so a slow browser launch
// never blocks other workers' lookups.
func (m *SessionManager) create(worker string, v Variant, headless bool) (*Session, error) {
	handle, err := m.buildHandle(v, BuildOptions{
		Headless:       headless,
		Width:          m.cfg.WindowWidth,
		Height:         m.cfg.WindowHeight,
		ImplicitWait:   m.cfg.ImplicitWait,
		RemoteURL:      m.cfg.RemoteURL,
		StrictHeadless: m.cfg.StrictHeadless,
	})
	if err != nil {
		return nil, err
	}

	effective := v.WithHeadless(v.Headless() || headless)
	session := &Session{
		ID:        uuid.New().String(),
		Worker:    worker,
		Variant:   effective,
		Handle:    handle,
		State:     StateActive,
		CreatedAt: time.Now(),
	}

	m.register(worker, session)
	m.log.Infof("session %s created: worker=%s variant=%s", session.ID, worker, effective)
	return session, nil
}

// Get returns the worker's session without creating one.
func (m *SessionManager) Get(worker string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[worker]
	return session, ok
}

// Set adopts an externally constructed handle as the worker's session,
// overwriting any registry entry for that worker. It does not terminate a
// previously registered session; adopting code is responsible for avoiding
// leaks.
func (m *SessionManager) Set(worker string, handle Handle, v Variant) *Session {
	session := &Session{
		ID:        uuid.New().String(),
		Worker:    worker,
		Variant:   v,
		Handle:    handle,
		State:     StateActive,
		CreatedAt: time.Now(),
	}
	m.register(worker, session)
	return session
}

func (m *SessionManager) register(worker string, session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[worker] = session
	m.labels[worker] = session.Variant.String()
}

// Terminate quits the worker's session if one is registered. Quit failures
// are logged, never returned: teardown must not fail a test that otherwise
// passed. The registry entry is removed regardless of Quit's outcome.
// Calling Terminate with no session registered, or twice in a row, is a
// no-op.
func (m *SessionManager) Terminate(worker string) {
	m.mu.Lock()
	session, ok := m.sessions[worker]
	delete(m.sessions, worker)
	delete(m.labels, worker)
	m.mu.Unlock()

	if !ok {
		return
	}

	// Quit outside the lock; a hanging driver must not stall other workers.
	if err := session.Handle.Quit(); err != nil {
		m.log.Warnf("session %s quit failed: worker=%s: %v", session.ID, worker, err)
	}
	session.State = StateTerminated
}

// TerminateAll terminates every registered session. Intended for
// suite-level cleanup after all workers are done.
func (m *SessionManager) TerminateAll() {
	for _, worker := range m.Workers() {
		m.Terminate(worker)
	}
}

// ActiveCount returns the number of registered sessions across all workers
// at the moment of the call. Advisory only: other workers may be creating
// or terminating sessions concurrently.
func (m *SessionManager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Workers returns a snapshot of the worker ids with registered sessions.
func (m *SessionManager) Workers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	workers := make([]string, 0, len(m.sessions))
	for worker := range m.sessions {
		workers = append(workers, worker)
	}
	return workers
}

// VariantLabel returns the display label recorded for the worker's session,
// for reporting.
func (m *SessionManager) VariantLabel(worker string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	label, ok := m.labels[worker]
	return label, ok
}
