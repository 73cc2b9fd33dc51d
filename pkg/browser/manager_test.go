package browser

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/webtest/pkg/config"
	"github.com/entrhq/webtest/pkg/logging"
)

// stubHandle is a driver-free Handle for registry tests.
type stubHandle struct {
	id      int
	quits   int
	quitErr error
}

func (h *stubHandle) Find(Locator) (Element, error)      { return nil, ErrNoSuchElement }
func (h *stubHandle) FindAll(Locator) ([]Element, error) { return nil, nil }
func (h *stubHandle) Title() (string, error)             { return "", nil }
func (h *stubHandle) URL() (string, error)               { return "", nil }
func (h *stubHandle) Resize(int, int) error              { return nil }
func (h *stubHandle) Quit() error {
	h.quits++
	return h.quitErr
}

// newTestManager returns a manager whose factory hands out fresh stub
// handles instead of dialing a WebDriver.
func newTestManager(t *testing.T, cfg *config.Config) (*SessionManager, *atomic.Int64) {
	t.Helper()

	if cfg == nil {
		cfg = config.Default()
	}
	var built atomic.Int64
	m := NewSessionManager(cfg, logging.NewWithWriter("browser", testWriter{t}))
	m.buildHandle = func(Variant, BuildOptions) (Handle, error) {
		return &stubHandle{id: int(built.Add(1))}, nil
	}
	return m, &built
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func TestGetOrCreateIsIdempotentPerWorker(t *testing.T) {
	m, built := newTestManager(t, nil)

	first, err := m.GetOrCreate("w1")
	require.NoError(t, err)
	second, err := m.GetOrCreate("w1")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, first.Handle, second.Handle)
	assert.Equal(t, int64(1), built.Load())
	assert.Equal(t, StateActive, first.State)
	assert.NotEmpty(t, first.ID)
}

func TestGetOrCreateIsolatesWorkers(t *testing.T) {
	m, _ := newTestManager(t, nil)

	const workers = 8
	sessions := make([]*Session, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := m.GetOrCreate(fmt.Sprintf("w%d", i))
			if err != nil {
				t.Error(err)
				return
			}
			sessions[i] = s
		}(i)
	}
	wg.Wait()

	assert.Equal(t, workers, m.ActiveCount())
	seen := make(map[Handle]bool)
	for i, s := range sessions {
		require.NotNil(t, s)
		assert.Equal(t, fmt.Sprintf("w%d", i), s.Worker)
		assert.False(t, seen[s.Handle], "handle shared between workers")
		seen[s.Handle] = true
	}

	// Get from one worker's key never returns another worker's session.
	s, ok := m.Get("w0")
	require.True(t, ok)
	assert.Equal(t, "w0", s.Worker)
}

func TestTerminateRemovesAndQuits(t *testing.T) {
	m, _ := newTestManager(t, nil)

	s, err := m.GetOrCreate("w1")
	require.NoError(t, err)
	require.Equal(t, 1, m.ActiveCount())

	m.Terminate("w1")

	assert.Equal(t, 0, m.ActiveCount())
	assert.Equal(t, 1, s.Handle.(*stubHandle).quits)
	assert.Equal(t, StateTerminated, s.State)
	_, ok := m.Get("w1")
	assert.False(t, ok)
}

func TestTerminateWithoutSessionIsNoop(t *testing.T) {
	m, _ := newTestManager(t, nil)

	before := m.ActiveCount()
	m.Terminate("nobody")
	assert.Equal(t, before, m.ActiveCount())

	// Twice in a row is safe too.
	s, err := m.GetOrCreate("w1")
	require.NoError(t, err)
	m.Terminate("w1")
	m.Terminate("w1")
	assert.Equal(t, 1, s.Handle.(*stubHandle).quits)
}

func TestTerminateSwallowsQuitFailure(t *testing.T) {
	m, _ := newTestManager(t, nil)
	m.buildHandle = func(Variant, BuildOptions) (Handle, error) {
		return &stubHandle{quitErr: errors.New("connection refused")}, nil
	}

	_, err := m.GetOrCreate("w1")
	require.NoError(t, err)

	// Must not panic or leave the entry behind.
	m.Terminate("w1")
	assert.Equal(t, 0, m.ActiveCount())
}

func TestActiveCountTracksLifecycle(t *testing.T) {
	m, _ := newTestManager(t, nil)

	base := m.ActiveCount()
	_, err := m.GetOrCreate("w1")
	require.NoError(t, err)
	assert.Equal(t, base+1, m.ActiveCount())

	m.Terminate("w1")
	assert.Equal(t, base, m.ActiveCount())
}

func TestCreateWithVariantReplacesExistingSession(t *testing.T) {
	m, built := newTestManager(t, nil)

	first, err := m.GetOrCreate("w1")
	require.NoError(t, err)

	second, err := m.CreateWithVariant("w1", VariantFirefoxHeadless)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 1, first.Handle.(*stubHandle).quits, "previous session must be quit, not leaked")
	assert.Equal(t, int64(2), built.Load())
	assert.Equal(t, 1, m.ActiveCount())
	assert.Equal(t, VariantFirefoxHeadless, second.Variant)

	label, ok := m.VariantLabel("w1")
	require.True(t, ok)
	assert.Equal(t, "firefox-headless", label)
}

func TestCreateWithVariantParallelWorkers(t *testing.T) {
	m, _ := newTestManager(t, nil)
	base := m.ActiveCount()

	var wg sync.WaitGroup
	for _, worker := range []string{"t1", "t2"} {
		wg.Add(1)
		go func(worker string) {
			defer wg.Done()
			s, err := m.CreateWithVariant(worker, VariantChromeHeadless)
			if err != nil {
				t.Error(err)
				return
			}
			if _, ferr := s.Handle.Find(ByCSS("#ready")); !errors.Is(ferr, ErrNoSuchElement) {
				t.Errorf("unexpected find result: %v", ferr)
			}
			m.Terminate(worker)
		}(worker)
	}
	wg.Wait()

	assert.Equal(t, base, m.ActiveCount())
}

func TestSetAdoptsExternalHandle(t *testing.T) {
	m, _ := newTestManager(t, nil)

	adopted := &stubHandle{}
	s := m.Set("w1", adopted, VariantEdge)

	got, ok := m.Get("w1")
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Same(t, Handle(adopted), got.Handle)

	label, ok := m.VariantLabel("w1")
	require.True(t, ok)
	assert.Equal(t, "edge", label)
}

func TestGetOrCreateUsesConfiguredVariant(t *testing.T) {
	cfg := config.Default()
	cfg.Browser = "Firefox"
	cfg.Headless = true

	m, _ := newTestManager(t, cfg)
	s, err := m.GetOrCreate("w1")
	require.NoError(t, err)
	assert.Equal(t, VariantFirefoxHeadless, s.Variant)
}

func TestGetOrCreateRejectsUnknownBrowser(t *testing.T) {
	cfg := config.Default()
	cfg.Browser = "netscape"

	m, _ := newTestManager(t, cfg)
	_, err := m.GetOrCreate("w1")
	assert.ErrorIs(t, err, ErrUnsupportedVariant)
	assert.Equal(t, 0, m.ActiveCount())
}

func TestTerminateAll(t *testing.T) {
	m, _ := newTestManager(t, nil)
	for _, worker := range []string{"a", "b", "c"} {
		_, err := m.GetOrCreate(worker)
		require.NoError(t, err)
	}
	require.Equal(t, 3, m.ActiveCount())
	assert.Len(t, m.Workers(), 3)

	m.TerminateAll()
	assert.Equal(t, 0, m.ActiveCount())
}

func TestVariantLabelAbsentWithoutSession(t *testing.T) {
	m, _ := newTestManager(t, nil)
	_, ok := m.VariantLabel("w1")
	assert.False(t, ok)
}
