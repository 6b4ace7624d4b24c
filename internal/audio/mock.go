package audio

import (
	"sync"
	"time"
)

// MockAdapter is a test double for Adapter. Opened resources are kept so
// tests can emit events on them, including on already-replaced resources to
// exercise stale-event handling.
type MockAdapter struct {
	mu        sync.Mutex
	openErr   error
	openPaths []string
	resources []*MockResource
}

// NewMockAdapter creates a mock adapter for testing.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{}
}

func (a *MockAdapter) Open(path string) (Resource, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.openPaths = append(a.openPaths, path)
	if a.openErr != nil {
		return nil, a.openErr
	}
	r := &MockResource{
		path:     path,
		duration: 3 * time.Minute,
		events:   make(chan Event, 8),
	}
	a.resources = append(a.resources, r)
	return r, nil
}

func (a *MockAdapter) Close() error { return nil }

// SetOpenError makes subsequent Open calls fail.
func (a *MockAdapter) SetOpenError(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.openErr = err
}

// OpenPaths returns every path passed to Open, in order.
func (a *MockAdapter) OpenPaths() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.openPaths))
	copy(out, a.openPaths)
	return out
}

// Resource returns the i-th opened resource.
func (a *MockAdapter) Resource(i int) *MockResource {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i < 0 || i >= len(a.resources) {
		return nil
	}
	return a.resources[i]
}

// LastResource returns the most recently opened resource.
func (a *MockAdapter) LastResource() *MockResource {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.resources) == 0 {
		return nil
	}
	return a.resources[len(a.resources)-1]
}

// MockResource is a scriptable playback resource.
type MockResource struct {
	mu        sync.Mutex
	path      string
	position  time.Duration
	duration  time.Duration
	volumes   []float64
	rates     []float64
	seeks     []time.Duration
	playCalls int
	pauses    int
	closed    bool
	events    chan Event
}

func (r *MockResource) Play() {
	r.mu.Lock()
	r.playCalls++
	r.mu.Unlock()
	r.Emit(Event{Kind: EventPlaying})
}

func (r *MockResource) Pause() {
	r.mu.Lock()
	r.pauses++
	r.mu.Unlock()
	r.Emit(Event{Kind: EventPaused})
}

func (r *MockResource) Seek(pos time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seeks = append(r.seeks, pos)
	r.position = pos
}

func (r *MockResource) SetVolume(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.volumes = append(r.volumes, v)
}

func (r *MockResource) SetRate(rate float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rates = append(r.rates, rate)
}

func (r *MockResource) Position() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.position
}

func (r *MockResource) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.duration
}

func (r *MockResource) Events() <-chan Event { return r.events }

func (r *MockResource) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	close(r.events)
}

// Emit delivers an event unless the resource is closed.
func (r *MockResource) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.events <- e:
	default:
	}
}

// Test inspection helpers.

func (r *MockResource) Path() string { return r.path }

func (r *MockResource) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *MockResource) PlayCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playCalls
}

func (r *MockResource) Volumes() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]float64, len(r.volumes))
	copy(out, r.volumes)
	return out
}

func (r *MockResource) Rates() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]float64, len(r.rates))
	copy(out, r.rates)
	return out
}

func (r *MockResource) Seeks() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]time.Duration, len(r.seeks))
	copy(out, r.seeks)
	return out
}

func (r *MockResource) SetDuration(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.duration = d
}

func (r *MockResource) SetPosition(p time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.position = p
}

// Compile-time interface checks.
var (
	_ Adapter  = (*MockAdapter)(nil)
	_ Resource = (*MockResource)(nil)
	_ Adapter  = (*beepAdapter)(nil)
	_ Resource = (*beepResource)(nil)
)
