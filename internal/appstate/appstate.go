// Package appstate dispatches foreground and background transitions of the
// host app to registered listeners.
package appstate

import (
	"sync"
)

// Listeners are the callbacks of one subscription. Either may be nil.
type Listeners struct {
	OnResume  func()
	OnSuspend func()
}

// Monitor tracks whether the app is active. Repeated reports of the same
// state are collapsed, so listeners see transitions rather than the host's
// raw event stream. The zero value is not usable; use NewMonitor.
type Monitor struct {
	mu        sync.Mutex
	active    bool
	nextID    int
	listeners map[int]Listeners
}

// NewMonitor creates a monitor for an app that starts active.
func NewMonitor() *Monitor {
	return &Monitor{
		active:    true,
		listeners: make(map[int]Listeners),
	}
}

// Handle removes a subscription.
type Handle struct {
	monitor *Monitor
	id      int
	once    sync.Once
}

// Listen subscribes l to app state transitions.
func (m *Monitor) Listen(l Listeners) *Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.listeners[m.nextID] = l
	return &Handle{monitor: m, id: m.nextID}
}

// Remove unsubscribes. It is safe to call more than once.
func (h *Handle) Remove() {
	h.once.Do(func() {
		h.monitor.mu.Lock()
		defer h.monitor.mu.Unlock()
		delete(h.monitor.listeners, h.id)
	})
}

// Active reports the last state set by the host.
func (m *Monitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// SetActive records the app state reported by the host. Listeners are only
// called when the state changes, outside the monitor's lock.
func (m *Monitor) SetActive(active bool) {
	m.mu.Lock()
	if m.active == active {
		m.mu.Unlock()
		return
	}
	m.active = active
	callbacks := make([]func(), 0, len(m.listeners))
	for id := 1; id <= m.nextID; id++ {
		l, ok := m.listeners[id]
		if !ok {
			continue
		}
		if active && l.OnResume != nil {
			callbacks = append(callbacks, l.OnResume)
		}
		if !active && l.OnSuspend != nil {
			callbacks = append(callbacks, l.OnSuspend)
		}
	}
	m.mu.Unlock()

	for _, f := range callbacks {
		f()
	}
}
