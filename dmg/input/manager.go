// Package input turns backend key events into joypad state and emulator
// commands.
package input

import (
	"sync"
	"time"

	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/valerio/go-dmg/dmg/input/event"
	"github.com/valerio/go-dmg/dmg/memory"
)

const (
	// debounceDuration is the minimum time between two presses of an emulator command
	debounceDuration = 300 * time.Millisecond
)

// Manager holds the joypad vector and the callbacks bound to emulator actions.
// Backends may trigger from their own event goroutine.
type Manager struct {
	mu            sync.Mutex
	handlers      map[action.Action]map[event.Type][]func()
	lastTriggered map[action.Action]time.Time
	state         [memory.JoypadKeyCount]bool
	now           func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		handlers:      make(map[action.Action]map[event.Type][]func()),
		lastTriggered: make(map[action.Action]time.Time),
		now:           time.Now,
	}
}

// On registers a callback for a specific action and event type
func (m *Manager) On(act action.Action, evt event.Type, callback func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handlers[act] == nil {
		m.handlers[act] = make(map[event.Type][]func())
	}
	m.handlers[act][evt] = append(m.handlers[act][evt], callback)
}

// Trigger handles the given action and event type. Game Boy buttons update
// the joypad vector, emulator actions run their callbacks.
func (m *Manager) Trigger(act action.Action, evt event.Type) {
	if key, ok := act.JoypadKey(); ok {
		m.mu.Lock()
		switch evt {
		case event.Press, event.Hold:
			m.state[key] = true
		case event.Release:
			m.state[key] = false
		}
		m.mu.Unlock()
		return
	}

	m.mu.Lock()
	if evt == event.Press {
		now := m.now()
		if now.Sub(m.lastTriggered[act]) < debounceDuration {
			m.mu.Unlock()
			return
		}
		m.lastTriggered[act] = now
	}
	callbacks := append([]func(){}, m.handlers[act][evt]...)
	m.mu.Unlock()

	// callbacks may call back into the manager
	for _, callback := range callbacks {
		callback()
	}
}

// State returns the current joypad vector.
func (m *Manager) State() [memory.JoypadKeyCount]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ReleaseAll clears every held button, for backends that only see key presses.
func (m *Manager) ReleaseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = [memory.JoypadKeyCount]bool{}
}
