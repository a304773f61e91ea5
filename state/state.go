package state

import (
	"sync"
)

// Status 表示房间回合的业务状态
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPlaying Status = "playing"
	StatusEnded   Status = "ended"
)

// Machine guards the round lifecycle: waiting -> playing -> ended -> waiting.
// The terminal playing -> ended transition doubles as the idempotence guard
// for racing end-round triggers.
type Machine struct {
	current Status
	mutex   sync.RWMutex
}

func NewMachine(initial Status) *Machine {
	return &Machine{current: initial}
}

func (m *Machine) Current() Status {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.current
}

// TryTransition performs a check-and-set: it moves to `to` only when the
// current status is `from`, and reports whether the move happened. Exactly
// one of several racing callers wins.
func (m *Machine) TryTransition(from, to Status) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.current != from {
		return false
	}
	m.current = to
	return true
}

// Set forces the status unconditionally. Host-driven transitions (start,
// next) are validated by the caller before this point.
func (m *Machine) Set(status Status) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.current = status
}
