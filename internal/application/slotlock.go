package application

import (
	"sync"

	"github.com/ericfisherdev/clipseal/internal/domain/model"
)

// slotLocks hands out one mutex per slot, created on first use. Operations
// on different slots never contend.
type slotLocks struct {
	mu    sync.Mutex
	locks map[model.SlotID]*sync.Mutex
}

// lock acquires the slot's mutex and returns the matching unlock.
func (l *slotLocks) lock(slot model.SlotID) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[model.SlotID]*sync.Mutex)
	}
	m, ok := l.locks[slot]
	if !ok {
		m = &sync.Mutex{}
		l.locks[slot] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
