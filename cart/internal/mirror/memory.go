package mirror

import (
	"context"
	"sync"
)

type Memory struct {
	mu    sync.RWMutex
	slots map[Slot][]byte
}

func NewMemory() *Memory {
	return &Memory{slots: map[Slot][]byte{}}
}

func (m *Memory) Read(_ context.Context, slot Slot) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payload, ok := m.slots[slot]
	if !ok {
		return nil, ErrEmptySlot
	}
	return append([]byte(nil), payload...), nil
}

func (m *Memory) Write(_ context.Context, slot Slot, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = append([]byte(nil), payload...)
	return nil
}

func (m *Memory) Wipe(_ context.Context, slot Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, slot)
	return nil
}
