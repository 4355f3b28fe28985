package storage

import (
	"fmt"
	"slices"
	"sync"

	"github.com/starford/quire/internal/apperr"
)

// MemorySlot is a process-local Slot, used by tests and ephemeral runs.
type MemorySlot struct {
	mu   sync.Mutex
	name string
	data []byte
	set  bool

	// FailWrites makes every Write return ErrStorageUnavailable.
	FailWrites bool
}

// NewMemorySlot returns an empty in-memory slot.
func NewMemorySlot(name string) *MemorySlot {
	return &MemorySlot{name: name}
}

func (m *MemorySlot) Name() string { return m.name }

func (m *MemorySlot) Read() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, fmt.Errorf("storage: read %s: %w", m.name, apperr.ErrSlotEmpty)
	}
	return slices.Clone(m.data), nil
}

func (m *MemorySlot) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return fmt.Errorf("storage: write %s: %w", m.name, apperr.ErrStorageUnavailable)
	}
	m.data = slices.Clone(data)
	m.set = true
	return nil
}

func (m *MemorySlot) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	m.set = false
	return nil
}
