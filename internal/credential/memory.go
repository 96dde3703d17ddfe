package credential

import (
	"context"
	"sync"
)

// Memory keeps payloads in process memory. Nothing survives the process; it
// serves tests and one-shot commands run with --credential-manager memory.
type Memory struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemory returns an empty memory manager.
func NewMemory() *Memory {
	return &Memory{data: map[string]string{}}
}

func (m *Memory) Name() string {
	return "memory"
}

func (m *Memory) Initialized() bool {
	return true
}

func (m *Memory) Load(_ context.Context, account string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[account], nil
}

func (m *Memory) Save(_ context.Context, account, payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[account] = payload
	return nil
}

func (m *Memory) Delete(_ context.Context, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, account)
	return nil
}
