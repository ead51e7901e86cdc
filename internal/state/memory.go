package state

import (
	"context"
	"sync"

	"github.com/craftlore/craftlore-go/internal/addressing"
)

// Memory is an in-memory Store. Useful for tests and development; the
// commit semantics mirror the external ledger runtime, so a transaction
// aborted mid-chain leaves no trace.
type Memory struct {
	mu        sync.Mutex
	committed map[addressing.Address][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{committed: make(map[addressing.Address][]byte)}
}

// Apply runs fn against a transaction scope. Staged writes are visible
// to reads within the same scope and are committed only when fn
// succeeds. Transactions are serialized; the engine never interleaves
// listeners of different transactions.
func (m *Memory) Apply(ctx context.Context, fn func(Provider) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{store: m, staged: make(map[addressing.Address][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	for addr, data := range tx.staged {
		m.committed[addr] = data
	}
	return nil
}

// Get returns committed bytes for one address, for test assertions.
func (m *Memory) Get(addr addressing.Address) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.committed[addr]
	return data, ok
}

// Seed installs committed state directly, bypassing transaction scope.
func (m *Memory) Seed(addr addressing.Address, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed[addr] = data
}

// memoryTx overlays staged writes on the committed map.
type memoryTx struct {
	store  *Memory
	staged map[addressing.Address][]byte
}

func (t *memoryTx) Read(_ context.Context, addrs []addressing.Address) (map[addressing.Address][]byte, error) {
	out := make(map[addressing.Address][]byte, len(addrs))
	for _, addr := range addrs {
		if data, ok := t.staged[addr]; ok {
			out[addr] = data
			continue
		}
		if data, ok := t.store.committed[addr]; ok {
			out[addr] = data
		}
	}
	return out, nil
}

func (t *memoryTx) Write(_ context.Context, entries map[addressing.Address][]byte) error {
	for addr, data := range entries {
		t.staged[addr] = data
	}
	return nil
}
