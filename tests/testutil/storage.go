package testutil

import (
	"sync"
	"testing"

	"github.com/nhle/todoboard/internal/credential"
	"github.com/nhle/todoboard/internal/storage"
)

// NewTestStorage creates an in-memory key/value store with all
// migrations applied. It automatically closes the store when the test
// completes.
func NewTestStorage(t *testing.T) *storage.Store {
	t.Helper()

	s, err := storage.NewStore(":memory:")
	if err != nil {
		t.Fatalf("creating test storage: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test storage: %v", err)
		}
	})

	return s
}

// MemoryVault is an in-memory credential.Vault for tests.
type MemoryVault struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemoryVault creates an empty vault.
func NewMemoryVault() *MemoryVault {
	return &MemoryVault{entries: make(map[string]string)}
}

func (v *MemoryVault) Get(key string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	value, ok := v.entries[key]
	if !ok {
		return "", credential.ErrNotFound
	}
	return value, nil
}

func (v *MemoryVault) Set(key, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries[key] = value
	return nil
}

func (v *MemoryVault) Delete(key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.entries, key)
	return nil
}
