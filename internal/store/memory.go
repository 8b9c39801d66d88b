package store

import (
	"context"
	"slices"
	"sync"

	"github.com/soyeahso/frontdesk/internal/domain"
)

// MemoryTokenStore is an in-process TokenStore. It keeps the encoded bytes
// so it behaves like the persistent backends, including corrupt slots.
type MemoryTokenStore struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemoryTokenStore creates an empty in-memory store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Save(_ context.Context, rec domain.TokenRecord) error {
	data, err := domain.EncodeTokenRecord(rec)
	if err != nil {
		return err
	}
	s.SetRaw(data)
	return nil
}

func (s *MemoryTokenStore) Load(_ context.Context) (domain.TokenRecord, error) {
	return decodeSlot(s.Raw())
}

func (s *MemoryTokenStore) Clear(_ context.Context) error {
	s.SetRaw(nil)
	return nil
}

// SetRaw replaces the slot contents without validation.
func (s *MemoryTokenStore) SetRaw(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = slices.Clone(data)
}

// Raw returns a copy of the slot contents, or nil when empty.
func (s *MemoryTokenStore) Raw() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data)
}
