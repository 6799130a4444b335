package wallet

import (
	"context"
	"sync"

	"github.com/phonomorph/phonomorph/internal/identity"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[identity.Phone]Record
}

// NewMemoryRepository constructs an in-memory repository for tests and local runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[identity.Phone]Record)}
}

func (r *memoryRepository) Insert(_ context.Context, record Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[record.Phone]; exists {
		return ErrAlreadyExists
	}
	r.storage[record.Phone] = record
	return nil
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone identity.Phone) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.storage[phone]
	if !ok {
		return Record{}, ErrNotFound
	}
	return record, nil
}
