package account

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu       sync.RWMutex
	byMobile map[string]Account
}

// NewMemoryRepository builds an in-memory account store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{byMobile: make(map[string]Account)}
}

func (r *memoryRepository) Create(_ context.Context, a Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uuid.NewString()
	r.byMobile[a.MobileNumber] = a
	return a, nil
}

func (r *memoryRepository) FindByMobileNumber(_ context.Context, mobileNumber string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byMobile[mobileNumber]
	if !ok {
		return Account{}, ErrNoAccount
	}
	return a, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.byMobile {
		if a.ID == id {
			return a, nil
		}
	}
	return Account{}, ErrNoAccount
}

func (r *memoryRepository) ReplacePending(_ context.Context, id string, profile Profile, credentialHash []byte, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for mobile, a := range r.byMobile {
		if a.ID == id && a.State == StatePending {
			a.Name = profile.Name
			a.Email = profile.Email
			a.CredentialHash = credentialHash
			a.CredentialUpdatedAt = at
			r.byMobile[mobile] = a
			return nil
		}
	}
	return ErrNoAccount
}

func (r *memoryRepository) Activate(_ context.Context, mobileNumber string) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byMobile[mobileNumber]
	if !ok {
		return Account{}, ErrNoAccount
	}
	a.State = StateActive
	r.byMobile[mobileNumber] = a
	return a, nil
}

func (r *memoryRepository) UpdateCredential(_ context.Context, id string, credentialHash []byte, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for mobile, a := range r.byMobile {
		if a.ID == id {
			a.CredentialHash = credentialHash
			a.CredentialUpdatedAt = at
			r.byMobile[mobile] = a
			return nil
		}
	}
	return ErrNoAccount
}
