package testutil

import (
	"sync"

	"github.com/zalando/go-keyring"
)

// MemorySecrets is an in-memory secret store. Set/Get/Delete fail with Err
// when it is non-nil, which lets tests simulate a platform without a keyring.
// SetErr fails writes only.
type MemorySecrets struct {
	mu     sync.Mutex
	data   map[string]string
	Err    error
	SetErr error
}

func NewMemorySecrets() *MemorySecrets {
	return &MemorySecrets{data: make(map[string]string)}
}

func (m *MemorySecrets) Get(service, user string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	v, ok := m.data[service+"/"+user]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return v, nil
}

func (m *MemorySecrets) Set(service, user, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.SetErr != nil {
		return m.SetErr
	}
	m.data[service+"/"+user] = secret
	return nil
}

func (m *MemorySecrets) Delete(service, user string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.data[service+"/"+user]; !ok {
		return keyring.ErrNotFound
	}
	delete(m.data, service+"/"+user)
	return nil
}
