package auth

import "sync"

// MockStore is an in-memory CredentialStore for tests
type MockStore struct {
	mu       sync.Mutex
	profiles map[string]*Profile

	// FailStore forces Store to report the store as unavailable
	FailStore bool
}

// NewMockStore creates an empty in-memory store
func NewMockStore() *MockStore {
	return &MockStore{profiles: make(map[string]*Profile)}
}

func (m *MockStore) Store(profile *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailStore {
		return ErrStoreUnavailable
	}
	if profile == nil || profile.Name == "" {
		return ErrInvalidProfile
	}

	copied := *profile
	m.profiles[profile.Name] = &copied
	return nil
}

func (m *MockStore) Retrieve(name string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, ok := m.profiles[name]
	if !ok {
		return nil, ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (m *MockStore) List() ([]*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

func (m *MockStore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[name]; !ok {
		return ErrProfileNotFound
	}
	delete(m.profiles, name)
	return nil
}

func (m *MockStore) Exists(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.profiles[name]
	return ok
}
