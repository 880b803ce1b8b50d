package scenario

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/overflow/pkg/errors"
)

// Store persists named scenarios.
type Store interface {
	// Get returns the scenario stored under name, or an error with code
	// SCENARIO_NOT_FOUND.
	Get(ctx context.Context, name string) (*Scenario, error)

	// Put stores s under s.Name, replacing any previous version.
	Put(ctx context.Context, s *Scenario) error

	// List returns the stored names in sorted order.
	List(ctx context.Context) ([]string, error)

	// Delete removes the scenario stored under name, or returns an error
	// with code SCENARIO_NOT_FOUND.
	Delete(ctx context.Context, name string) error
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu        sync.RWMutex
	scenarios map[string]*Scenario
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scenarios: make(map[string]*Scenario)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, name string) (*Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scenarios[name]
	if !ok {
		return nil, notFound(name)
	}
	return s.Clone(), nil
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, s *Scenario) error {
	if err := checkPut(s); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenarios[s.Name] = s.Clone()
	return nil
}

// List implements Store.
func (m *MemoryStore) List(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.scenarios))
	for name := range m.scenarios {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.scenarios[name]; !ok {
		return notFound(name)
	}
	delete(m.scenarios, name)
	return nil
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeScenarioNotFound, "scenario %q not found", name)
}

// checkPut requires a named, valid scenario.
func checkPut(s *Scenario) error {
	if s.Name == "" {
		return errors.New(errors.ErrCodeInvalidScenario, "scenario name is required")
	}
	return s.Validate()
}

var _ Store = (*MemoryStore)(nil)
