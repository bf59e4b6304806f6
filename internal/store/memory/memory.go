// Package memory is an in-memory store adapter with the same contract as
// gormstore. It backs the test suites; no production wiring uses it.
package memory

import (
	"context"
	"sync"

	"github.com/psgpraveen/PolicyPilot/internal/store"
)

type Store struct {
	mu         sync.RWMutex
	users      map[string]store.User
	clients    map[string]store.Client
	categories map[string]store.Category
	policies   map[string]store.Policy
}

func NewStore() *Store {
	return &Store{
		users:      make(map[string]store.User),
		clients:    make(map[string]store.Client),
		categories: make(map[string]store.Category),
		policies:   make(map[string]store.Policy),
	}
}

func (s *Store) CreateUser(_ context.Context, user *store.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return store.ErrDuplicateEmail
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UserByID(_ context.Context, id string) (*store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (s *Store) CreateClient(_ context.Context, client *store.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client.ID] = *client
	return nil
}

func (s *Store) ClientsByOwner(_ context.Context, ownerID string) ([]store.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := []store.Client{}
	for _, client := range s.clients {
		if client.OwnerID == ownerID {
			clients = append(clients, client)
		}
	}
	return clients, nil
}

func (s *Store) ClientByID(_ context.Context, id string) (*store.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, ok := s.clients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := client
	return &copied, nil
}

func (s *Store) UpdateClient(_ context.Context, client *store.Client) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[client.ID]; !ok {
		return false, nil
	}
	s.clients[client.ID] = *client
	return true, nil
}

func (s *Store) DeleteClient(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[id]; !ok {
		return false, nil
	}
	delete(s.clients, id)
	return true, nil
}

func (s *Store) CreateCategory(_ context.Context, category *store.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[category.ID] = *category
	return nil
}

func (s *Store) CategoriesByOwner(_ context.Context, ownerID string) ([]store.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := []store.Category{}
	for _, category := range s.categories {
		if category.OwnerID == ownerID {
			categories = append(categories, category)
		}
	}
	return categories, nil
}

func (s *Store) CategoryByID(_ context.Context, id string) (*store.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, ok := s.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := category
	return &copied, nil
}

func (s *Store) UpdateCategory(_ context.Context, category *store.Category) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[category.ID]; !ok {
		return false, nil
	}
	s.categories[category.ID] = *category
	return true, nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return false, nil
	}
	delete(s.categories, id)
	return true, nil
}

func (s *Store) CreatePolicy(_ context.Context, policy *store.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[policy.ID] = clonePolicy(policy)
	return nil
}

func (s *Store) PoliciesByOwner(_ context.Context, ownerID string) ([]store.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	policies := []store.Policy{}
	for id := range s.policies {
		policy := s.policies[id]
		if policy.OwnerID == ownerID {
			policies = append(policies, clonePolicy(&policy))
		}
	}
	return policies, nil
}

func (s *Store) PolicyByID(_ context.Context, id string) (*store.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	policy, ok := s.policies[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := clonePolicy(&policy)
	return &copied, nil
}

func (s *Store) UpdatePolicy(_ context.Context, policy *store.Policy) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[policy.ID]; !ok {
		return false, nil
	}
	s.policies[policy.ID] = clonePolicy(policy)
	return true, nil
}

func (s *Store) DeletePolicy(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.policies[id]; !ok {
		return false, nil
	}
	delete(s.policies, id)
	return true, nil
}

// clonePolicy copies the attachment pointer's target so callers never hold
// a live reference into the map.
func clonePolicy(p *store.Policy) store.Policy {
	copied := *p
	if p.Attachment != nil {
		attachment := *p.Attachment
		copied.Attachment = &attachment
	}
	return copied
}
