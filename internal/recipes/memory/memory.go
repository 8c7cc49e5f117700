// Package memory keeps saved recipes in process memory.
package memory

import (
	"context"
	"sync"

	"payperless/internal/recipes"
)

var _ recipes.Store = (*Store)(nil)

type Store struct {
	mu    sync.Mutex
	items []recipes.Recipe
}

func New() *Store { return &Store{} }

func (s *Store) List(_ context.Context) ([]recipes.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]recipes.Recipe, len(s.items))
	for i, r := range s.items {
		out[i] = r.Clone()
	}
	return out, nil
}

func (s *Store) Put(_ context.Context, r recipes.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.ID == r.ID {
			return recipes.ErrAlreadySaved
		}
	}
	s.items = append(s.items, r.Clone())
	return nil
}

func (s *Store) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.items {
		if r.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
