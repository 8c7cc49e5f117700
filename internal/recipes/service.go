package recipes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"payperless/internal/log"
)

// Service is the saved-recipes collection.
type Service struct {
	store  Store
	logger *log.Logger
	now    func() time.Time
	newID  func() string
}

func NewService(store Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Discard()
	}
	return &Service{
		store:  store,
		logger: logger.WithComponent(log.ComponentRecipes),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// List returns saved recipes in the order they were saved.
func (s *Service) List(ctx context.Context) ([]Recipe, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return out, nil
}

// Add saves r. A missing id gets a fresh one; blank ingredient and
// instruction lines are dropped.
func (s *Service) Add(ctx context.Context, r Recipe) (Recipe, error) {
	r = r.Clone()
	r.Name = strings.TrimSpace(r.Name)
	r.ID = strings.TrimSpace(r.ID)
	if err := r.Validate(); err != nil {
		return Recipe{}, err
	}
	if r.ID == "" {
		r.ID = s.newID()
	}
	r.Ingredients = compact(r.Ingredients)
	r.Instructions = compact(r.Instructions)
	r.Tags = compact(r.Tags)
	r.SavedAt = s.now()

	if err := s.store.Put(ctx, r); err != nil {
		if errors.Is(err, ErrAlreadySaved) {
			return Recipe{}, err
		}
		return Recipe{}, fmt.Errorf("save recipe: %w", err)
	}
	s.logger.InfoContext(ctx, "recipe saved", log.FieldRecipeID, r.ID, log.FieldOperation, log.OpCreate)
	return r, nil
}

// Remove deletes a saved recipe by id.
func (s *Service) Remove(ctx context.Context, id string) error {
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete recipe %s: %w", id, err)
	}
	if !ok {
		return ErrNotFound
	}
	s.logger.InfoContext(ctx, "recipe removed", log.FieldRecipeID, id, log.FieldOperation, log.OpDelete)
	return nil
}
