// Package recipes manages saved recipes and the community explore catalog.
package recipes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrAlreadySaved  = errors.New("recipe is already in your collection")
	ErrNotFound      = errors.New("recipe not found")
	ErrInvalidRecipe = errors.New("invalid recipe")
)

// Author is the community member who published a catalog recipe.
type Author struct {
	Name         string `json:"name" yaml:"name"`
	EcoScore     int    `json:"eco_score" yaml:"eco_score"`
	RecipesCount int    `json:"recipes_count" yaml:"recipes_count"`
}

type Recipe struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Image        string    `json:"image,omitempty" yaml:"image"`
	Description  string    `json:"description,omitempty" yaml:"description"`
	Ingredients  []string  `json:"ingredients" yaml:"ingredients"`
	Instructions []string  `json:"instructions" yaml:"instructions"`
	Cuisine      string    `json:"cuisine,omitempty" yaml:"cuisine"`
	CookTime     string    `json:"cook_time,omitempty" yaml:"cook_time"`
	Tags         []string  `json:"tags,omitempty" yaml:"tags"`
	Likes        int       `json:"likes" yaml:"likes"`
	Author       *Author   `json:"author,omitempty" yaml:"author"`
	SavedAt      time.Time `json:"saved_at" yaml:"-"`
}

// Clone returns a deep copy.
func (r Recipe) Clone() Recipe {
	out := r
	out.Ingredients = append([]string(nil), r.Ingredients...)
	out.Instructions = append([]string(nil), r.Instructions...)
	out.Tags = append([]string(nil), r.Tags...)
	if r.Author != nil {
		a := *r.Author
		out.Author = &a
	}
	return out
}

// Validate checks the fields a saved recipe must carry.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRecipe)
	}
	return nil
}

// Store persists saved recipes.
//
// Put must return ErrAlreadySaved when a recipe with the same id exists.
// Delete reports whether a recipe was removed.
type Store interface {
	List(ctx context.Context) ([]Recipe, error)
	Put(ctx context.Context, r Recipe) error
	Delete(ctx context.Context, id string) (bool, error)
}

func compact(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
