package recipes

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"payperless/assets"
)

// MealSuggestion is the card shown before a meal is expanded into its recipe.
type MealSuggestion struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
}

// MealPlan is a fixed list of meals, each with a full recipe.
type MealPlan struct {
	meals []Recipe
}

type mealPlanFile struct {
	Meals []Recipe `yaml:"meals"`
}

// LoadMealPlan parses a YAML meal plan document.
func LoadMealPlan(data []byte) (*MealPlan, error) {
	var f mealPlanFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse meal plan: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Meals))
	for i, m := range f.Meals {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("meal %d: %w", i, err)
		}
		if m.ID == "" {
			return nil, fmt.Errorf("meal %d: missing id", i)
		}
		if _, dup := seen[m.ID]; dup {
			return nil, fmt.Errorf("meal %d: duplicate id %q", i, m.ID)
		}
		seen[m.ID] = struct{}{}
	}
	return &MealPlan{meals: f.Meals}, nil
}

// DefaultMealPlan loads the embedded meal plan.
func DefaultMealPlan() (*MealPlan, error) {
	data, err := assets.MealPlan()
	if err != nil {
		return nil, fmt.Errorf("read meal plan: %w", err)
	}
	return LoadMealPlan(data)
}

// Suggestions lists the meals in plan order.
func (p *MealPlan) Suggestions() []MealSuggestion {
	out := make([]MealSuggestion, 0, len(p.meals))
	for _, m := range p.meals {
		out = append(out, MealSuggestion{ID: m.ID, Name: m.Name, Image: m.Image, Description: m.Description})
	}
	return out
}

// Recipe expands a suggestion into its recipe.
func (p *MealPlan) Recipe(id string) (Recipe, bool) {
	for _, m := range p.meals {
		if m.ID == id {
			return m.Clone(), true
		}
	}
	return Recipe{}, false
}
