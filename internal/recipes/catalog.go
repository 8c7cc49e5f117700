package recipes

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"payperless/assets"
)

// Catalog is the read-only set of community recipes.
type Catalog struct {
	recipes []Recipe
}

type catalogFile struct {
	Recipes []Recipe `yaml:"recipes"`
}

// LoadCatalog parses a YAML catalog document.
func LoadCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Recipes))
	for i, r := range f.Recipes {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		if r.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: missing id", i)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return &Catalog{recipes: f.Recipes}, nil
}

// DefaultCatalog loads the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	data, err := assets.RecipesCatalog()
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return LoadCatalog(data)
}

// Search filters by a case-insensitive term over name, description and tags,
// and by exact cuisine. Empty arguments match everything.
func (c *Catalog) Search(term, cuisine string) []Recipe {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]Recipe, 0, len(c.recipes))
	for _, r := range c.recipes {
		if cuisine != "" && r.Cuisine != cuisine {
			continue
		}
		if term != "" && !matches(r, term) {
			continue
		}
		out = append(out, r.Clone())
	}
	return out
}

func matches(r Recipe, term string) bool {
	if strings.Contains(strings.ToLower(r.Name), term) ||
		strings.Contains(strings.ToLower(r.Description), term) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// Cuisines lists distinct cuisines in catalog order.
func (c *Catalog) Cuisines() []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, r := range c.recipes {
		if r.Cuisine == "" {
			continue
		}
		if _, ok := seen[r.Cuisine]; ok {
			continue
		}
		seen[r.Cuisine] = struct{}{}
		out = append(out, r.Cuisine)
	}
	return out
}

func (c *Catalog) Get(id string) (Recipe, bool) {
	for _, r := range c.recipes {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return Recipe{}, false
}
