// Package assets embeds the seed data shipped with the binaries.
package assets

import "embed"

// SeedFS holds the illustrative dashboard receipts, the explore catalog and
// the meal plan.
//
//go:embed seed/*.json seed/*.yaml
var SeedFS embed.FS

const (
	DashboardReceiptsFile = "seed/dashboard_receipts.json"
	RecipesCatalogFile    = "seed/recipes.yaml"
	MealPlanFile          = "seed/meal_plan.yaml"
)

// DashboardReceipts returns the raw demo receipt list in backend envelope form.
func DashboardReceipts() ([]byte, error) {
	return SeedFS.ReadFile(DashboardReceiptsFile)
}

// RecipesCatalog returns the explore catalog YAML.
func RecipesCatalog() ([]byte, error) {
	return SeedFS.ReadFile(RecipesCatalogFile)
}

// MealPlan returns the meal suggestions YAML.
func MealPlan() ([]byte, error) {
	return SeedFS.ReadFile(MealPlanFile)
}
