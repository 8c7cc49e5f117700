package assets

import (
	"testing"

	"payperless/internal/core"
)

func TestDashboardReceiptsValidate(t *testing.T) {
	data, err := DashboardReceipts()
	if err != nil {
		t.Fatalf("read seed: %v", err)
	}
	raw, err := core.DecodeList(data)
	if err != nil {
		t.Fatalf("decode seed: %v", err)
	}
	results := core.Validate(raw)
	if len(results) != 8 {
		t.Fatalf("expected 8 seed receipts, got %d", len(results))
	}
	for _, r := range results {
		if !r.Valid() {
			t.Fatalf("seed record rejected: %v", r.Rejected)
		}
	}
	if results[0].Receipt.StoreName != "ALDI, Leipzig/Lausen" {
		t.Fatalf("unexpected first store %q", results[0].Receipt.StoreName)
	}
}

func TestYAMLSeedsPresent(t *testing.T) {
	for name, read := range map[string]func() ([]byte, error){
		RecipesCatalogFile: RecipesCatalog,
		MealPlanFile:       MealPlan,
	} {
		data, err := read()
		if err != nil || len(data) == 0 {
			t.Fatalf("%s missing: %v", name, err)
		}
	}
}
