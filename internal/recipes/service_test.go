package recipes_test

import (
	"context"
	"errors"
	"testing"

	"payperless/internal/recipes"
	"payperless/internal/recipes/memory"
)

func TestServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := recipes.NewService(memory.New(), nil)

	saved, err := svc.Add(ctx, recipes.Recipe{
		Name:         "  Lentil Soup ",
		Ingredients:  []string{"1 cup lentils", "  ", "2 carrots"},
		Instructions: []string{"", "Simmer for 30 minutes"},
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if saved.ID == "" || saved.SavedAt.IsZero() {
		t.Fatalf("id and saved_at should be assigned: %+v", saved)
	}
	if saved.Name != "Lentil Soup" || len(saved.Ingredients) != 2 || len(saved.Instructions) != 1 {
		t.Fatalf("blank lines should be dropped: %+v", saved)
	}

	second, err := svc.Add(ctx, recipes.Recipe{ID: "3", Name: "Classic Tiramisu"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != saved.ID || list[1].ID != second.ID {
		t.Fatalf("unexpected list order: %+v", list)
	}

	if err := svc.Remove(ctx, saved.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := svc.Remove(ctx, saved.ID); !errors.Is(err, recipes.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	list, _ = svc.List(ctx)
	if len(list) != 1 || list[0].ID != "3" {
		t.Fatalf("unexpected list after remove: %+v", list)
	}
}

func TestServiceAddDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := recipes.NewService(memory.New(), nil)

	if _, err := svc.Add(ctx, recipes.Recipe{ID: "1", Name: "Mediterranean Quinoa Bowl"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.Add(ctx, recipes.Recipe{ID: "1", Name: "Mediterranean Quinoa Bowl"}); !errors.Is(err, recipes.ErrAlreadySaved) {
		t.Fatalf("expected ErrAlreadySaved, got %v", err)
	}
}

func TestServiceAddRequiresName(t *testing.T) {
	svc := recipes.NewService(memory.New(), nil)
	if _, err := svc.Add(context.Background(), recipes.Recipe{Name: "   "}); !errors.Is(err, recipes.ErrInvalidRecipe) {
		t.Fatalf("expected ErrInvalidRecipe, got %v", err)
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	if err := store.Put(ctx, recipes.Recipe{ID: "a", Name: "A", Tags: []string{"x"}}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	list, _ := store.List(ctx)
	list[0].Tags[0] = "mutated"
	again, _ := store.List(ctx)
	if again[0].Tags[0] != "x" {
		t.Fatalf("store leaked internal slice")
	}
}

func TestValidateMessageIsSingleLine(t *testing.T) {
	err := recipes.Recipe{Name: "  "}.Validate()
	if !errors.Is(err, recipes.ErrInvalidRecipe) {
		t.Fatalf("expected ErrInvalidRecipe, got %v", err)
	}
	if got := err.Error(); got != "invalid recipe: name is required" {
		t.Fatalf("unexpected message %q", got)
	}
}
