package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"payperless/internal/log"
	"payperless/internal/recipes"
)

const maxRecipeBody = 1 << 20

type recipeListResponse struct {
	Recipes []recipes.Recipe `json:"recipes"`
}

type exploreResponse struct {
	Recipes  []recipes.Recipe `json:"recipes"`
	Cuisines []string         `json:"cuisines"`
}

type mealPlanResponse struct {
	Suggestions []recipes.MealSuggestion `json:"suggestions"`
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	list, err := s.recipes.List(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "failed to list recipes", log.FieldError, err.Error())
		writeError(w, r, http.StatusInternalServerError, "Could not load recipes, please try again")
		return
	}
	if list == nil {
		list = []recipes.Recipe{}
	}
	writeJSON(w, r, http.StatusOK, recipeListResponse{Recipes: list})
}

func (s *Server) handleAddRecipe(w http.ResponseWriter, r *http.Request) {
	var in recipes.Recipe
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRecipeBody))
	if err := dec.Decode(&in); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid recipe body")
		return
	}
	s.saveRecipe(w, r, in)
}

// handleSaveExplored copies a catalog recipe into the saved collection.
func (s *Server) handleSaveExplored(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.catalog.Get(r.PathValue("id"))
	if !ok {
		writeError(w, r, http.StatusNotFound, msgNotFound)
		return
	}
	s.saveRecipe(w, r, rec)
}

func (s *Server) saveRecipe(w http.ResponseWriter, r *http.Request, in recipes.Recipe) {
	saved, err := s.recipes.Add(r.Context(), in)
	switch {
	case errors.Is(err, recipes.ErrAlreadySaved):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, recipes.ErrInvalidRecipe):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case err != nil:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "failed to save recipe",
			log.FieldOperation, log.OpCreate, log.FieldError, err.Error())
		writeError(w, r, http.StatusInternalServerError, "Could not save recipe, please try again")
	default:
		writeJSON(w, r, http.StatusCreated, saved)
	}
}

func (s *Server) handleRemoveRecipe(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := s.recipes.Remove(r.Context(), id)
	switch {
	case errors.Is(err, recipes.ErrNotFound):
		writeError(w, r, http.StatusNotFound, msgNotFound)
	case err != nil:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "failed to remove recipe",
			log.FieldOperation, log.OpDelete, log.FieldRecipeID, id, log.FieldError, err.Error())
		writeError(w, r, http.StatusInternalServerError, "Could not remove recipe, please try again")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	found := s.catalog.Search(sanitizeInput(q.Get("q")), strings.TrimSpace(q.Get("cuisine")))
	if found == nil {
		found = []recipes.Recipe{}
	}
	writeJSON(w, r, http.StatusOK, exploreResponse{Recipes: found, Cuisines: s.catalog.Cuisines()})
}

func (s *Server) handleMealPlan(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, mealPlanResponse{Suggestions: s.mealPlan.Suggestions()})
}

// handleMealRecipe expands one meal suggestion into its recipe.
func (s *Server) handleMealRecipe(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.mealPlan.Recipe(r.PathValue("id"))
	if !ok {
		writeError(w, r, http.StatusNotFound, msgNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}
