package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/mealmate/internal/common"
	"github.com/dmitrijs2005/mealmate/internal/logging"
	"github.com/dmitrijs2005/mealmate/internal/server/recipes"
	"github.com/go-chi/chi/v5"
)

const recipeUnavailable = "Recipe service unavailable"

// MealsHandler serves /meals from the recipe catalogue.
type MealsHandler struct {
	lookup recipes.Lookup
	auth   func(http.Handler) http.Handler
	logger logging.Logger
}

func NewMealsHandler(lookup recipes.Lookup, auth func(http.Handler) http.Handler, logger logging.Logger) *MealsHandler {
	return &MealsHandler{lookup: lookup, auth: auth, logger: logger}
}

func (h *MealsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.auth)

	r.Get("/categories", h.Categories)
	r.Get("/category/{category}", h.ByCategory)
	r.Get("/search", h.Search)
	r.Get("/{mealId}", h.Get)

	return r
}

func (h *MealsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.lookup.Categories(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "recipe categories failed", "error", err)
		writeMessage(w, http.StatusBadGateway, recipeUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]recipes.Category{"categories": cats})
}

func (h *MealsHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	meals, err := h.lookup.MealsByCategory(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		h.logger.Error(r.Context(), "recipe category listing failed", "error", err)
		writeMessage(w, http.StatusBadGateway, recipeUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]recipes.MealSummary{"meals": meals})
}

func (h *MealsHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeMessage(w, http.StatusBadRequest, "q is required")
		return
	}

	meals, err := h.lookup.Search(r.Context(), q)
	if err != nil {
		h.logger.Error(r.Context(), "recipe search failed", "error", err)
		writeMessage(w, http.StatusBadGateway, recipeUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]recipes.Meal{"meals": meals})
}

func (h *MealsHandler) Get(w http.ResponseWriter, r *http.Request) {
	meal, err := h.lookup.MealByID(r.Context(), chi.URLParam(r, "mealId"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeMessage(w, http.StatusNotFound, "Meal not found")
			return
		}
		h.logger.Error(r.Context(), "recipe lookup failed", "error", err)
		writeMessage(w, http.StatusBadGateway, recipeUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*recipes.Meal{"meal": meal})
}
