// Package recipes is the read-only recipe catalogue backed by TheMealDB.
package recipes

import "context"

type Category struct {
	ID          string `json:"idCategory"`
	Name        string `json:"strCategory"`
	Thumb       string `json:"strCategoryThumb"`
	Description string `json:"strCategoryDescription"`
}

// MealSummary is the short form returned when listing a category.
type MealSummary struct {
	ID    string `json:"idMeal"`
	Name  string `json:"strMeal"`
	Thumb string `json:"strMealThumb"`
}

type Ingredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

type Meal struct {
	ID           string       `json:"idMeal"`
	Name         string       `json:"strMeal"`
	Category     string       `json:"strCategory"`
	Area         string       `json:"strArea"`
	Instructions string       `json:"strInstructions"`
	Thumb        string       `json:"strMealThumb"`
	Tags         string       `json:"strTags,omitempty"`
	Youtube      string       `json:"strYoutube,omitempty"`
	Source       string       `json:"strSource,omitempty"`
	Ingredients  []Ingredient `json:"ingredients"`
}

// Lookup queries the recipe catalogue. MealByID returns common.ErrorNotFound
// for an unknown id; the list operations return an empty slice instead.
type Lookup interface {
	Categories(ctx context.Context) ([]Category, error)
	MealsByCategory(ctx context.Context, category string) ([]MealSummary, error)
	Search(ctx context.Context, query string) ([]Meal, error)
	MealByID(ctx context.Context, id string) (*Meal, error)
}
