package models

import "time"

// FavoriteMeal is a meal saved by an account. MealImage holds a data URI,
// a remote URL, or the object-store URL when images are offloaded.
type FavoriteMeal struct {
	ID           string
	UserID       string
	MealName     string
	CategoryType string
	MealImage    string
	CreatedAt    time.Time
}
