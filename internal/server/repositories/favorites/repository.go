package favorites

import (
	"context"

	"github.com/dmitrijs2005/mealmate/internal/server/models"
)

// Repository persists favorite meals per account.
type Repository interface {
	Add(ctx context.Context, fav *models.FavoriteMeal) (*models.FavoriteMeal, error)
	Exists(ctx context.Context, userID, mealName string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]models.FavoriteMeal, error)
	// Remove deletes the favorite only when it belongs to userID and
	// returns the number of rows deleted.
	Remove(ctx context.Context, userID, favoriteID string) (int64, error)
}
