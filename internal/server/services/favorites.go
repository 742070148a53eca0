package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mealmate/internal/common"
	"github.com/dmitrijs2005/mealmate/internal/dbx"
	"github.com/dmitrijs2005/mealmate/internal/server/models"
)

// AddFavorite saves meal for the account. The existence check and the insert
// share one transaction and the (user_id, meal_name) unique index catches
// concurrent inserts, so a meal is stored at most once per account.
func (s *UserService) AddFavorite(ctx context.Context, id, meal, category, image string) (*models.FavoriteMeal, error) {
	meal = strings.TrimSpace(meal)
	if id == "" || meal == "" {
		return nil, common.ErrorValidation
	}

	exists, err := s.IsMealInFavorites(ctx, id, meal)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.ErrorAlreadyExists
	}

	stored, err := s.images.Put(ctx, id, image)
	if err != nil {
		return nil, fmt.Errorf("error storing image: %w", err)
	}

	fav := &models.FavoriteMeal{UserID: id, MealName: meal, CategoryType: category, MealImage: stored}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Favorites(tx)

		exists, err := repo.Exists(ctx, id, meal)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrorAlreadyExists
		}

		fav, err = repo.Add(ctx, fav)
		return err
	})
	if err != nil {
		return nil, err
	}
	return fav, nil
}

func (s *UserService) IsMealInFavorites(ctx context.Context, id, meal string) (bool, error) {
	return s.repomanager.Favorites(s.db).Exists(ctx, id, meal)
}

func (s *UserService) ListFavorites(ctx context.Context, id string) ([]models.FavoriteMeal, error) {
	return s.repomanager.Favorites(s.db).ListByUser(ctx, id)
}

// RemoveFavorite deletes the favorite if it belongs to the account and
// reports whether anything was deleted.
func (s *UserService) RemoveFavorite(ctx context.Context, id, favoriteID string) (bool, error) {
	n, err := s.repomanager.Favorites(s.db).Remove(ctx, id, favoriteID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
