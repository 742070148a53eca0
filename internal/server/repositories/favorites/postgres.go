// Package favorites provides a PostgreSQL-backed repository for the meals
// an account has saved.
package favorites

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mealmate/internal/common"
	"github.com/dmitrijs2005/mealmate/internal/dbx"
	"github.com/dmitrijs2005/mealmate/internal/server/models"
	"github.com/google/uuid"
)

var newID = uuid.NewString

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add inserts fav. A second row for the same (user, meal name) violates the
// unique index and is reported as common.ErrorAlreadyExists.
func (r *PostgresRepository) Add(ctx context.Context, fav *models.FavoriteMeal) (*models.FavoriteMeal, error) {
	if fav.ID == "" {
		fav.ID = newID()
	}

	query := `
		INSERT INTO favorite_meals (favorite_meal_id, user_id, meal_name, meal_categorytype, meal_image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		fav.ID, fav.UserID, fav.MealName, fav.CategoryType, fav.MealImage).Scan(&fav.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return fav, nil
}

// Exists reports whether userID already saved a meal called mealName.
func (r *PostgresRepository) Exists(ctx context.Context, userID, mealName string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM favorite_meals WHERE user_id = $1 AND meal_name = $2
		)
	`
	var found bool
	if err := r.db.QueryRowContext(ctx, query, userID, mealName).Scan(&found); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return found, nil
}

// ListByUser returns the favorites of userID, oldest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.FavoriteMeal, error) {
	query := `
		SELECT favorite_meal_id, user_id, meal_name, meal_categorytype, meal_image, created_at
		FROM favorite_meals
		WHERE user_id = $1
		ORDER BY created_at, favorite_meal_id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.FavoriteMeal, 0)
	for rows.Next() {
		var f models.FavoriteMeal
		if err := rows.Scan(&f.ID, &f.UserID, &f.MealName, &f.CategoryType, &f.MealImage, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, userID, favoriteID string) (int64, error) {
	query := `
		DELETE FROM favorite_meals
		WHERE favorite_meal_id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, favoriteID, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
