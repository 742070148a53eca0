package users

import (
	"context"

	"github.com/dmitrijs2005/mealmate/internal/server/models"
)

// Repository persists accounts.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByName(ctx context.Context, name string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	// ExistsByName and ExistsByEmail ignore the account with exceptID;
	// pass "" to consider every account.
	ExistsByName(ctx context.Context, name, exceptID string) (bool, error)
	ExistsByEmail(ctx context.Context, email, exceptID string) (bool, error)
	UpdateField(ctx context.Context, id string, field models.AccountField, value string) (bool, error)
}
