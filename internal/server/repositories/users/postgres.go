// Package users stores accounts in PostgreSQL.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mealmate/internal/common"
	"github.com/dmitrijs2005/mealmate/internal/dbx"
	"github.com/dmitrijs2005/mealmate/internal/server/models"
	"github.com/google/uuid"
)

// newID is a seam for tests.
var newID = uuid.NewString

// fieldColumns whitelists the columns UpdateField may write.
var fieldColumns = map[models.AccountField]string{
	models.AccountFieldName:     "user_name",
	models.AccountFieldEmail:    "user_email",
	models.AccountFieldCategory: "user_categorytype",
	models.AccountFieldPassword: "user_password",
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts account, assigning an id when it has none. A name or email
// clash reports common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if account.ID == "" {
		account.ID = newID()
	}

	query :=
		`INSERT INTO users (id, user_name, user_email, user_password)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.Name, account.Email, account.PasswordHash).Scan(&account.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Account, error) {
	query :=
		`SELECT id, user_name, user_email, user_password, user_categorytype, created_at
		 FROM users WHERE user_name = $1`

	return r.scanOne(ctx, query, name)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query :=
		`SELECT id, user_name, user_email, user_password, user_categorytype, created_at
		 FROM users WHERE id = $1`

	return r.scanOne(ctx, query, id)
}

func (r *PostgresRepository) scanOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	a := &models.Account{}
	var category sql.NullString

	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &category, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if category.Valid {
		a.CategoryType = &category.String
	}
	return a, nil
}

func (r *PostgresRepository) ExistsByName(ctx context.Context, name, exceptID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE user_name = $1 AND id <> $2)`
	return r.exists(ctx, query, name, exceptID)
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email, exceptID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE user_email = $1 AND id <> $2)`
	return r.exists(ctx, query, email, exceptID)
}

func (r *PostgresRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return found, nil
}

// UpdateField writes value into the column backing field and reports whether
// a row was changed. The value is stored as given; hashing is the caller's job.
func (r *PostgresRepository) UpdateField(ctx context.Context, id string, field models.AccountField, value string) (bool, error) {
	column, ok := fieldColumns[field]
	if !ok {
		return false, common.ErrorValidation
	}

	query := fmt.Sprintf(`UPDATE users SET %s = $1 WHERE id = $2`, column)

	res, err := r.db.ExecContext(ctx, query, value, id)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return false, common.ErrorAlreadyExists
		}
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
