// Package services contains the MealMate directory: accounts, credentials,
// profile edits and favorite meals, on top of the repositories.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/mealmate/internal/common"
	"github.com/dmitrijs2005/mealmate/internal/server/auth"
	"github.com/dmitrijs2005/mealmate/internal/server/config"
	"github.com/dmitrijs2005/mealmate/internal/server/models"
	"github.com/dmitrijs2005/mealmate/internal/server/repositories/repomanager"
)

var (
	ErrEmailTaken    = fmt.Errorf("email already in use: %w", common.ErrorAlreadyExists)
	ErrUsernameTaken = fmt.Errorf("username already in use: %w", common.ErrorAlreadyExists)
)

// ImageStore turns a submitted favorite image into the value kept on the row.
type ImageStore interface {
	Put(ctx context.Context, userID, image string) (string, error)
}

// UserService is the user directory.
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	images                      ImageStore
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	bcryptCost                  int
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, images ImageStore, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		images:                      images,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		bcryptCost:                  cfg.BcryptCost,
	}
}

func (s *UserService) IsUsernameTaken(ctx context.Context, name string) (bool, error) {
	return s.repomanager.Users(s.db).ExistsByName(ctx, name, "")
}

func (s *UserService) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	return s.repomanager.Users(s.db).ExistsByEmail(ctx, email, "")
}

// CreateAccount registers a new account. The email is checked before the
// name, so a request clashing on both reports ErrEmailTaken.
func (s *UserService) CreateAccount(ctx context.Context, name, email, password string) (*models.Account, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, common.ErrorValidation
	}

	taken, err := s.IsEmailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	taken, err = s.IsUsernameTaken(ctx, name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	account, err := s.repomanager.Users(s.db).Create(ctx, &models.Account{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return account, nil
}

// IssueToken signs a session token for the account id.
func (s *UserService) IssueToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

// ValidateCredentials returns the account when password matches, and nil
// with no error for an unknown name or a wrong password.
func (s *UserService) ValidateCredentials(ctx context.Context, name, password string) (*models.Account, error) {
	account, err := s.repomanager.Users(s.db).GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}

	ok, err := auth.ComparePassword(account.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("error comparing password: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return account, nil
}

// PatchAccountField changes one attribute of the account and reports whether
// the account was updated. Names and emails must stay unique across accounts.
func (s *UserService) PatchAccountField(ctx context.Context, id string, field models.AccountField, value string) (bool, error) {
	if !field.Valid() {
		return false, common.ErrorValidation
	}
	if field != models.AccountFieldPassword {
		value = strings.TrimSpace(value)
	}
	if value == "" {
		return false, common.ErrorValidation
	}

	repo := s.repomanager.Users(s.db)

	switch field {
	case models.AccountFieldName:
		taken, err := repo.ExistsByName(ctx, value, id)
		if err != nil {
			return false, err
		}
		if taken {
			return false, ErrUsernameTaken
		}
	case models.AccountFieldEmail:
		taken, err := repo.ExistsByEmail(ctx, value, id)
		if err != nil {
			return false, err
		}
		if taken {
			return false, ErrEmailTaken
		}
	case models.AccountFieldPassword:
		hash, err := auth.HashPassword(value, s.bcryptCost)
		if err != nil {
			return false, fmt.Errorf("error hashing password: %w", err)
		}
		value = hash
	}

	return repo.UpdateField(ctx, id, field, value)
}

// SavePreferences records the preferred meal category.
func (s *UserService) SavePreferences(ctx context.Context, id, category string) (bool, error) {
	return s.PatchAccountField(ctx, id, models.AccountFieldCategory, category)
}

func (s *UserService) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// CheckPassword reports whether password is the account's current one.
// An unknown account is simply false.
func (s *UserService) CheckPassword(ctx context.Context, id, password string) (bool, error) {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	return auth.ComparePassword(account.PasswordHash, password)
}
