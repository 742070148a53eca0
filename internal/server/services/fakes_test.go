package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/mealmate/internal/common"
	"github.com/dmitrijs2005/mealmate/internal/dbx"
	"github.com/dmitrijs2005/mealmate/internal/server/config"
	"github.com/dmitrijs2005/mealmate/internal/server/models"
	"github.com/dmitrijs2005/mealmate/internal/server/repositories/favorites"
	"github.com/dmitrijs2005/mealmate/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// fakeUsersRepo is an in-memory users.Repository.
type fakeUsersRepo struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	nextID   int
	creates  int
	err      error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{accounts: map[string]*models.Account{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	f.creates++
	cp := *a
	cp.ID = "u-" + string(rune('0'+f.nextID))
	cp.CreatedAt = time.Now()
	f.accounts[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeUsersRepo) find(match func(*models.Account) bool) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.accounts {
		if match(a) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByName(ctx context.Context, name string) (*models.Account, error) {
	return f.find(func(a *models.Account) bool { return a.Name == name })
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return f.find(func(a *models.Account) bool { return a.ID == id })
}

func (f *fakeUsersRepo) ExistsByName(ctx context.Context, name, exceptID string) (bool, error) {
	_, err := f.find(func(a *models.Account) bool { return a.Name == name && a.ID != exceptID })
	return existsResult(err)
}

func (f *fakeUsersRepo) ExistsByEmail(ctx context.Context, email, exceptID string) (bool, error) {
	_, err := f.find(func(a *models.Account) bool { return a.Email == email && a.ID != exceptID })
	return existsResult(err)
}

func existsResult(err error) (bool, error) {
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (f *fakeUsersRepo) UpdateField(ctx context.Context, id string, field models.AccountField, value string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	a, ok := f.accounts[id]
	if !ok {
		return false, nil
	}
	switch field {
	case models.AccountFieldName:
		a.Name = value
	case models.AccountFieldEmail:
		a.Email = value
	case models.AccountFieldCategory:
		a.CategoryType = &value
	case models.AccountFieldPassword:
		a.PasswordHash = value
	}
	return true, nil
}

// fakeFavoritesRepo is an in-memory favorites.Repository.
type fakeFavoritesRepo struct {
	mu     sync.Mutex
	rows   []models.FavoriteMeal
	nextID int
	err    error
}

func (f *fakeFavoritesRepo) Add(ctx context.Context, fav *models.FavoriteMeal) (*models.FavoriteMeal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.rows {
		if r.UserID == fav.UserID && r.MealName == fav.MealName {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.nextID++
	fav.ID = "f-" + string(rune('0'+f.nextID))
	f.rows = append(f.rows, *fav)
	return fav, nil
}

func (f *fakeFavoritesRepo) Exists(ctx context.Context, userID, mealName string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	for _, r := range f.rows {
		if r.UserID == userID && r.MealName == mealName {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFavoritesRepo) ListByUser(ctx context.Context, userID string) ([]models.FavoriteMeal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []models.FavoriteMeal{}
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeFavoritesRepo) Remove(ctx context.Context, userID, favoriteID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	for i, r := range f.rows {
		if r.ID == favoriteID && r.UserID == userID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

type fakeRepoManager struct {
	u users.Repository
	f favorites.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository          { return m.u }
func (m *fakeRepoManager) Favorites(db dbx.DBTX) favorites.Repository  { return m.f }

type fakeImages struct {
	calls int
	out   string
	err   error
}

func (f *fakeImages) Put(ctx context.Context, userID, image string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.out != "" {
		return f.out, nil
	}
	return image, nil
}

type fixture struct {
	svc    *UserService
	users  *fakeUsersRepo
	favs   *fakeFavoritesRepo
	images *fakeImages
	mock   sqlmock.Sqlmock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	fx := &fixture{
		users:  newFakeUsersRepo(),
		favs:   &fakeFavoritesRepo{},
		images: &fakeImages{},
		mock:   mock,
	}
	cfg := &config.Config{
		SecretKey:                   "k",
		AccessTokenValidityDuration: time.Hour,
		BcryptCost:                  bcrypt.MinCost,
	}
	fx.svc = NewUserService(db, &fakeRepoManager{u: fx.users, f: fx.favs}, fx.images, cfg)
	return fx
}
