package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/mealmate/internal/logging"
	"github.com/dmitrijs2005/mealmate/internal/server/auth"
	"github.com/dmitrijs2005/mealmate/internal/server/models"
	"github.com/dmitrijs2005/mealmate/internal/server/recipes"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

type mockDirectory struct {
	IsUsernameTakenFn     func(ctx context.Context, name string) (bool, error)
	IsEmailTakenFn        func(ctx context.Context, email string) (bool, error)
	CreateAccountFn       func(ctx context.Context, name, email, password string) (*models.Account, error)
	ValidateCredentialsFn func(ctx context.Context, name, password string) (*models.Account, error)
	PatchAccountFieldFn   func(ctx context.Context, id string, field models.AccountField, value string) (bool, error)
	SavePreferencesFn     func(ctx context.Context, id, category string) (bool, error)
	GetAccountFn          func(ctx context.Context, id string) (*models.Account, error)
	CheckPasswordFn       func(ctx context.Context, id, password string) (bool, error)
	AddFavoriteFn         func(ctx context.Context, id, meal, category, image string) (*models.FavoriteMeal, error)
	IsMealInFavoritesFn   func(ctx context.Context, id, meal string) (bool, error)
	ListFavoritesFn       func(ctx context.Context, id string) ([]models.FavoriteMeal, error)
	RemoveFavoriteFn      func(ctx context.Context, id, favoriteID string) (bool, error)
}

func (m *mockDirectory) IsUsernameTaken(ctx context.Context, name string) (bool, error) {
	return m.IsUsernameTakenFn(ctx, name)
}

func (m *mockDirectory) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	return m.IsEmailTakenFn(ctx, email)
}

func (m *mockDirectory) CreateAccount(ctx context.Context, name, email, password string) (*models.Account, error) {
	return m.CreateAccountFn(ctx, name, email, password)
}

func (m *mockDirectory) IssueToken(userID string) (string, error) {
	return auth.GenerateToken(userID, testSecret, time.Hour)
}

func (m *mockDirectory) ValidateCredentials(ctx context.Context, name, password string) (*models.Account, error) {
	return m.ValidateCredentialsFn(ctx, name, password)
}

func (m *mockDirectory) PatchAccountField(ctx context.Context, id string, field models.AccountField, value string) (bool, error) {
	return m.PatchAccountFieldFn(ctx, id, field, value)
}

func (m *mockDirectory) SavePreferences(ctx context.Context, id, category string) (bool, error) {
	return m.SavePreferencesFn(ctx, id, category)
}

func (m *mockDirectory) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return m.GetAccountFn(ctx, id)
}

func (m *mockDirectory) CheckPassword(ctx context.Context, id, password string) (bool, error) {
	return m.CheckPasswordFn(ctx, id, password)
}

func (m *mockDirectory) AddFavorite(ctx context.Context, id, meal, category, image string) (*models.FavoriteMeal, error) {
	return m.AddFavoriteFn(ctx, id, meal, category, image)
}

func (m *mockDirectory) IsMealInFavorites(ctx context.Context, id, meal string) (bool, error) {
	return m.IsMealInFavoritesFn(ctx, id, meal)
}

func (m *mockDirectory) ListFavorites(ctx context.Context, id string) ([]models.FavoriteMeal, error) {
	return m.ListFavoritesFn(ctx, id)
}

func (m *mockDirectory) RemoveFavorite(ctx context.Context, id, favoriteID string) (bool, error) {
	return m.RemoveFavoriteFn(ctx, id, favoriteID)
}

type mockLookup struct {
	CategoriesFn      func(ctx context.Context) ([]recipes.Category, error)
	MealsByCategoryFn func(ctx context.Context, category string) ([]recipes.MealSummary, error)
	SearchFn          func(ctx context.Context, query string) ([]recipes.Meal, error)
	MealByIDFn        func(ctx context.Context, id string) (*recipes.Meal, error)
}

func (m *mockLookup) Categories(ctx context.Context) ([]recipes.Category, error) {
	return m.CategoriesFn(ctx)
}

func (m *mockLookup) MealsByCategory(ctx context.Context, category string) ([]recipes.MealSummary, error) {
	return m.MealsByCategoryFn(ctx, category)
}

func (m *mockLookup) Search(ctx context.Context, query string) ([]recipes.Meal, error) {
	return m.SearchFn(ctx, query)
}

func (m *mockLookup) MealByID(ctx context.Context, id string) (*recipes.Meal, error) {
	return m.MealByIDFn(ctx, id)
}

func newTestRouter(dir Directory, lookup recipes.Lookup) http.Handler {
	if dir == nil {
		dir = &mockDirectory{}
	}
	if lookup == nil {
		lookup = &mockLookup{}
	}
	return NewRouter(Deps{
		Directory:          dir,
		Recipes:            lookup,
		Logger:             logging.NewNop(),
		SecretKey:          testSecret,
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	})
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.GenerateToken(userID, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

// do sends a request through h. A non-empty token is sent as the raw
// Authorization header.
func do(t *testing.T, h http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[messageResponse](t, rec).Message
}
