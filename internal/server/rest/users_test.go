package rest

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/mealmate/internal/common"
	"github.com/dmitrijs2005/mealmate/internal/server/auth"
	"github.com/dmitrijs2005/mealmate/internal/server/models"
	"github.com/dmitrijs2005/mealmate/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStorage = errors.New("db error: connection reset")

func TestRoot(t *testing.T) {
	rec := do(t, newTestRouter(nil, nil), http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ok from the server side", messageOf(t, rec))
}

func TestSignup_Success(t *testing.T) {
	calls := 0
	dir := &mockDirectory{
		CreateAccountFn: func(ctx context.Context, name, email, password string) (*models.Account, error) {
			calls++
			assert.Equal(t, "alice", name)
			assert.Equal(t, "alice@example.com", email)
			assert.Equal(t, "pw", password)
			return &models.Account{ID: "u1", Name: name, Email: email}, nil
		},
	}

	rec := do(t, newTestRouter(dir, nil), http.MethodPost, "/user/signup", "",
		`{"name":"alice","email":"alice@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)

	resp := decode[signupResponse](t, rec)
	assert.Equal(t, "Registration successful", resp.Message)
	assert.Equal(t, "u1", resp.UserID)

	id, err := auth.ParseToken(resp.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
}

func TestSignup_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		err     error
		status  int
		message string
	}{
		{"email taken", `{"name":"a","email":"a@b.co","password":"p"}`, services.ErrEmailTaken, http.StatusBadRequest, "Email already in use"},
		{"username taken", `{"name":"a","email":"a@b.co","password":"p"}`, services.ErrUsernameTaken, http.StatusBadRequest, "Username already in use"},
		{"storage", `{"name":"a","email":"a@b.co","password":"p"}`, errStorage, http.StatusInternalServerError, "An error occurred during registration"},
		{"missing password", `{"name":"a","email":"a@b.co"}`, nil, http.StatusBadRequest, "password is required"},
		{"bad json", `{`, nil, http.StatusBadRequest, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := &mockDirectory{
				CreateAccountFn: func(ctx context.Context, name, email, password string) (*models.Account, error) {
					return nil, tt.err
				},
			}
			rec := do(t, newTestRouter(dir, nil), http.MethodPost, "/user/signup", "", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, messageOf(t, rec))
		})
	}
}

func TestLogin(t *testing.T) {
	dir := &mockDirectory{
		ValidateCredentialsFn: func(ctx context.Context, name, password string) (*models.Account, error) {
			switch {
			case name == "alice" && password == "pw":
				return &models.Account{ID: "u1", Name: "alice"}, nil
			case name == "broken":
				return nil, errStorage
			}
			return nil, nil
		},
	}
	h := newTestRouter(dir, nil)

	rec := do(t, h, http.MethodPost, "/user/login", "", `{"username":"alice","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[loginResponse](t, rec)
	assert.Equal(t, "Login successful", resp.Message)
	assert.Equal(t, "u1", resp.UserID)
	id, err := auth.ParseToken(resp.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	rec = do(t, h, http.MethodPost, "/user/login", "", `{"username":"alice","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/user/login", "", `{"username":"broken","password":"pw"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An error occurred during login", messageOf(t, rec))
}

func TestCheckUsername_NoAuthAndIdempotent(t *testing.T) {
	dir := &mockDirectory{
		IsUsernameTakenFn: func(ctx context.Context, name string) (bool, error) {
			return name == "alice", nil
		},
	}
	h := newTestRouter(dir, nil)

	for range 2 {
		rec := do(t, h, http.MethodGet, "/user/checkUsername?username=alice", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decode[map[string]bool](t, rec)["isTaken"])
	}

	rec := do(t, h, http.MethodGet, "/user/checkUsername?username=bob", "", "")
	assert.False(t, decode[map[string]bool](t, rec)["isTaken"])

	rec = do(t, h, http.MethodGet, "/user/checkUsername", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckEmail_RequiresToken(t *testing.T) {
	dir := &mockDirectory{
		IsEmailTakenFn: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}
	h := newTestRouter(dir, nil)

	rec := do(t, h, http.MethodGet, "/user/checkEmail?email=a@b.co", "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Token is missing", messageOf(t, rec))

	rec = do(t, h, http.MethodGet, "/user/checkEmail?email=a@b.co", tokenFor(t, "u1"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[map[string]bool](t, rec)["isTaken"])
}

func TestForeignUserIDIsForbidden(t *testing.T) {
	h := newTestRouter(&mockDirectory{}, nil)
	tok := tokenFor(t, "u1")

	requests := []struct {
		method, target, body string
	}{
		{http.MethodPost, "/user/addpreferences", `{"userId":"u2","categoryType":"Beef"}`},
		{http.MethodPost, "/user/addfavorite", `{"userId":"u2","meal":"Pie"}`},
		{http.MethodGet, "/user/isMealInFavorites?userId=u2&mealName=Pie", ""},
		{http.MethodGet, "/user/getFavoriteMeals?userId=u2", ""},
		{http.MethodDelete, "/user/removefavorite/u2/f1", ""},
		{http.MethodGet, "/user/getUserInfo?userId=u2", ""},
		{http.MethodPut, "/user/updateUsername", `{"userId":"u2","newUsername":"x"}`},
		{http.MethodGet, "/user/checkPassword/u2?password=x", ""},
	}

	for _, rq := range requests {
		t.Run(rq.method+" "+rq.target, func(t *testing.T) {
			rec := do(t, h, rq.method, rq.target, tok, rq.body)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "Forbidden", messageOf(t, rec))
		})
	}
}

func TestAddPreferences(t *testing.T) {
	result := struct {
		ok  bool
		err error
	}{}
	dir := &mockDirectory{
		SavePreferencesFn: func(ctx context.Context, id, category string) (bool, error) {
			assert.Equal(t, "u1", id)
			assert.Equal(t, "Seafood", category)
			return result.ok, result.err
		},
	}
	h := newTestRouter(dir, nil)
	tok := tokenFor(t, "u1")
	body := `{"userId":"u1","categoryType":"Seafood"}`

	result.ok = true
	rec := do(t, h, http.MethodPost, "/user/addpreferences", tok, body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Preferences saved successfully", messageOf(t, rec))

	result.ok = false
	rec = do(t, h, http.MethodPost, "/user/addpreferences", tok, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Failed to save preferences", messageOf(t, rec))

	result.err = errStorage
	rec = do(t, h, http.MethodPost, "/user/addpreferences", tok, body)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An error occurred while saving preferences", messageOf(t, rec))
}

func TestAddFavorite(t *testing.T) {
	stored := map[string]bool{}
	dir := &mockDirectory{
		AddFavoriteFn: func(ctx context.Context, id, meal, category, image string) (*models.FavoriteMeal, error) {
			if meal == "Broken" {
				return nil, errStorage
			}
			if stored[meal] {
				return nil, common.ErrorAlreadyExists
			}
			stored[meal] = true
			return &models.FavoriteMeal{ID: "f1", UserID: id, MealName: meal, CategoryType: category, MealImage: image}, nil
		},
	}
	h := newTestRouter(dir, nil)
	tok := tokenFor(t, "u1")
	body := `{"userId":"u1","meal":"Pie","categoryType":"Beef","mealImage":"https://img/pie.jpg"}`

	rec := do(t, h, http.MethodPost, "/user/addfavorite", tok, body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Meal added to favorites successfully", messageOf(t, rec))

	rec = do(t, h, http.MethodPost, "/user/addfavorite", tok, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Meal already in favorites", messageOf(t, rec))
	assert.Len(t, stored, 1)

	rec = do(t, h, http.MethodPost, "/user/addfavorite", tok, `{"userId":"u1","meal":"Broken"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An error occurred while adding meal to favorites", messageOf(t, rec))
}

func TestIsMealInFavorites(t *testing.T) {
	dir := &mockDirectory{
		IsMealInFavoritesFn: func(ctx context.Context, id, meal string) (bool, error) {
			return meal == "Pie", nil
		},
	}
	h := newTestRouter(dir, nil)
	tok := tokenFor(t, "u1")

	rec := do(t, h, http.MethodGet, "/user/isMealInFavorites?userId=u1&mealName=Pie", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[map[string]bool](t, rec)["isFavorite"])

	rec = do(t, h, http.MethodGet, "/user/isMealInFavorites?userId=u1", tok, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetFavoriteMeals(t *testing.T) {
	dir := &mockDirectory{
		ListFavoritesFn: func(ctx context.Context, id string) ([]models.FavoriteMeal, error) {
			if id == "u2" {
				return []models.FavoriteMeal{}, nil
			}
			return []models.FavoriteMeal{{ID: "f1", UserID: id, MealName: "Pie", CategoryType: "Beef", MealImage: "img"}}, nil
		},
	}
	h := newTestRouter(dir, nil)

	rec := do(t, h, http.MethodGet, "/user/getFavoriteMeals?userId=u1", tokenFor(t, "u1"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"favorite_meal_id":"f1","user_id":"u1","meal_name":"Pie","meal_categorytype":"Beef","meal_image":"img"}]`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/user/getFavoriteMeals?userId=u2", tokenFor(t, "u2"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetFavoriteMeals_StorageError(t *testing.T) {
	dir := &mockDirectory{
		ListFavoritesFn: func(ctx context.Context, id string) ([]models.FavoriteMeal, error) {
			return nil, errStorage
		},
	}
	rec := do(t, newTestRouter(dir, nil), http.MethodGet, "/user/getFavoriteMeals?userId=u1", tokenFor(t, "u1"), "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestRemoveFavorite(t *testing.T) {
	dir := &mockDirectory{
		RemoveFavoriteFn: func(ctx context.Context, id, favoriteID string) (bool, error) {
			assert.Equal(t, "u1", id)
			return favoriteID == "f1", nil
		},
	}
	h := newTestRouter(dir, nil)
	tok := tokenFor(t, "u1")

	rec := do(t, h, http.MethodDelete, "/user/removefavorite/u1/f1", tok, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Meal removed from favorites successfully", messageOf(t, rec))

	rec = do(t, h, http.MethodDelete, "/user/removefavorite/u1/someone-elses", tok, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Failed to remove meal from favorites", messageOf(t, rec))
}

func TestGetUserInfo(t *testing.T) {
	category := "Vegan"
	dir := &mockDirectory{
		GetAccountFn: func(ctx context.Context, id string) (*models.Account, error) {
			if id != "u1" {
				return nil, common.ErrorNotFound
			}
			return &models.Account{ID: "u1", Name: "alice", Email: "a@b.co", PasswordHash: "secret-hash", CategoryType: &category}, nil
		},
	}
	h := newTestRouter(dir, nil)

	rec := do(t, h, http.MethodGet, "/user/getUserInfo?userId=u1", tokenFor(t, "u1"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":{"user_id":"u1","user_name":"alice","user_email":"a@b.co","user_categorytype":"Vegan"}}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "secret-hash")

	rec = do(t, h, http.MethodGet, "/user/getUserInfo?userId=gone", tokenFor(t, "gone"), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Username not found", messageOf(t, rec))
}

func TestPatchRoutes(t *testing.T) {
	tests := []struct {
		path  string
		body  string
		field models.AccountField
		value string
		ok    string
	}{
		{"/user/updateUsername", `{"userId":"u1","newUsername":"bob"}`, models.AccountFieldName, "bob", "Username updated successfully"},
		{"/user/updateUseremail", `{"userId":"u1","newUseremail":"b@b.co"}`, models.AccountFieldEmail, "b@b.co", "Useremail updated successfully"},
		{"/user/updateUserCategoryType", `{"userId":"u1","newUserCategoryType":"Pasta"}`, models.AccountFieldCategory, "Pasta", "Usercategory updated successfully"},
		{"/user/updateUserPassword", `{"userId":"u1","newPassword":"s3cret"}`, models.AccountFieldPassword, "s3cret", "Password updated successfully"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			dir := &mockDirectory{
				PatchAccountFieldFn: func(ctx context.Context, id string, field models.AccountField, value string) (bool, error) {
					assert.Equal(t, "u1", id)
					assert.Equal(t, tt.field, field)
					assert.Equal(t, tt.value, value)
					return true, nil
				},
			}
			rec := do(t, newTestRouter(dir, nil), http.MethodPut, tt.path, tokenFor(t, "u1"), tt.body)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.ok, messageOf(t, rec))
		})
	}
}

func TestPatchRoutes_Failures(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		body    string
		ok      bool
		err     error
		status  int
		message string
	}{
		{"name taken", "/user/updateUsername", `{"userId":"u1","newUsername":"bob"}`, false, services.ErrUsernameTaken, http.StatusBadRequest, "Username already in use"},
		{"email taken", "/user/updateUseremail", `{"userId":"u1","newUseremail":"b@b.co"}`, false, services.ErrEmailTaken, http.StatusBadRequest, "Email already in use"},
		{"empty value", "/user/updateUserCategoryType", `{"userId":"u1"}`, false, common.ErrorValidation, http.StatusBadRequest, "Failed to update usercategory"},
		{"no rows", "/user/updateUserPassword", `{"userId":"u1","newPassword":"x"}`, false, nil, http.StatusBadRequest, "Failed to update password"},
		{"storage", "/user/updateUsername", `{"userId":"u1","newUsername":"bob"}`, false, errStorage, http.StatusInternalServerError, "An error occurred while updating username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := &mockDirectory{
				PatchAccountFieldFn: func(ctx context.Context, id string, field models.AccountField, value string) (bool, error) {
					return tt.ok, tt.err
				},
			}
			rec := do(t, newTestRouter(dir, nil), http.MethodPut, tt.path, tokenFor(t, "u1"), tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, messageOf(t, rec))
		})
	}
}

func TestCheckPassword(t *testing.T) {
	dir := &mockDirectory{
		CheckPasswordFn: func(ctx context.Context, id, password string) (bool, error) {
			return password == "right", nil
		},
	}
	h := newTestRouter(dir, nil)
	tok := tokenFor(t, "u1")

	rec := do(t, h, http.MethodGet, "/user/checkPassword/u1?password=right", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[map[string]bool](t, rec)["isPasswordCorrect"])

	rec = do(t, h, http.MethodGet, "/user/checkPassword/u1?currentPassword=right", tok, "")
	assert.True(t, decode[map[string]bool](t, rec)["isPasswordCorrect"])

	rec = do(t, h, http.MethodGet, "/user/checkPassword/u1?password=wrong", tok, "")
	assert.False(t, decode[map[string]bool](t, rec)["isPasswordCorrect"])

	rec = do(t, h, http.MethodGet, "/user/checkPassword/u1", tok, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
