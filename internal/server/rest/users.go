package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/mealmate/internal/common"
	"github.com/dmitrijs2005/mealmate/internal/logging"
	"github.com/dmitrijs2005/mealmate/internal/server/models"
	"github.com/dmitrijs2005/mealmate/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Directory is the user directory as seen by the HTTP layer.
type Directory interface {
	IsUsernameTaken(ctx context.Context, name string) (bool, error)
	IsEmailTaken(ctx context.Context, email string) (bool, error)
	CreateAccount(ctx context.Context, name, email, password string) (*models.Account, error)
	IssueToken(userID string) (string, error)
	ValidateCredentials(ctx context.Context, name, password string) (*models.Account, error)
	PatchAccountField(ctx context.Context, id string, field models.AccountField, value string) (bool, error)
	SavePreferences(ctx context.Context, id, category string) (bool, error)
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	CheckPassword(ctx context.Context, id, password string) (bool, error)
	AddFavorite(ctx context.Context, id, meal, category, image string) (*models.FavoriteMeal, error)
	IsMealInFavorites(ctx context.Context, id, meal string) (bool, error)
	ListFavorites(ctx context.Context, id string) ([]models.FavoriteMeal, error)
	RemoveFavorite(ctx context.Context, id, favoriteID string) (bool, error)
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signupResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
	Token   string `json:"token"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	UserID  string `json:"userId"`
}

type preferencesRequest struct {
	UserID       string `json:"userId" validate:"required"`
	CategoryType string `json:"categoryType" validate:"required"`
}

type addFavoriteRequest struct {
	UserID       string `json:"userId" validate:"required"`
	Meal         string `json:"meal" validate:"required"`
	CategoryType string `json:"categoryType"`
	MealImage    string `json:"mealImage"`
}

type updateRequest struct {
	UserID              string `json:"userId" validate:"required"`
	NewUsername         string `json:"newUsername"`
	NewUseremail        string `json:"newUseremail"`
	NewUserCategoryType string `json:"newUserCategoryType"`
	NewPassword         string `json:"newPassword"`
}

type userView struct {
	ID           string  `json:"user_id"`
	Name         string  `json:"user_name"`
	Email        string  `json:"user_email"`
	CategoryType *string `json:"user_categorytype"`
}

type favoriteView struct {
	ID           string `json:"favorite_meal_id"`
	UserID       string `json:"user_id"`
	MealName     string `json:"meal_name"`
	CategoryType string `json:"meal_categorytype"`
	MealImage    string `json:"meal_image"`
}

// patchRoute describes one of the single-field profile updates.
type patchRoute struct {
	field    models.AccountField
	value    func(updateRequest) string
	ok       string
	failed   string
	internal string
}

var patchRoutes = map[string]patchRoute{
	"/updateUsername": {
		field:    models.AccountFieldName,
		value:    func(r updateRequest) string { return r.NewUsername },
		ok:       "Username updated successfully",
		failed:   "Failed to update username",
		internal: "An error occurred while updating username",
	},
	"/updateUseremail": {
		field:    models.AccountFieldEmail,
		value:    func(r updateRequest) string { return r.NewUseremail },
		ok:       "Useremail updated successfully",
		failed:   "Failed to update useremail",
		internal: "An error occurred while updating useremail",
	},
	"/updateUserCategoryType": {
		field:    models.AccountFieldCategory,
		value:    func(r updateRequest) string { return r.NewUserCategoryType },
		ok:       "Usercategory updated successfully",
		failed:   "Failed to update usercategory",
		internal: "An error occurred while updating usercategory",
	},
	"/updateUserPassword": {
		field:    models.AccountFieldPassword,
		value:    func(r updateRequest) string { return r.NewPassword },
		ok:       "Password updated successfully",
		failed:   "Failed to update password",
		internal: "An error occurred while updating password",
	},
}

// UserHandler serves /user.
type UserHandler struct {
	directory Directory
	auth      func(http.Handler) http.Handler
	validate  *validator.Validate
	logger    logging.Logger
}

func NewUserHandler(directory Directory, auth func(http.Handler) http.Handler, logger logging.Logger) *UserHandler {
	return &UserHandler{
		directory: directory,
		auth:      auth,
		validate:  newValidator(),
		logger:    logger,
	}
}

func (h *UserHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Get("/checkUsername", h.CheckUsername)

	r.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/checkEmail", h.CheckEmail)
		r.Post("/addpreferences", h.AddPreferences)
		r.Post("/addfavorite", h.AddFavorite)
		r.Get("/isMealInFavorites", h.IsMealInFavorites)
		r.Get("/getFavoriteMeals", h.GetFavoriteMeals)
		r.Delete("/removefavorite/{userId}/{favoritemealId}", h.RemoveFavorite)
		r.Get("/getUserInfo", h.GetUserInfo)
		for path, route := range patchRoutes {
			r.Put(path, h.patch(route))
		}
		r.Get("/checkPassword/{userId}", h.CheckPassword)
	})

	return r
}

// owns reports whether userID is the authenticated account and writes the
// error response when it is not.
func (h *UserHandler) owns(w http.ResponseWriter, r *http.Request, userID string) bool {
	if userID == "" {
		writeMessage(w, http.StatusBadRequest, "userId is required")
		return false
	}
	subject, ok := UserIDFromContext(r.Context())
	if !ok || subject != userID {
		writeMessage(w, http.StatusForbidden, "Forbidden")
		return false
	}
	return true
}

func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if status, msg, err := decodeBody(r, h.validate, &req); err != nil {
		writeMessage(w, status, msg)
		return
	}

	account, err := h.directory.CreateAccount(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			writeMessage(w, http.StatusBadRequest, "Email already in use")
		case errors.Is(err, services.ErrUsernameTaken):
			writeMessage(w, http.StatusBadRequest, "Username already in use")
		case errors.Is(err, common.ErrorValidation):
			writeMessage(w, http.StatusBadRequest, "Name, email and password are required")
		default:
			h.logger.Error(r.Context(), "signup failed", "error", err)
			writeMessage(w, http.StatusInternalServerError, "An error occurred during registration")
		}
		return
	}

	token, err := h.directory.IssueToken(account.ID)
	if err != nil {
		h.logger.Error(r.Context(), "token issue failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "An error occurred during registration")
		return
	}

	writeJSON(w, http.StatusOK, signupResponse{Message: "Registration successful", UserID: account.ID, Token: token})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if status, msg, err := decodeBody(r, h.validate, &req); err != nil {
		writeMessage(w, status, msg)
		return
	}

	account, err := h.directory.ValidateCredentials(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Error(r.Context(), "login failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "An error occurred during login")
		return
	}
	if account == nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := h.directory.IssueToken(account.ID)
	if err != nil {
		h.logger.Error(r.Context(), "token issue failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "An error occurred during login")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Message: "Login successful", Token: token, UserID: account.ID})
}

func (h *UserHandler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("username")
	if name == "" {
		writeMessage(w, http.StatusBadRequest, "username is required")
		return
	}

	taken, err := h.directory.IsUsernameTaken(r.Context(), name)
	if err != nil {
		h.logger.Error(r.Context(), "username check failed", "error", err)
		writeInternal(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isTaken": taken})
}

func (h *UserHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeMessage(w, http.StatusBadRequest, "email is required")
		return
	}

	taken, err := h.directory.IsEmailTaken(r.Context(), email)
	if err != nil {
		h.logger.Error(r.Context(), "email check failed", "error", err)
		writeInternal(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isTaken": taken})
}

func (h *UserHandler) AddPreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if status, msg, err := decodeBody(r, h.validate, &req); err != nil {
		writeMessage(w, status, msg)
		return
	}
	if !h.owns(w, r, req.UserID) {
		return
	}

	ok, err := h.directory.SavePreferences(r.Context(), req.UserID, req.CategoryType)
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeMessage(w, http.StatusBadRequest, "Failed to save preferences")
	case err != nil:
		h.logger.Error(r.Context(), "save preferences failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "An error occurred while saving preferences")
	case !ok:
		writeMessage(w, http.StatusBadRequest, "Failed to save preferences")
	default:
		writeMessage(w, http.StatusOK, "Preferences saved successfully")
	}
}

func (h *UserHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var req addFavoriteRequest
	if status, msg, err := decodeBody(r, h.validate, &req); err != nil {
		writeMessage(w, status, msg)
		return
	}
	if !h.owns(w, r, req.UserID) {
		return
	}

	_, err := h.directory.AddFavorite(r.Context(), req.UserID, req.Meal, req.CategoryType, req.MealImage)
	switch {
	case errors.Is(err, common.ErrorAlreadyExists):
		writeMessage(w, http.StatusBadRequest, "Meal already in favorites")
	case errors.Is(err, common.ErrorValidation):
		writeMessage(w, http.StatusBadRequest, "Failed to add meal to favorites")
	case err != nil:
		h.logger.Error(r.Context(), "add favorite failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "An error occurred while adding meal to favorites")
	default:
		writeMessage(w, http.StatusOK, "Meal added to favorites successfully")
	}
}

func (h *UserHandler) IsMealInFavorites(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !h.owns(w, r, q.Get("userId")) {
		return
	}
	meal := q.Get("mealName")
	if meal == "" {
		writeMessage(w, http.StatusBadRequest, "mealName is required")
		return
	}

	found, err := h.directory.IsMealInFavorites(r.Context(), q.Get("userId"), meal)
	if err != nil {
		h.logger.Error(r.Context(), "favorite check failed", "error", err)
		writeInternal(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isFavorite": found})
}

func (h *UserHandler) GetFavoriteMeals(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if !h.owns(w, r, userID) {
		return
	}

	favs, err := h.directory.ListFavorites(r.Context(), userID)
	if err != nil {
		h.logger.Error(r.Context(), "list favorites failed", "error", err)
		writeInternal(w)
		return
	}

	out := make([]favoriteView, 0, len(favs))
	for _, f := range favs {
		out = append(out, favoriteView{
			ID:           f.ID,
			UserID:       f.UserID,
			MealName:     f.MealName,
			CategoryType: f.CategoryType,
			MealImage:    f.MealImage,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *UserHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !h.owns(w, r, userID) {
		return
	}

	ok, err := h.directory.RemoveFavorite(r.Context(), userID, chi.URLParam(r, "favoritemealId"))
	switch {
	case err != nil:
		h.logger.Error(r.Context(), "remove favorite failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "An error occurred while removing meal from favorites")
	case !ok:
		writeMessage(w, http.StatusBadRequest, "Failed to remove meal from favorites")
	default:
		writeMessage(w, http.StatusOK, "Meal removed from favorites successfully")
	}
}

func (h *UserHandler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if !h.owns(w, r, userID) {
		return
	}

	account, err := h.directory.GetAccount(r.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeMessage(w, http.StatusNotFound, "Username not found")
			return
		}
		h.logger.Error(r.Context(), "get user failed", "error", err)
		writeInternal(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]userView{"user": {
		ID:           account.ID,
		Name:         account.Name,
		Email:        account.Email,
		CategoryType: account.CategoryType,
	}})
}

func (h *UserHandler) patch(route patchRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateRequest
		if status, msg, err := decodeBody(r, h.validate, &req); err != nil {
			writeMessage(w, status, msg)
			return
		}
		if !h.owns(w, r, req.UserID) {
			return
		}

		ok, err := h.directory.PatchAccountField(r.Context(), req.UserID, route.field, route.value(req))
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			writeMessage(w, http.StatusBadRequest, "Username already in use")
		case errors.Is(err, services.ErrEmailTaken):
			writeMessage(w, http.StatusBadRequest, "Email already in use")
		case errors.Is(err, common.ErrorValidation):
			writeMessage(w, http.StatusBadRequest, route.failed)
		case err != nil:
			h.logger.Error(r.Context(), "account update failed", "field", string(route.field), "error", err)
			writeMessage(w, http.StatusInternalServerError, route.internal)
		case !ok:
			writeMessage(w, http.StatusBadRequest, route.failed)
		default:
			writeMessage(w, http.StatusOK, route.ok)
		}
	}
}

func (h *UserHandler) CheckPassword(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !h.owns(w, r, userID) {
		return
	}

	q := r.URL.Query()
	password := q.Get("password")
	if password == "" {
		password = q.Get("currentPassword")
	}
	if password == "" {
		writeMessage(w, http.StatusBadRequest, "password is required")
		return
	}

	ok, err := h.directory.CheckPassword(r.Context(), userID, password)
	if err != nil {
		h.logger.Error(r.Context(), "password check failed", "error", err)
		writeInternal(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isPasswordCorrect": ok})
}
