package recipes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/mealmate/internal/common"
)

// maxIngredients is how many strIngredientN/strMeasureN pairs TheMealDB sends.
const maxIngredients = 20

// MealDBClient talks to TheMealDB JSON API.
type MealDBClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewMealDBClient returns a client for baseURL
// (e.g. "https://www.themealdb.com/api/json/v1/1/").
func NewMealDBClient(baseURL string, httpClient *http.Client) *MealDBClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &MealDBClient{
		baseURL:    strings.TrimRight(baseURL, "/") + "/",
		httpClient: httpClient,
	}
}

func (c *MealDBClient) Categories(ctx context.Context) ([]Category, error) {
	var resp struct {
		Categories []Category `json:"categories"`
	}
	if err := c.get(ctx, "categories.php", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Categories == nil {
		return []Category{}, nil
	}
	return resp.Categories, nil
}

func (c *MealDBClient) MealsByCategory(ctx context.Context, category string) ([]MealSummary, error) {
	var resp struct {
		Meals []MealSummary `json:"meals"`
	}
	if err := c.get(ctx, "filter.php", url.Values{"c": {category}}, &resp); err != nil {
		return nil, err
	}
	if resp.Meals == nil {
		return []MealSummary{}, nil
	}
	return resp.Meals, nil
}

func (c *MealDBClient) Search(ctx context.Context, query string) ([]Meal, error) {
	var resp struct {
		Meals []map[string]any `json:"meals"`
	}
	if err := c.get(ctx, "search.php", url.Values{"s": {query}}, &resp); err != nil {
		return nil, err
	}
	meals := make([]Meal, 0, len(resp.Meals))
	for _, raw := range resp.Meals {
		meals = append(meals, mealFromRaw(raw))
	}
	return meals, nil
}

func (c *MealDBClient) MealByID(ctx context.Context, id string) (*Meal, error) {
	var resp struct {
		Meals []map[string]any `json:"meals"`
	}
	if err := c.get(ctx, "lookup.php", url.Values{"i": {id}}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Meals) == 0 {
		return nil, common.ErrorNotFound
	}
	m := mealFromRaw(resp.Meals[0])
	return &m, nil
}

func (c *MealDBClient) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("mealdb request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mealdb %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mealdb %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("mealdb %s: decode: %w", path, err)
	}
	return nil
}

// mealFromRaw flattens TheMealDB's numbered ingredient columns into a list,
// skipping empty slots.
func mealFromRaw(raw map[string]any) Meal {
	str := func(key string) string {
		s, _ := raw[key].(string)
		return strings.TrimSpace(s)
	}

	m := Meal{
		ID:           str("idMeal"),
		Name:         str("strMeal"),
		Category:     str("strCategory"),
		Area:         str("strArea"),
		Instructions: str("strInstructions"),
		Thumb:        str("strMealThumb"),
		Tags:         str("strTags"),
		Youtube:      str("strYoutube"),
		Source:       str("strSource"),
		Ingredients:  []Ingredient{},
	}

	for i := 1; i <= maxIngredients; i++ {
		n := strconv.Itoa(i)
		name := str("strIngredient" + n)
		if name == "" {
			continue
		}
		m.Ingredients = append(m.Ingredients, Ingredient{Name: name, Measure: str("strMeasure" + n)})
	}
	return m
}
