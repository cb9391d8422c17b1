package app

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/klabast/wb-services/recept/internal/mealplan"
	"github.com/klabast/wb-services/recept/internal/recipes"
)

// RecipeFinder answers recipe searches
type RecipeFinder interface {
	FindRecipes(ctx context.Context, ingredients, diet string) ([]recipes.Recipe, error)
}

// planMutex serializes read-modify-write cycles on meal plans
var planMutex sync.Mutex

// plannerFor returns the meal planner backed by the user's storage key
func plannerFor(user *User) *mealplan.Planner {
	return mealplan.New(KVStorage(MealPlanKeyPrefix+user.ID), mealplan.WithClock(Clock))
}

// ServeIndex serves the main page HTML
func ServeIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(IndexHTML); err != nil {
		log.Printf("Error writing index HTML: %v", err)
	}
}

// HandleMe reports whether the caller is logged in
func HandleMe(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{"logged_in": false}
	if user := CurrentUser(r); user != nil {
		resp["logged_in"] = true
		resp["username"] = user.Username
	}
	writeJSON(w, http.StatusOK, resp)
}

// weekResponse is the current week plus the date-picker bounds
type weekResponse struct {
	Today string             `json:"today"`
	Min   string             `json:"min"`
	Max   string             `json:"max"`
	Days  []mealplan.DayView `json:"days"`
}

func buildWeek(p *mealplan.Planner) (weekResponse, error) {
	days, err := p.Week()
	if err != nil {
		return weekResponse{}, err
	}
	dates := p.CurrentWeekDates()
	return weekResponse{
		Today: p.Now().Format(mealplan.DateLayout),
		Min:   dates[0],
		Max:   dates[len(dates)-1],
		Days:  days,
	}, nil
}

// HandleMealPlan returns the current week's plan
func HandleMealPlan(w http.ResponseWriter, r *http.Request, user *User) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	week, err := buildWeek(plannerFor(user))
	if err != nil {
		log.Printf("Error loading meal plan: %v", err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, week)
}

// AddMeal plans a recipe title on a date of the current week
func AddMeal(w http.ResponseWriter, r *http.Request, user *User) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Date  string `json:"date"`
		Title string `json:"title"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Date == "" || req.Title == "" {
		writeJSON(w, http.StatusBadRequest, okResponse{OK: false, Error: ErrMissingDateOrTitle})
		return
	}

	planMutex.Lock()
	err := plannerFor(user).AddMeal(req.Date, req.Title)
	planMutex.Unlock()

	if errors.Is(err, mealplan.ErrNotInCurrentWeek) {
		writeJSON(w, http.StatusUnprocessableEntity, okResponse{OK: false, Error: ErrOutsideWeek})
		return
	}
	if err != nil {
		log.Printf("Error adding meal: %v", err)
		writeJSON(w, http.StatusInternalServerError, okResponse{OK: false, Error: ErrFailedToSave})
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// RemoveMeal deletes one planned entry by date and index
func RemoveMeal(w http.ResponseWriter, r *http.Request, user *User) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Date  string `json:"date"`
		Index *int   `json:"index"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Date == "" || req.Index == nil {
		writeJSON(w, http.StatusBadRequest, okResponse{OK: false, Error: ErrMissingDateOrIndex})
		return
	}

	planMutex.Lock()
	err := plannerFor(user).RemoveMeal(req.Date, *req.Index)
	planMutex.Unlock()

	if err != nil {
		log.Printf("Error removing meal: %v", err)
		writeJSON(w, http.StatusInternalServerError, okResponse{OK: false, Error: ErrFailedToSave})
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// ClearMealPlan wipes the whole plan when the request confirms it
func ClearMealPlan(w http.ResponseWriter, r *http.Request, user *User) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Confirm bool `json:"confirm"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	planMutex.Lock()
	err := plannerFor(user).ClearAll(func() bool { return req.Confirm })
	planMutex.Unlock()

	if errors.Is(err, mealplan.ErrNotConfirmed) {
		writeJSON(w, http.StatusConflict, okResponse{OK: false, Error: ErrClearNotConfirmed})
		return
	}
	if err != nil {
		log.Printf("Error clearing meal plan: %v", err)
		writeJSON(w, http.StatusInternalServerError, okResponse{OK: false, Error: ErrFailedToSave})
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// ServePlanner renders the week as an HTML page
func ServePlanner(w http.ResponseWriter, r *http.Request, user *User) {
	week, err := buildWeek(plannerFor(user))
	if err != nil {
		log.Printf("Error loading meal plan: %v", err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"Username":    user.Username,
		"Week":        week,
		"Placeholder": mealplan.Placeholder,
	}

	var buf bytes.Buffer
	if err := plannerTmpl.Execute(&buf, data); err != nil {
		log.Printf("Error rendering planner: %v", err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("Error writing planner HTML: %v", err)
	}
}

// searchResponse mirrors what the results page shows
type searchResponse struct {
	Recipes   []recipes.Recipe `json:"recipes"`
	NoResults bool             `json:"no_results"`
	Message   string           `json:"message,omitempty"`
}

// HandleSearch looks up recipes by ingredients and an optional diet
func HandleSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if Recipes == nil {
		http.Error(w, ErrSearchUnavailable, http.StatusServiceUnavailable)
		return
	}

	ingredients := strings.TrimSpace(r.FormValue("ingredients"))
	diet := strings.ToLower(strings.TrimSpace(r.FormValue("diet")))

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	found, err := Recipes.FindRecipes(ctx, ingredients, diet)
	if err != nil {
		// The page shows an empty result rather than an error
		log.Printf("Error searching recipes: %v", err)
		found = nil
	}

	resp := searchResponse{Recipes: found, NoResults: len(found) == 0}
	if resp.Recipes == nil {
		resp.Recipes = []recipes.Recipe{}
	}
	if resp.NoResults {
		resp.Message = recipes.NoResultsMessage(ingredients, diet)
	}
	writeJSON(w, http.StatusOK, resp)
}
