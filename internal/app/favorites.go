package app

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// Defaults used when the favorite button carries no value
const (
	defaultUnknown      = "Unknown"
	defaultNutrition    = "Information missing"
	defaultInstructions = "No instructions available."
)

func formOr(r *http.Request, key, fallback string) string {
	if v := strings.TrimSpace(r.FormValue(key)); v != "" {
		return v
	}
	return fallback
}

// AddFavorite saves a recipe to the user's favorites.
// Answers {"ok": false} if the recipe is already saved.
func AddFavorite(w http.ResponseWriter, r *http.Request, user *User) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	fav := Favorite{
		RecipeID:       strings.TrimSpace(r.FormValue("recipe_id")),
		Title:          r.FormValue("title"),
		Image:          r.FormValue("image"),
		Difficulty:     formOr(r, "difficulty", defaultUnknown),
		ReadyInMinutes: formOr(r, "ready_in_minutes", defaultUnknown),
		Servings:       formOr(r, "servings", defaultUnknown),
		Nutrition:      formOr(r, "nutrition", defaultNutrition),
		Instructions:   formOr(r, "instructions", defaultInstructions),
		Ingredients:    r.FormValue("ingredients"),
		AddedAt:        time.Now().UTC(),
	}
	if fav.RecipeID == "" {
		writeJSON(w, http.StatusBadRequest, okResponse{OK: false, Error: "recipe_id is required"})
		return
	}

	DataMutex.Lock()
	defer DataMutex.Unlock()

	for _, f := range Data.Favorites[user.ID] {
		if f.RecipeID == fav.RecipeID {
			writeJSON(w, http.StatusOK, okResponse{OK: false})
			return
		}
	}

	Data.Favorites[user.ID] = append(Data.Favorites[user.ID], fav)
	if err := saveDataLocked(); err != nil {
		log.Printf("Error saving favorite: %v", err)
		favs := Data.Favorites[user.ID]
		Data.Favorites[user.ID] = favs[:len(favs)-1]
		writeJSON(w, http.StatusInternalServerError, okResponse{OK: false, Error: ErrFailedToSave})
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// ListFavorites returns every recipe the user saved
func ListFavorites(w http.ResponseWriter, r *http.Request, user *User) {
	DataMutex.RLock()
	favs := make([]Favorite, len(Data.Favorites[user.ID]))
	copy(favs, Data.Favorites[user.ID])
	DataMutex.RUnlock()

	writeJSON(w, http.StatusOK, favs)
}

// RemoveFavorite deletes a saved recipe and returns to the favorites list
func RemoveFavorite(w http.ResponseWriter, r *http.Request, user *User) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	recipeID := strings.TrimSpace(r.FormValue("recipe_id"))
	if recipeID != "" {
		DataMutex.Lock()
		kept := []Favorite{}
		for _, f := range Data.Favorites[user.ID] {
			if f.RecipeID != recipeID {
				kept = append(kept, f)
			}
		}
		Data.Favorites[user.ID] = kept
		if err := saveDataLocked(); err != nil {
			log.Printf("Error removing favorite: %v", err)
		}
		DataMutex.Unlock()
	}

	http.Redirect(w, r, "/favorites", http.StatusSeeOther)
}
