package app

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ItemsToBuy returns the ingredients not marked as already at home, in order
func ItemsToBuy(ingredients []string, have map[int]bool) []string {
	out := []string{}
	for i, ing := range ingredients {
		if !have[i] {
			out = append(out, ing)
		}
	}
	return out
}

// CreateShoppingList stores a named list of items for the user
func CreateShoppingList(w http.ResponseWriter, r *http.Request, user *User) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	// Items may be given directly, or as ingredients plus the indexes already at home
	var req struct {
		Name        string   `json:"name"`
		Items       []string `json:"items"`
		Ingredients []string `json:"ingredients"`
		Have        []int    `json:"have"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Items) == 0 && len(req.Ingredients) > 0 {
		have := make(map[int]bool, len(req.Have))
		for _, i := range req.Have {
			have[i] = true
		}
		req.Items = ItemsToBuy(req.Ingredients, have)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, okResponse{Error: ErrListNameRequired})
		return
	}

	items := make([]string, 0, len(req.Items))
	for _, it := range req.Items {
		if it = strings.TrimSpace(it); it != "" {
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		writeJSON(w, http.StatusBadRequest, okResponse{Error: ErrListItemsRequired})
		return
	}

	list := ShoppingList{
		ID:        uuid.NewString(),
		Name:      name,
		Items:     items,
		CreatedAt: time.Now().UTC(),
	}

	DataMutex.Lock()
	defer DataMutex.Unlock()

	Data.ShoppingLists[user.ID] = append(Data.ShoppingLists[user.ID], list)
	if err := saveDataLocked(); err != nil {
		log.Printf("Error saving shopping list: %v", err)
		lists := Data.ShoppingLists[user.ID]
		Data.ShoppingLists[user.ID] = lists[:len(lists)-1]
		writeJSON(w, http.StatusInternalServerError, okResponse{Error: ErrFailedToSave})
		return
	}

	writeJSON(w, http.StatusCreated, list)
}

// ListShoppingLists returns the user's lists, newest first
func ListShoppingLists(w http.ResponseWriter, r *http.Request, user *User) {
	DataMutex.RLock()
	lists := make([]ShoppingList, len(Data.ShoppingLists[user.ID]))
	copy(lists, Data.ShoppingLists[user.ID])
	DataMutex.RUnlock()

	SortListsNewestFirst(lists)
	writeJSON(w, http.StatusOK, lists)
}

// HandleShoppingLists dispatches on method
func HandleShoppingLists(w http.ResponseWriter, r *http.Request, user *User) {
	switch r.Method {
	case http.MethodGet:
		ListShoppingLists(w, r, user)
	case http.MethodPost:
		CreateShoppingList(w, r, user)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
