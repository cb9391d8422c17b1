package app

import "time"

// User is a registered account
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Favorite is a recipe saved by a user
type Favorite struct {
	RecipeID       string    `json:"recipe_id"`
	Title          string    `json:"title"`
	Image          string    `json:"image"`
	Difficulty     string    `json:"difficulty"`
	ReadyInMinutes string    `json:"ready_in_minutes"`
	Servings       string    `json:"servings"`
	Nutrition      string    `json:"nutrition"`
	Instructions   string    `json:"instructions"`
	Ingredients    string    `json:"ingredients"`
	AddedAt        time.Time `json:"added_at"`
}

// ShoppingList is a named list of ingredients still to buy
type ShoppingList struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Items     []string  `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}

// Settings holds per-user display preferences
type Settings struct {
	DarkMode bool `json:"dark_mode"`
}

// AppData represents the complete persisted data set
type AppData struct {
	Users         []*User                   `json:"users"`
	Favorites     map[string][]Favorite     `json:"favorites"`
	ShoppingLists map[string][]ShoppingList `json:"shopping_lists"`
	KV            map[string]string         `json:"kv"`
	Metadata      map[string]string         `json:"metadata"`
}

// NewAppData returns an empty data set
func NewAppData() *AppData {
	return &AppData{
		Users:         []*User{},
		Favorites:     make(map[string][]Favorite),
		ShoppingLists: make(map[string][]ShoppingList),
		KV:            make(map[string]string),
		Metadata:      map[string]string{MetadataCreatedAt: time.Now().UTC().Format(time.RFC3339)},
	}
}

// normalize fills maps that are missing from older files
func (d *AppData) normalize() {
	if d.Users == nil {
		d.Users = []*User{}
	}
	if d.Favorites == nil {
		d.Favorites = make(map[string][]Favorite)
	}
	if d.ShoppingLists == nil {
		d.ShoppingLists = make(map[string][]ShoppingList)
	}
	if d.KV == nil {
		d.KV = make(map[string]string)
	}
	if d.Metadata == nil {
		d.Metadata = make(map[string]string)
	}
}
