package app

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Constants
const (
	DefaultDataFile = "recept_data.json"
	BackupSuffix    = ".backup"
	TmpSuffix       = ".tmp.json"
	FilePermissions = 0644

	// Session cookie
	SessionCookie = "user_id"

	// Storage keys inside the key-value map
	MealPlanKeyPrefix = "mealPlans:"
	SettingsKeyPrefix = "settings:"

	MinPasswordLength = 8

	// Error messages
	ErrInternalServer       = "Internal server error"
	ErrFailedToSave         = "Failed to save data"
	ErrInvalidJSON          = "Invalid JSON body"
	ErrInvalidFormat        = "Invalid format"
	ErrNotLoggedIn          = "Not logged in"
	ErrOutsideWeek          = "You can only plan meals for this week."
	ErrMissingDateOrTitle   = "Date and title are required"
	ErrMissingDateOrIndex   = "Date and index are required"
	ErrClearNotConfirmed    = "Clearing the weekly plan must be confirmed"
	ErrListNameRequired     = "List name is required."
	ErrListItemsRequired    = "A shopping list needs at least one item."
	ErrSearchUnavailable    = "Recipe search is not configured"
	ErrFailedToGenerateJSON = "Failed to generate JSON"
	ErrFailedToGenerateXLSX = "Failed to generate XLSX"

	// Metadata keys
	MetadataCreatedAt = "created_at"

	// ICS constants
	ICSProductID = "-//Recept fran kylen//Meal Planner//EN"
	ICSTimezone  = "Europe/Stockholm"
)

// Global variables
var (
	DataFile  = DefaultDataFile
	Data      *AppData
	DataMutex sync.RWMutex

	// SecretKey signs the session cookie (set by main)
	SecretKey []byte

	// Recipes answers recipe searches (set by main)
	Recipes RecipeFinder

	// Clock is the source of "today" for the meal planner
	Clock = time.Now

	// Embedded files (set by main)
	IndexHTML []byte
)

func init() {
	// Default data file lives in the current directory
	if cwd, err := os.Getwd(); err == nil {
		DataFile = filepath.Join(cwd, DefaultDataFile)
	}
}
