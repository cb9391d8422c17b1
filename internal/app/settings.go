package app

import (
	"encoding/json"
	"log"
	"net/http"
)

// LoadSettings returns the user's stored preferences
func LoadSettings(user *User) Settings {
	var s Settings
	raw := kvGet(SettingsKeyPrefix + user.ID)
	if raw == "" {
		return s
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		log.Printf("Ignoring unreadable settings for %s: %v", user.ID, err)
		return Settings{}
	}
	return s
}

// HandleSettings reads (GET) or replaces (POST) the user's preferences
func HandleSettings(w http.ResponseWriter, r *http.Request, user *User) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, LoadSettings(user))
	case http.MethodPost:
		var s Settings
		if !decodeJSON(w, r, &s) {
			return
		}
		raw, err := json.Marshal(s)
		if err != nil {
			http.Error(w, ErrInternalServer, http.StatusInternalServerError)
			return
		}
		if err := kvSet(SettingsKeyPrefix+user.ID, string(raw)); err != nil {
			log.Printf("Error saving settings: %v", err)
			http.Error(w, ErrFailedToSave, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, s)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
