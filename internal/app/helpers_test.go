package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"
)

// fixedNow is a Thursday; its week runs 2024-06-10 to 2024-06-16
var fixedNow = time.Date(2024, 6, 13, 12, 0, 0, 0, time.Local)

// setupTestData points the package at an empty data file in a temp dir
func setupTestData(t *testing.T) {
	t.Helper()

	oldFile, oldData, oldKey, oldClock, oldRecipes := DataFile, Data, SecretKey, Clock, Recipes
	t.Cleanup(func() {
		DataFile, Data, SecretKey, Clock, Recipes = oldFile, oldData, oldKey, oldClock, oldRecipes
	})

	DataFile = filepath.Join(t.TempDir(), "data.json")
	Data = NewAppData()
	SecretKey = []byte("test-secret")
	Clock = func() time.Time { return fixedNow }
	Recipes = nil
}

func mustRegister(t *testing.T, username string) *User {
	t.Helper()
	user, err := RegisterUser(username, username+"@example.com", "longenough")
	if err != nil {
		t.Fatalf("RegisterUser(%s) failed: %v", username, err)
	}
	return user
}

func sessionCookieFor(t *testing.T, user *User) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	SetSession(w, user)
	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one session cookie, got %d", len(cookies))
	}
	return cookies[0]
}

func TestRequireMethod(t *testing.T) {
	w := httptest.NewRecorder()
	if RequireMethod(w, httptest.NewRequest("GET", "/", nil), http.MethodPost) {
		t.Error("GET should not satisfy POST")
	}
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	if !RequireMethod(w, httptest.NewRequest("POST", "/", nil), http.MethodPost) {
		t.Error("POST should satisfy POST")
	}
}

func TestSortListsNewestFirst(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	lists := []ShoppingList{
		{Name: "old", CreatedAt: base},
		{Name: "newest", CreatedAt: base.Add(2 * time.Hour)},
		{Name: "middle", CreatedAt: base.Add(time.Hour)},
	}
	SortListsNewestFirst(lists)

	want := []string{"newest", "middle", "old"}
	for i, name := range want {
		if lists[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, lists[i].Name)
		}
	}
}
