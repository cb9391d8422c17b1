package app

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Registration and login failures, worded for the user
var (
	ErrInvalidEmail       = errors.New("Invalid email address.")
	ErrPasswordTooShort   = fmt.Errorf("Password must be at least %d characters.", MinPasswordLength)
	ErrEmailTaken         = errors.New("Email is already registered.")
	ErrUsernameTaken      = errors.New("Username is already taken.")
	ErrInvalidCredentials = errors.New("Invalid email or password.")
)

// Argon2id parameters (OWASP recommended)
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// HashPassword creates an Argon2id hash of the password
func HashPassword(password string) (string, error) {
	// Generate random salt
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// Encode as: $argon2id$v=19$m=65536,t=1,p=4$salt$hash
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argon2Memory, argon2Time, argon2Threads, b64Salt, b64Hash), nil
}

// VerifyPassword verifies a password against an Argon2id hash.
// bcrypt hashes ($2a$, $2b$, $2y$) carried over from the old users table are accepted too.
func VerifyPassword(password, hash string) (bool, error) {
	if isBcryptHash(hash) {
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to verify bcrypt hash: %w", err)
		}
		return true, nil
	}

	// Parse hash format: $argon2id$v=19$m=65536,t=1,p=4$salt$hash
	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		return false, fmt.Errorf("invalid hash format")
	}

	if parts[1] != "argon2id" {
		return false, fmt.Errorf("not an argon2id hash")
	}

	var memory, time, threads uint32
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads)
	if err != nil {
		return false, fmt.Errorf("failed to parse hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("failed to decode salt: %w", err)
	}

	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("failed to decode hash: %w", err)
	}

	computedHash := argon2.IDKey([]byte(password), salt, time, memory, uint8(threads), uint32(len(decodedHash)))

	// Compare using constant-time comparison
	return subtle.ConstantTimeCompare(decodedHash, computedHash) == 1, nil
}

func isBcryptHash(hash string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(hash, prefix) {
			return true
		}
	}
	return false
}

// RegisterUser validates and stores a new account
func RegisterUser(username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	DataMutex.Lock()
	defer DataMutex.Unlock()

	if Data == nil {
		Data = NewAppData()
	}
	for _, u := range Data.Users {
		if u.Email == email {
			return nil, ErrEmailTaken
		}
		if strings.EqualFold(u.Username, username) {
			return nil, ErrUsernameTaken
		}
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	Data.Users = append(Data.Users, user)

	if err := saveDataLocked(); err != nil {
		Data.Users = Data.Users[:len(Data.Users)-1]
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return user, nil
}

// Authenticate returns the user owning email if password matches
func Authenticate(email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	DataMutex.RLock()
	var user *User
	if Data != nil {
		for _, u := range Data.Users {
			if u.Email == email {
				user = u
				break
			}
		}
	}
	DataMutex.RUnlock()

	if user == nil {
		return nil, ErrInvalidCredentials
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		log.Printf("Error verifying password for %s: %v", email, err)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// UserByID looks up an account
func UserByID(id string) *User {
	DataMutex.RLock()
	defer DataMutex.RUnlock()
	if Data == nil {
		return nil
	}
	for _, u := range Data.Users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// signValue returns value with an appended HMAC-SHA256 signature
func signValue(value string) string {
	mac := hmac.New(sha256.New, SecretKey)
	mac.Write([]byte(value))
	return value + "|" + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// verifyValue checks a signed value and returns the original
func verifyValue(signed string) (string, bool) {
	i := strings.LastIndex(signed, "|")
	if i <= 0 {
		return "", false
	}
	value := signed[:i]
	expected := signValue(value)
	if !hmac.Equal([]byte(expected), []byte(signed)) {
		return "", false
	}
	return value, true
}

// SetSession issues the signed login cookie
func SetSession(w http.ResponseWriter, user *User) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    signValue(user.ID),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSession deletes the login cookie
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// CurrentUser returns the logged-in user, or nil
func CurrentUser(r *http.Request) *User {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	id, ok := verifyValue(c.Value)
	if !ok {
		return nil
	}
	return UserByID(id)
}

// RequireLogin is a middleware that resolves the session user.
// API calls and POSTs get a JSON 401, page loads are redirected home.
func RequireLogin(next func(http.ResponseWriter, *http.Request, *User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			if strings.HasPrefix(r.URL.Path, "/api/") || r.Method == http.MethodPost {
				writeJSON(w, http.StatusUnauthorized, okResponse{OK: false, Error: ErrNotLoggedIn})
				return
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next(w, r, user)
	}
}

func isXHR(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// HandleLogin authenticates email and password from the login form
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	email := r.FormValue("email")
	user, err := Authenticate(email, r.FormValue("password"))
	if err != nil {
		log.Printf("⚠️  Failed login attempt from %s (email: %s)", r.RemoteAddr, strings.ToLower(strings.TrimSpace(email)))
		writeJSON(w, http.StatusUnauthorized, okResponse{OK: false, Error: err.Error()})
		return
	}

	SetSession(w, user)
	if isXHR(r) {
		writeJSON(w, http.StatusOK, okResponse{OK: true})
		return
	}
	http.Redirect(w, r, "/?login=1", http.StatusSeeOther)
}

// HandleLogout deletes the session and returns home
func HandleLogout(w http.ResponseWriter, r *http.Request) {
	ClearSession(w)
	http.Redirect(w, r, "/?logout=1", http.StatusSeeOther)
}

// HandleRegister creates an account from the registration form
func HandleRegister(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	_, err := RegisterUser(r.FormValue("username"), r.FormValue("email"), r.FormValue("password"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, okResponse{OK: true, Message: "Registration successful! You can now log in."})
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrUsernameTaken):
		writeJSON(w, http.StatusConflict, okResponse{OK: false, Error: err.Error()})
	case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrPasswordTooShort):
		writeJSON(w, http.StatusBadRequest, okResponse{OK: false, Error: err.Error()})
	default:
		log.Printf("Error registering user: %v", err)
		writeJSON(w, http.StatusInternalServerError, okResponse{OK: false, Error: ErrInternalServer})
	}
}
