package main

import (
	"crypto/rand"
	"embed"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/klabast/wb-services/recept/internal/app"
	"github.com/klabast/wb-services/recept/internal/commands"
	"github.com/klabast/wb-services/recept/internal/recipes"
)

//go:embed static/*
var staticFiles embed.FS

//go:embed static/index.html
var indexHTML []byte

func main() {
	// A .env file is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not read .env: %v", err)
	}

	// Check for subcommands
	if len(os.Args) > 1 && os.Args[1] == "create-user" {
		commands.CreateUser(os.Args[2:])
		return
	}

	// Parse flags
	port := flag.Int("port", 8080, "Port to listen on")
	dataFile := flag.String("data", envOr("DATA_FILE", app.DataFile), "Path to the JSON data file")
	flag.Parse()

	app.DataFile = *dataFile
	app.IndexHTML = indexHTML

	if key := os.Getenv("SECRET_KEY"); key != "" {
		app.SecretKey = []byte(key)
	} else {
		app.SecretKey = make([]byte, 32)
		if _, err := rand.Read(app.SecretKey); err != nil {
			log.Fatalf("Failed to generate secret key: %v", err)
		}
		log.Println("╔════════════════════════════════════════════════════════════╗")
		log.Println("║ ⚠️  SECRET_KEY is not set                                   ║")
		log.Println("║ Using a random key; sessions end when the server restarts ║")
		log.Println("╚════════════════════════════════════════════════════════════╝")
	}

	if apiKey := os.Getenv("API_KEY"); apiKey != "" {
		app.Recipes = recipes.NewClient(envOr("SPOONACULAR_URL", recipes.DefaultBaseURL), apiKey)
	} else {
		log.Println("⚠️  API_KEY is not set, recipe search is disabled")
	}

	if err := app.LoadData(); err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}

	// Setup routes
	http.HandleFunc("/", app.ServeIndex)
	http.HandleFunc("/api/me", app.HandleMe)
	http.HandleFunc("/api/search", app.HandleSearch)
	http.HandleFunc("/login", app.HandleLogin)
	http.HandleFunc("/logout", app.HandleLogout)
	http.HandleFunc("/register", app.HandleRegister)

	// Routes that need a logged-in user
	http.HandleFunc("/favorite", app.RequireLogin(app.AddFavorite))
	http.HandleFunc("/favorites", app.RequireLogin(app.ListFavorites))
	http.HandleFunc("/remove-favorite", app.RequireLogin(app.RemoveFavorite))
	http.HandleFunc("/api/shopping-lists", app.RequireLogin(app.HandleShoppingLists))
	http.HandleFunc("/api/settings", app.RequireLogin(app.HandleSettings))
	http.HandleFunc("/api/mealplan", app.RequireLogin(app.HandleMealPlan))
	http.HandleFunc("/api/mealplan/add", app.RequireLogin(app.AddMeal))
	http.HandleFunc("/api/mealplan/remove", app.RequireLogin(app.RemoveMeal))
	http.HandleFunc("/api/mealplan/clear", app.RequireLogin(app.ClearMealPlan))
	http.HandleFunc("/api/mealplan/download", app.RequireLogin(app.HandleDownload))
	http.HandleFunc("/planner", app.RequireLogin(app.ServePlanner))

	// Serve static files
	http.Handle("/static/", http.FileServer(http.FS(staticFiles)))

	log.Printf("Starting Recept on http://localhost:%d", *port)
	log.Printf("Data file: %s", app.DataFile)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", *port), nil); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
