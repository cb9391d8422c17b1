package recipes

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	NutritionMissing = "Information missing"
	NoInstructions   = "No instructions provided."
	ServingsUnknown  = "Unknown"
	DifficultyEasy   = "Easy"
	DifficultyMid    = "Mid"
	DifficultyHard   = "Hard"
	DietVegetarian   = "vegetarian"
	DietVegan        = "vegan"
	caloriesNutrient = "Calories"
)

var (
	meatWords     = []string{"chicken", "beef", "pork", "bacon", "turkey", "ham", "lamb"}
	dairyEggWords = []string{"cheese", "egg", "milk", "butter", "yogurt", "cream", "honey"}

	spaceRe = regexp.MustCompile(`\s+`)
)

// Recipe is the shape the frontend renders and stores as a favorite
type Recipe struct {
	ID             int      `json:"id"`
	Title          string   `json:"title"`
	Image          string   `json:"image"`
	ReadyInMinutes int      `json:"readyInMinutes"`
	Servings       string   `json:"servings"`
	Nutrition      string   `json:"nutrition"`
	Difficulty     string   `json:"difficulty"`
	Steps          []string `json:"steps,omitempty"`
	Instructions   string   `json:"instructions"`
	Ingredients    []string `json:"ingredients"`
}

// Difficulty grades a recipe by its preparation time
func Difficulty(minutes int) string {
	switch {
	case minutes < 30:
		return DifficultyEasy
	case minutes < 60:
		return DifficultyMid
	default:
		return DifficultyHard
	}
}

// MatchesDiet reports whether the recipe title and ingredients are free of
// words the diet excludes. Unknown diets accept everything.
func MatchesDiet(info *Info, diet string) bool {
	var banned []string
	switch diet {
	case DietVegetarian:
		banned = meatWords
	case DietVegan:
		banned = append(append([]string{}, meatWords...), dairyEggWords...)
	default:
		return true
	}

	title := strings.ToLower(info.Title)
	names := make([]string, 0, len(info.ExtendedIngredients))
	for _, ing := range info.ExtendedIngredients {
		names = append(names, strings.ToLower(ing.Name))
	}

	for _, w := range banned {
		if strings.Contains(title, w) {
			return false
		}
		for _, n := range names {
			if strings.Contains(n, w) {
				return false
			}
		}
	}
	return true
}

// Extract builds the frontend recipe from a search hit and its details
func Extract(summary Summary, info *Info) Recipe {
	nutrition := NutritionMissing
	for _, n := range info.Nutrition.Nutrients {
		if n.Name == caloriesNutrient {
			nutrition = fmt.Sprintf("%s %s", strconv.FormatFloat(n.Amount, 'f', -1, 64), n.Unit)
			break
		}
	}

	servings := ServingsUnknown
	if info.Servings > 0 {
		servings = strconv.Itoa(info.Servings)
	}

	var steps []string
	if len(info.AnalyzedInstructions) > 0 {
		for _, s := range info.AnalyzedInstructions[0].Steps {
			if text := textCondense(s.Step); text != "" {
				steps = append(steps, text)
			}
		}
	}

	instructions := ""
	if len(steps) == 0 {
		steps, instructions = parseInstructions(info.Instructions)
	}
	if len(steps) == 0 && instructions == "" {
		instructions = NoInstructions
	}

	ingredients := make([]string, 0, len(info.ExtendedIngredients))
	for _, ing := range info.ExtendedIngredients {
		text := ing.Original
		if text == "" {
			text = ing.Name
		}
		ingredients = append(ingredients, text)
	}

	return Recipe{
		ID:             summary.ID,
		Title:          summary.Title,
		Image:          summary.Image,
		ReadyInMinutes: info.ReadyInMinutes,
		Servings:       servings,
		Nutrition:      nutrition,
		Difficulty:     Difficulty(info.ReadyInMinutes),
		Steps:          steps,
		Instructions:   instructions,
		Ingredients:    ingredients,
	}
}

// parseInstructions reads the free-form instructions field, which is often HTML.
// List items become steps; anything else collapses to plain text.
func parseInstructions(raw string) ([]string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, textCondense(raw)
	}

	var steps []string
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		if text := textCondense(li.Text()); text != "" {
			steps = append(steps, text)
		}
	})
	if len(steps) > 0 {
		return steps, ""
	}
	return nil, textCondense(doc.Text())
}

func textCondense(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// FindRecipes searches and returns the recipes matching diet, with details filled in.
// Recipes whose details cannot be fetched are skipped.
func (c *Client) FindRecipes(ctx context.Context, ingredients, diet string) ([]Recipe, error) {
	hits, err := c.Search(ctx, ingredients, diet)
	if err != nil {
		return nil, err
	}

	recipes := make([]Recipe, 0, len(hits))
	for _, hit := range hits {
		info, err := c.Detail(ctx, hit.ID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("Skipping recipe %d: %v", hit.ID, err)
			continue
		}
		if !MatchesDiet(info, diet) {
			continue
		}
		recipes = append(recipes, Extract(hit, info))
	}
	return recipes, nil
}

// NoResultsMessage explains an empty search to the user
func NoResultsMessage(ingredients, diet string) string {
	switch {
	case ingredients != "" && diet != "":
		return fmt.Sprintf("No recipes found containing '%s' and matching '%s' diet.", ingredients, diet)
	case ingredients != "":
		return fmt.Sprintf("No recipes found with ingredient '%s'.", ingredients)
	case diet != "":
		return fmt.Sprintf("No recipes found for the '%s' diet.", diet)
	default:
		return "No recipes found."
	}
}
