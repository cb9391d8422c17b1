// Package recipes searches the Spoonacular API and shapes results for the planner UI.
package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public Spoonacular endpoint
	DefaultBaseURL = "https://api.spoonacular.com"

	// SearchLimit is how many recipes one search asks for
	SearchLimit = 20
)

// ErrBadStatus is returned when the API answers with a non-200 status
var ErrBadStatus = errors.New("recipe api: unexpected status")

// Client talks to the Spoonacular recipe API
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client

	// Backoffs are the waits before each attempt; the first is usually zero
	Backoffs []time.Duration
}

// NewClient creates a client with sensible transport defaults
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		HTTP:     httpClient(20 * time.Second),
		Backoffs: []time.Duration{0, 500 * time.Millisecond, 1 * time.Second},
	}
}

func httpClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// Summary is one hit of a complexSearch call
type Summary struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Image string `json:"image"`
}

// Nutrient is a single nutrition line
type Nutrient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Ingredient is an entry of extendedIngredients
type Ingredient struct {
	Name     string `json:"name"`
	Original string `json:"original"`
}

// Step is an analyzed instruction step
type Step struct {
	Number int    `json:"number"`
	Step   string `json:"step"`
}

// Info is the detailed recipe information document
type Info struct {
	ID             int    `json:"id"`
	Title          string `json:"title"`
	Image          string `json:"image"`
	ReadyInMinutes int    `json:"readyInMinutes"`
	Servings       int    `json:"servings"`
	Instructions   string `json:"instructions"`
	Nutrition      struct {
		Nutrients []Nutrient `json:"nutrients"`
	} `json:"nutrition"`
	AnalyzedInstructions []struct {
		Steps []Step `json:"steps"`
	} `json:"analyzedInstructions"`
	ExtendedIngredients []Ingredient `json:"extendedIngredients"`
}

// Search runs a complexSearch for ingredients and an optional diet
func (c *Client) Search(ctx context.Context, ingredients, diet string) ([]Summary, error) {
	params := url.Values{}
	params.Set("apiKey", c.APIKey)
	params.Set("number", strconv.Itoa(SearchLimit))
	params.Set("addRecipeInformation", "true")
	params.Set("fillIngredients", "true")
	if ingredients != "" {
		params.Set("query", ingredients)
	}
	if diet != "" {
		params.Set("diet", diet)
	}

	var resp struct {
		Results []Summary `json:"results"`
	}
	if err := c.getJSON(ctx, "/recipes/complexSearch", params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Detail fetches the full information of one recipe, nutrition included
func (c *Client) Detail(ctx context.Context, id int) (*Info, error) {
	params := url.Values{}
	params.Set("apiKey", c.APIKey)
	params.Set("includeNutrition", "true")

	var info Info
	if err := c.getJSON(ctx, fmt.Sprintf("/recipes/%d/information", id), params, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	rawURL := c.BaseURL + path + "?" + params.Encode()

	resp, err := c.do(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w %d: %s", ErrBadStatus, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// do performs a GET with a bounded retry on network errors, 429 and 5xx
func (c *Client) do(ctx context.Context, rawURL string) (*http.Response, error) {
	backoffs := c.Backoffs
	if len(backoffs) == 0 {
		backoffs = []time.Duration{0}
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	var lastErr error
	for i, d := range backoffs {
		if d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if (resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests) && i < len(backoffs)-1 {
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("server error: %s", resp.Status)
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}
