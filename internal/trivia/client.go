package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"quiz-tournament-service/internal/domain"
)

// DefaultBaseURL points at the public OpenTDB API.
const DefaultBaseURL = "https://opentdb.com/api.php"

// GeneralCategory is the provider-agnostic category used to supplement
// shortfalls and as the no-results fallback query.
const GeneralCategory = "general"

const maxRetries = 3

// OpenTDB response codes.
const (
	codeSuccess          = 0
	codeNoResults        = 1
	codeInvalidParameter = 2
	codeTokenNotFound    = 3
	codeTokenEmpty       = 4
)

// categoryIDs maps our category names to OpenTDB numeric category ids.
// Unmapped categories are queried without a category filter.
var categoryIDs = map[string]string{
	"science":       "17", // Science & Nature
	"history":       "23",
	"sports":        "21",
	"geography":     "22",
	"entertainment": "11", // Entertainment: Film
	"general":       "9",  // General Knowledge
	"mathematics":   "19",
	"computer":      "18",
	"music":         "12",
	"literature":    "10",
}

type providerResponse struct {
	ResponseCode int               `json:"response_code"`
	Results      []domain.Question `json:"results"`
}

// Client fetches trivia questions from OpenTDB with retry, generic-category
// supplementation, and a hardcoded fallback bank. FetchQuestions never fails:
// it always returns at least one question.
type Client struct {
	httpClient *http.Client
	baseURL    string
	// sleep and backoffUnit are injectable so tests don't wait out real backoff.
	sleep       func(time.Duration)
	backoffUnit time.Duration
}

// NewClient builds a client for the given base URL; empty means DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		sleep:       time.Sleep,
		backoffUnit: time.Second,
	}
}

// FetchQuestions retrieves amount questions for the category/difficulty.
// Transport and server errors are retried up to 3 times with linear-growth
// backoff (attempt × 1s); a no-results reply for a specific category retries
// once with the general category; partial results are topped up with general
// questions. When everything fails the fallback bank answers.
func (c *Client) FetchQuestions(ctx context.Context, category string, difficulty domain.Difficulty, amount int) []domain.Question {
	reqURL := c.buildURL(category, difficulty, amount)

	for attempt := 1; attempt <= maxRetries; attempt++ {
		resp, err := c.get(ctx, reqURL)
		if err != nil {
			log.Printf("trivia: attempt %d/%d failed: %v", attempt, maxRetries, err)
			if attempt == maxRetries {
				return fallbackQuestions(category, difficulty, amount)
			}
			c.sleep(time.Duration(attempt) * c.backoffUnit)
			continue
		}

		switch resp.ResponseCode {
		case codeSuccess:
			if len(resp.Results) >= amount {
				return resp.Results[:amount]
			}
			if len(resp.Results) > 0 {
				return c.fillWithGeneral(ctx, resp.Results, amount, difficulty)
			}
			// Success code with an empty result set behaves like no-results.
			fallthrough
		case codeNoResults:
			if !isGeneralCategory(category) {
				return c.FetchQuestions(ctx, GeneralCategory, difficulty, amount)
			}
			return fallbackQuestions(category, difficulty, amount)
		default:
			// Invalid parameter or token codes: the query will not improve
			// by retrying it verbatim.
			log.Printf("trivia: provider response code %d for category %q", resp.ResponseCode, category)
			return fallbackQuestions(category, difficulty, amount)
		}
	}

	return fallbackQuestions(category, difficulty, amount)
}

// fillWithGeneral tops a short result set up to amount with general-category
// questions, then truncates.
func (c *Client) fillWithGeneral(ctx context.Context, existing []domain.Question, amount int, difficulty domain.Difficulty) []domain.Question {
	needed := amount - len(existing)
	if needed <= 0 {
		return existing[:amount]
	}

	combined := make([]domain.Question, 0, amount)
	combined = append(combined, existing...)
	combined = append(combined, c.FetchQuestions(ctx, GeneralCategory, difficulty, needed)...)

	if len(combined) > amount {
		combined = combined[:amount]
	}
	return combined
}

func (c *Client) get(ctx context.Context, reqURL string) (providerResponse, error) {
	var parsed providerResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return parsed, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return parsed, fmt.Errorf("call provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return parsed, fmt.Errorf("provider status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return parsed, fmt.Errorf("decode response: %w", err)
	}
	return parsed, nil
}

func (c *Client) buildURL(category string, difficulty domain.Difficulty, amount int) string {
	params := url.Values{}
	params.Set("amount", strconv.Itoa(amount))
	if id, ok := categoryIDs[strings.ToLower(category)]; ok {
		params.Set("category", id)
	}
	if difficulty != "" {
		params.Set("difficulty", strings.ToLower(string(difficulty)))
	}
	// Type deliberately unset: both multiple choice and true/false.
	return c.baseURL + "?" + params.Encode()
}

func isGeneralCategory(category string) bool {
	return strings.EqualFold(category, GeneralCategory)
}

// AvailableCategories lists the category names the adapter can map, with
// display labels for the transport layer.
func AvailableCategories() map[string]string {
	return map[string]string{
		"general":       "General Knowledge",
		"science":       "Science & Nature",
		"history":       "History",
		"sports":        "Sports",
		"geography":     "Geography",
		"entertainment": "Entertainment",
		"mathematics":   "Mathematics",
		"computer":      "Computer Science",
		"music":         "Music",
		"literature":    "Literature",
	}
}
