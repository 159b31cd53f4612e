package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"hearsay/pkg/logging"
)

const defaultNewsURL = "https://newsapi.org/v2/top-headlines"

// NewsClient fetches top headlines from NewsAPI.
type NewsClient struct {
	BaseURL string
	APIKey  string
	Country string
	client  *http.Client
}

func NewNewsClient(apiKey string) *NewsClient {
	return &NewsClient{
		BaseURL: defaultNewsURL,
		APIKey:  apiKey,
		Country: "in",
		client:  &http.Client{Timeout: 8 * time.Second},
	}
}

type newsResponse struct {
	Articles []struct {
		Title string `json:"title"`
	} `json:"articles"`
}

// TopHeadlines returns up to count headline titles, newest first as the
// provider orders them.
func (c *NewsClient) TopHeadlines(ctx context.Context, count int) ([]string, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("NewsAPI %w, set NEWSAPI_KEY", ErrNoAPIKey)
	}

	params := url.Values{}
	params.Set("apiKey", c.APIKey)
	params.Set("country", c.Country)
	params.Set("pageSize", strconv.Itoa(count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build news request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news service returned %s", resp.Status)
	}

	var body newsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("unable to decode news response: %w", err)
	}

	headlines := make([]string, 0, len(body.Articles))
	for _, a := range body.Articles {
		headlines = append(headlines, a.Title)
	}
	logging.Debug("fetched %d headlines", len(headlines))
	return headlines, nil
}
