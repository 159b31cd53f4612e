package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"hearsay/pkg/logging"
)

// ErrNoAPIKey means the provider credential was never configured. It is a
// user-visible condition, kept distinct from network failures so the
// assistant can say what to fix.
var ErrNoAPIKey = errors.New("api key not set")

const defaultWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// WeatherClient fetches current conditions from OpenWeatherMap.
type WeatherClient struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

func NewWeatherClient(apiKey string) *WeatherClient {
	return &WeatherClient{
		BaseURL: defaultWeatherURL,
		APIKey:  apiKey,
		client:  &http.Client{Timeout: 8 * time.Second},
	}
}

type weatherResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
	} `json:"main"`
}

// Current returns a speakable one-line summary of the weather in city.
func (c *WeatherClient) Current(ctx context.Context, city string) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("OpenWeather %w, set OPENWEATHER_API_KEY", ErrNoAPIKey)
	}

	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", c.APIKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("unable to build weather request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather service returned %s", resp.Status)
	}

	var body weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("unable to decode weather response: %w", err)
	}
	if len(body.Weather) == 0 {
		return "", fmt.Errorf("weather response carried no conditions for %q", city)
	}

	logging.Debug("weather for %s: %s %.1f°C", city, body.Weather[0].Description, body.Main.Temp)
	return fmt.Sprintf("%s, temperature %.1f°C, feels like %.1f°C",
		body.Weather[0].Description, body.Main.Temp, body.Main.FeelsLike), nil
}
