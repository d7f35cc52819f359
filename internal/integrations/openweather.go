// ABOUTME: OpenWeather integration providing the current_weather command
// ABOUTME: Looks up current conditions for a named city via the OpenWeather API

package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/averla/assist-gateway/internal/command"
)

const openWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeather provides city-name weather lookups.
type OpenWeather struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOpenWeather creates an OpenWeather provider with the given API key.
func NewOpenWeather(apiKey string) *OpenWeather {
	return &OpenWeather{
		apiKey:  apiKey,
		baseURL: openWeatherBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Commands returns the current_weather registration.
func (w *OpenWeather) Commands() []command.Registration {
	return []command.Registration{
		{
			Name:        "current_weather",
			Description: "current weather conditions in the given city",
			Params:      []string{"city"},
			Handler:     w.currentWeather,
		},
	}
}

type openWeatherResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

func (w *OpenWeather) currentWeather(ctx context.Context, params map[string]string) (string, error) {
	city := params["city"]
	if city == "" {
		return "", fmt.Errorf("city parameter is required")
	}

	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", w.apiKey)
	query.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		w.baseURL+"/weather?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("building weather request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("querying weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("unknown city %q", city)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("weather service returned status %d", resp.StatusCode)
	}

	var data openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decoding weather response: %w", err)
	}

	conditions := "unknown conditions"
	if len(data.Weather) > 0 {
		conditions = data.Weather[0].Description
	}

	return fmt.Sprintf("Weather in %s: %s, %.1f C (feels like %.1f C), humidity %d%%, wind %.1f m/s",
		data.Name, conditions, data.Main.Temp, data.Main.FeelsLike,
		data.Main.Humidity, data.Wind.Speed), nil
}
