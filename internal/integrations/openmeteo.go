// ABOUTME: Open-Meteo integration providing coordinate-based weather lookups
// ABOUTME: Needs no API key, serves the current_weather_by_coords command

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

const openMeteoBaseURL = "https://api.open-meteo.com/v1"

// OpenMeteo provides coordinate-based weather lookups.
type OpenMeteo struct {
	baseURL string
	client  *http.Client
}

// NewOpenMeteo creates an Open-Meteo provider.
func NewOpenMeteo() *OpenMeteo {
	return &OpenMeteo{
		baseURL: openMeteoBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Commands returns the current_weather_by_coords registration.
func (m *OpenMeteo) Commands() []command.Registration {
	return []command.Registration{
		{
			Name:        "current_weather_by_coords",
			Description: "current weather conditions at the given coordinates",
			Params:      []string{"latitude", "longitude"},
			Handler:     m.currentWeatherByCoords,
		},
	}
}

type openMeteoResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
}

func (m *OpenMeteo) currentWeatherByCoords(ctx context.Context, params map[string]string) (string, error) {
	lat, lon := params["latitude"], params["longitude"]
	if lat == "" || lon == "" {
		return "", fmt.Errorf("latitude and longitude parameters are required")
	}

	query := url.Values{}
	query.Set("latitude", lat)
	query.Set("longitude", lon)
	query.Set("current_weather", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		m.baseURL+"/forecast?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("building weather request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("querying weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("weather service returned status %d", resp.StatusCode)
	}

	var data openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decoding weather response: %w", err)
	}

	cw := data.CurrentWeather
	return fmt.Sprintf("Weather at %s,%s: %s, %.1f C, wind %.1f km/h",
		lat, lon, describeWeatherCode(cw.WeatherCode), cw.Temperature, cw.WindSpeed), nil
}

// describeWeatherCode maps WMO weather codes to short descriptions.
func describeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code <= 3:
		return "partly cloudy"
	case code <= 48:
		return "fog"
	case code <= 57:
		return "drizzle"
	case code <= 67:
		return "rain"
	case code <= 77:
		return "snow"
	case code <= 82:
		return "rain showers"
	case code <= 86:
		return "snow showers"
	default:
		return "thunderstorm"
	}
}
