// Package weather shows outdoor conditions next to the indoor devices,
// using the free Open-Meteo forecast API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const (
	defaultBaseURL = "https://api.open-meteo.com/v1/forecast"
	cacheTTL       = 30 * time.Minute
)

type Config struct {
	Latitude  string
	Longitude string
	// Unit is "celsius" or "fahrenheit".
	Unit string
}

func (c Config) Configured() bool {
	return c.Latitude != "" && c.Longitude != ""
}

// Conditions is the current weather plus today's range.
type Conditions struct {
	Configured  bool      `json:"configured"`
	Available   bool      `json:"available"`
	Temperature float64   `json:"temperature"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Code        int       `json:"code"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Unit        string    `json:"unit"`
	FetchedAt   time.Time `json:"fetched_at,omitzero"`
}

type Option func(*Service)

func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) { s.client = c }
}

func WithBaseURL(u string) Option {
	return func(s *Service) { s.baseURL = u }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service fetches conditions and caches them for half an hour.
type Service struct {
	cfg     Config
	client  *http.Client
	baseURL string
	logger  *slog.Logger
	now     func() time.Time

	mu     sync.Mutex
	cached Conditions
}

func NewService(cfg Config, opts ...Option) *Service {
	if cfg.Unit == "" {
		cfg.Unit = "celsius"
	}
	unit := "C"
	if cfg.Unit == "fahrenheit" {
		unit = "F"
	}
	s := &Service{
		cfg:     cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: defaultBaseURL,
		logger:  slog.New(slog.DiscardHandler),
		now:     time.Now,
		cached:  Conditions{Configured: cfg.Configured(), Unit: unit},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns cached conditions while they are fresh and fetches
// otherwise. A failed fetch keeps serving the last good data.
func (s *Service) Current(ctx context.Context) Conditions {
	if !s.cfg.Configured() {
		return s.cached
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached.Available && s.now().Sub(s.cached.FetchedAt) < cacheTTL {
		return s.cached
	}

	c, err := s.fetch(ctx)
	if err != nil {
		s.logger.Warn("fetch weather", "error", err)
		return s.cached
	}
	s.cached = c
	return c
}

type apiResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		TempMax []float64 `json:"temperature_2m_max"`
		TempMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

func (s *Service) fetch(ctx context.Context) (Conditions, error) {
	q := url.Values{}
	q.Set("latitude", s.cfg.Latitude)
	q.Set("longitude", s.cfg.Longitude)
	q.Set("current", "temperature_2m,weather_code")
	q.Set("daily", "temperature_2m_max,temperature_2m_min")
	q.Set("timezone", "auto")
	q.Set("forecast_days", "1")
	q.Set("temperature_unit", s.cfg.Unit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Conditions{}, fmt.Errorf("build weather request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return Conditions{}, fmt.Errorf("weather API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Conditions{}, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Conditions{}, fmt.Errorf("decode weather response: %w", err)
	}

	c := s.cached
	c.Available = true
	c.Temperature = body.Current.Temperature
	c.Code = body.Current.WeatherCode
	c.Description, c.Icon = Describe(c.Code)
	c.FetchedAt = s.now()
	if len(body.Daily.TempMax) > 0 {
		c.High = body.Daily.TempMax[0]
	}
	if len(body.Daily.TempMin) > 0 {
		c.Low = body.Daily.TempMin[0]
	}
	return c, nil
}

// Describe maps a WMO weather code to a description and an icon.
func Describe(code int) (string, string) {
	switch code {
	case 0:
		return "Clear sky", "☀️"
	case 1:
		return "Mainly clear", "🌤️"
	case 2:
		return "Partly cloudy", "⛅"
	case 3:
		return "Overcast", "☁️"
	case 45, 48:
		return "Foggy", "🌫️"
	case 51, 53:
		return "Drizzle", "🌦️"
	case 55, 56, 57:
		return "Heavy drizzle", "🌧️"
	case 61, 80:
		return "Light rain", "🌦️"
	case 63, 65, 66, 67, 81:
		return "Rain", "🌧️"
	case 82:
		return "Violent showers", "⛈️"
	case 71, 73, 85:
		return "Snow", "🌨️"
	case 75, 77, 86:
		return "Heavy snow", "❄️"
	case 95:
		return "Thunderstorm", "⛈️"
	case 96, 99:
		return "Thunderstorm with hail", "⛈️"
	default:
		return "Unknown", "🌡️"
	}
}
