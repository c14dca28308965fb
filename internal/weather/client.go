package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Provider define la interfaz hacia el proveedor externo de clima.
type Provider interface {
	Current(ctx context.Context, location string) (Conditions, error)
}

// Conditions es un modelo simplificado de datos climáticos.
type Conditions struct {
	Location     string  `json:"location"`
	Description  string  `json:"description"`
	TemperatureF float64 `json:"temperature_f"`
	FeelsLikeF   float64 `json:"feels_like_f"`
	HumidityPct  int     `json:"humidity_pct"`
	WindMPH      float64 `json:"wind_mph"`
}

var (
	// ErrUnavailable cubre timeouts y fallas del proveedor; es recuperable
	// y el usuario ve un aviso de reintento, no un error duro.
	ErrUnavailable = errors.New("weather provider unavailable")
	// ErrLocationUnknown indica que el proveedor no conoce la ubicacion.
	ErrLocationUnknown = errors.New("location unknown")
)

const requestTimeout = 5 * time.Second

// HTTPClient implementa Provider contra la API de OpenWeatherMap.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient construye un cliente con timeout acotado.
func NewHTTPClient(baseURL, apiKey string, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org"
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
}

func (c *HTTPClient) Current(ctx context.Context, location string) (Conditions, error) {
	query := url.Values{}
	query.Set("q", location)
	query.Set("appid", c.apiKey)
	query.Set("units", "imperial")

	endpoint := c.baseURL + "/data/2.5/weather?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Conditions{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("weather request failed", zap.Error(err), zap.String("location", location))
		}
		return Conditions{}, ErrUnavailable
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Conditions{}, ErrUnavailable
	}

	if resp.StatusCode == http.StatusNotFound {
		return Conditions{}, ErrLocationUnknown
	}
	if resp.StatusCode >= 400 {
		if c.logger != nil {
			c.logger.Warn("weather error status",
				zap.Int("status", resp.StatusCode),
				zap.String("location", location),
			)
		}
		return Conditions{}, ErrUnavailable
	}

	var wr weatherResponse
	if err := json.Unmarshal(respBody, &wr); err != nil {
		return Conditions{}, ErrUnavailable
	}

	conditions := Conditions{
		Location:     wr.Name,
		TemperatureF: wr.Main.Temp,
		FeelsLikeF:   wr.Main.FeelsLike,
		HumidityPct:  wr.Main.Humidity,
		WindMPH:      wr.Wind.Speed,
	}
	if len(wr.Weather) > 0 {
		conditions.Description = wr.Weather[0].Description
	}
	return conditions, nil
}

type weatherResponse struct {
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
