package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/agrodecision/agrodecision/internal/enviro"
)

// OpenMeteoWeather implements enviro.WeatherProvider against the Open-Meteo
// forecast API. It does not require an API key.
type OpenMeteoWeather struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoWeather(client *http.Client) *OpenMeteoWeather {
	return &OpenMeteoWeather{
		name:    "openmeteo-forecast",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: HTTPClientConfig{Client: client, Backoff: defaultBackoff()},
		circuit: newBreaker("openmeteo-forecast"),
	}
}

func (p *OpenMeteoWeather) Name() string {
	return p.name
}

// FetchCurrent returns the current 2m temperature and relative humidity.
func (p *OpenMeteoWeather) FetchCurrent(ctx context.Context, coord enviro.Coordinate) (float64, float64, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", coord.Lat))
		values.Set("longitude", fmt.Sprintf("%f", coord.Lon))
		values.Set("current", "temperature_2m,relative_humidity_2m")
		values.Set("timezone", "auto")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload struct {
		Current struct {
			Temperature2m      *float64 `json:"temperature_2m"`
			RelativeHumidity2m *float64 `json:"relative_humidity_2m"`
		} `json:"current"`
	}

	if err := fetchJSON(ctx, p.httpCfg, p.circuit, buildRequest, &payload); err != nil {
		return 0, 0, err
	}

	if payload.Current.Temperature2m == nil || payload.Current.RelativeHumidity2m == nil {
		return 0, 0, fmt.Errorf("openmeteo forecast response missing current fields")
	}

	return *payload.Current.Temperature2m, *payload.Current.RelativeHumidity2m, nil
}
