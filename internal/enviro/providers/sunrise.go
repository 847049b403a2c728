package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/agrodecision/agrodecision/internal/common"
	"github.com/agrodecision/agrodecision/internal/enviro"
)

// SunriseSunset implements enviro.SolarProvider against sunrise-sunset.org.
// The API reports day length in seconds; it is converted to hours rounded to
// one decimal.
type SunriseSunset struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewSunriseSunset(client *http.Client) *SunriseSunset {
	return &SunriseSunset{
		name:    "sunrise-sunset",
		baseURL: "https://api.sunrise-sunset.org/json",
		httpCfg: HTTPClientConfig{Client: client, Backoff: defaultBackoff()},
		circuit: newBreaker("sunrise-sunset"),
	}
}

func (p *SunriseSunset) Name() string {
	return p.name
}

// FetchDaylightHours returns today's photoperiod for the coordinate.
func (p *SunriseSunset) FetchDaylightHours(ctx context.Context, coord enviro.Coordinate) (float64, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", coord.Lat))
		values.Set("lng", fmt.Sprintf("%f", coord.Lon))
		values.Set("formatted", "0")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload struct {
		Results struct {
			DayLength float64 `json:"day_length"` // seconds
		} `json:"results"`
		Status string `json:"status"`
	}

	if err := fetchJSON(ctx, p.httpCfg, p.circuit, buildRequest, &payload); err != nil {
		return 0, err
	}

	if payload.Status != "OK" {
		return 0, fmt.Errorf("sunrise-sunset returned status %q", payload.Status)
	}
	if payload.Results.DayLength <= 0 {
		return 0, fmt.Errorf("sunrise-sunset returned non-positive day length")
	}

	return common.Round1(payload.Results.DayLength / 3600), nil
}
