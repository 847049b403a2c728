package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/agrodecision/agrodecision/internal/enviro"
)

// OpenMeteoArchive implements enviro.RainfallProvider against the Open-Meteo
// historical archive API. It sums the daily precipitation series over a true
// trailing 365-day window ending yesterday; missing days count as zero.
type OpenMeteoArchive struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker

	// now is injectable so tests can pin the window.
	now func() time.Time
}

func NewOpenMeteoArchive(client *http.Client) *OpenMeteoArchive {
	return &OpenMeteoArchive{
		name:    "openmeteo-archive",
		baseURL: "https://archive-api.open-meteo.com/v1/archive",
		httpCfg: HTTPClientConfig{Client: client, Backoff: defaultBackoff()},
		circuit: newBreaker("openmeteo-archive"),
		now:     time.Now,
	}
}

func (p *OpenMeteoArchive) Name() string {
	return p.name
}

// FetchAnnualRainfall returns the summed precipitation (mm) for the trailing
// year. The archive publishes with a short delay, so the window ends
// yesterday rather than today.
func (p *OpenMeteoArchive) FetchAnnualRainfall(ctx context.Context, coord enviro.Coordinate) (float64, error) {
	end := p.now().UTC().AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -364)

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", coord.Lat))
		values.Set("longitude", fmt.Sprintf("%f", coord.Lon))
		values.Set("start_date", start.Format("2006-01-02"))
		values.Set("end_date", end.Format("2006-01-02"))
		values.Set("daily", "precipitation_sum")
		values.Set("timezone", "auto")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	// Entries can be null for days the archive has not consolidated yet.
	var payload struct {
		Daily struct {
			PrecipitationSum []*float64 `json:"precipitation_sum"`
		} `json:"daily"`
	}

	if err := fetchJSON(ctx, p.httpCfg, p.circuit, buildRequest, &payload); err != nil {
		return 0, err
	}

	if len(payload.Daily.PrecipitationSum) == 0 {
		return 0, fmt.Errorf("openmeteo archive returned empty precipitation series")
	}

	var total float64
	for _, day := range payload.Daily.PrecipitationSum {
		if day != nil {
			total += *day
		}
	}

	return total, nil
}
