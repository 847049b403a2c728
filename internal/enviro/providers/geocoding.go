package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/agrodecision/agrodecision/internal/enviro"
)

// maxGeocodingResults bounds the candidate list shown to the user.
const maxGeocodingResults = 8

// OpenMeteoGeocoder implements enviro.Geocoder against the Open-Meteo
// geocoding API. It returns a ranked candidate list with labels combining
// place name, admin region and country.
type OpenMeteoGeocoder struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoGeocoder(client *http.Client) *OpenMeteoGeocoder {
	return &OpenMeteoGeocoder{
		name:    "openmeteo-geocoding",
		baseURL: "https://geocoding-api.open-meteo.com/v1/search",
		httpCfg: HTTPClientConfig{Client: client, Backoff: defaultBackoff()},
		circuit: newBreaker("openmeteo-geocoding"),
	}
}

func (p *OpenMeteoGeocoder) Name() string {
	return p.name
}

// Search resolves a free-text place query. No-match is not an error: it
// returns an empty slice.
func (p *OpenMeteoGeocoder) Search(ctx context.Context, query string) ([]enviro.Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", query)
		values.Set("count", fmt.Sprintf("%d", maxGeocodingResults))
		values.Set("language", "es")
		values.Set("format", "json")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Admin1    string  `json:"admin1"`
			Country   string  `json:"country"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}

	if err := fetchJSON(ctx, p.httpCfg, p.circuit, buildRequest, &payload); err != nil {
		return nil, err
	}

	places := make([]enviro.Place, 0, len(payload.Results))
	for _, r := range payload.Results {
		parts := []string{r.Name}
		if r.Admin1 != "" {
			parts = append(parts, r.Admin1)
		}
		if r.Country != "" {
			parts = append(parts, r.Country)
		}
		places = append(places, enviro.Place{
			Label: strings.Join(parts, ", "),
			Lat:   r.Latitude,
			Lon:   r.Longitude,
		})
	}

	return places, nil
}

// GoogleGeocoder implements enviro.Geocoder on top of the Google Geocoding
// API via the kelvins/geocoder package. It resolves a single best match, so
// it is wired as a fallback behind the multi-candidate Open-Meteo geocoder.
// The underlying library does not accept a context; calls rely on its own
// internal HTTP timeout.
type GoogleGeocoder struct {
	name string
}

// NewGoogleGeocoder configures the package-level Google API key and returns
// the geocoder.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{name: "google-geocoding"}
}

func (p *GoogleGeocoder) Name() string {
	return p.name
}

// Search resolves the query to at most one candidate.
func (p *GoogleGeocoder) Search(ctx context.Context, query string) ([]enviro.Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	location, err := geocoder.Geocoding(geocoder.Address{Street: query})
	if err != nil {
		return nil, fmt.Errorf("google geocoding: %w", err)
	}

	return []enviro.Place{{
		Label: query,
		Lat:   location.Latitude,
		Lon:   location.Longitude,
	}}, nil
}
