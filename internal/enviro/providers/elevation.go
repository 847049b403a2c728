package providers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/agrodecision/agrodecision/internal/enviro"
)

// probeOffsetDeg is the latitude offset of the second elevation probe.
// 0.001 degrees of latitude is roughly 111 meters on the ground.
const (
	probeOffsetDeg = 0.001
	probeDistanceM = 111.0
)

// OpenMeteoElevation implements enviro.ElevationProvider against the
// Open-Meteo elevation API. Slope is a finite difference between the target
// point and a probe ~111m north of it: a one-axis approximation that is
// direction-sensitive, accepted as a coarse terrain indicator.
type OpenMeteoElevation struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoElevation(client *http.Client) *OpenMeteoElevation {
	return &OpenMeteoElevation{
		name:    "openmeteo-elevation",
		baseURL: "https://api.open-meteo.com/v1/elevation",
		httpCfg: HTTPClientConfig{Client: client, Backoff: defaultBackoff()},
		circuit: newBreaker("openmeteo-elevation"),
	}
}

func (p *OpenMeteoElevation) Name() string {
	return p.name
}

// FetchAltitudeAndSlope returns the terrain slope (%) and the altitude (m)
// at the coordinate.
func (p *OpenMeteoElevation) FetchAltitudeAndSlope(ctx context.Context, coord enviro.Coordinate) (float64, float64, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f,%f", coord.Lat, coord.Lat+probeOffsetDeg))
		values.Set("longitude", fmt.Sprintf("%f,%f", coord.Lon, coord.Lon))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload struct {
		Elevation []*float64 `json:"elevation"`
	}

	if err := fetchJSON(ctx, p.httpCfg, p.circuit, buildRequest, &payload); err != nil {
		return 0, 0, err
	}

	if len(payload.Elevation) < 2 || payload.Elevation[0] == nil || payload.Elevation[1] == nil {
		return 0, 0, fmt.Errorf("openmeteo elevation returned incomplete probe pair")
	}

	h1 := *payload.Elevation[0]
	h2 := *payload.Elevation[1]
	slopePct := math.Abs(h2-h1) / probeDistanceM * 100

	return slopePct, h1, nil
}
