package enviro

import (
	"context"
)

// Default values used when a provider sub-query fails. The acquisition layer
// favors availability over correctness: a degraded reading is always returned
// rather than an error.
const (
	DefaultTemperatureC  = 20.0
	DefaultHumidityPct   = 60.0
	DefaultAnnualPrecip  = 0.0
	DefaultAltitudeM     = 0.0
	DefaultSlopePct      = 0.0
	DefaultDaylightHours = 12.0
)

// WeatherProvider supplies the current temperature and relative humidity.
type WeatherProvider interface {
	Name() string
	FetchCurrent(ctx context.Context, coord Coordinate) (tempC, humidityPct float64, err error)
}

// RainfallProvider supplies the total precipitation over the trailing 365
// days ending yesterday. Implementations must sum a real daily series, not
// extrapolate from a short sample.
type RainfallProvider interface {
	Name() string
	FetchAnnualRainfall(ctx context.Context, coord Coordinate) (mm float64, err error)
}

// ElevationProvider supplies altitude and a terrain slope estimate.
type ElevationProvider interface {
	Name() string
	FetchAltitudeAndSlope(ctx context.Context, coord Coordinate) (slopePct, altitudeM float64, err error)
}

// SolarProvider supplies the day length in hours for the coordinate.
type SolarProvider interface {
	Name() string
	FetchDaylightHours(ctx context.Context, coord Coordinate) (hours float64, err error)
}

// Geocoder resolves a free-text place query into candidate coordinates.
type Geocoder interface {
	Name() string
	Search(ctx context.Context, query string) ([]Place, error)
}
