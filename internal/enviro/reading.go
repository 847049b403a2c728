package enviro

import (
	"fmt"
	"time"
)

// Coordinate identifies the geographic point an analysis targets.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Key returns a canonical string key for indexing this coordinate in stores.
// Coordinates are rounded to 4 decimals (~11m) so nearby requests share a key.
func (c Coordinate) Key() string {
	return fmt.Sprintf("%.4f:%.4f", c.Lat, c.Lon)
}

// Reading is the normalized environmental view of one coordinate at fetch time.
// It is built once per query and not mutated afterwards, with one exception:
// callers may overwrite SoilPH when the user supplies a lab-measured value.
type Reading struct {
	Coordinate Coordinate `json:"coordinate"`
	FetchedAt  time.Time  `json:"fetchedAt"` // always UTC

	TemperatureC   float64 `json:"temperatureC"`
	HumidityPct    float64 `json:"humidityPercent"`
	AnnualPrecipMM float64 `json:"annualPrecipMm"`
	AltitudeM      float64 `json:"altitudeM"`
	SlopePct       float64 `json:"slopePercent"`
	DaylightHours  float64 `json:"daylightHours"`
	SoilPH         float64 `json:"soilPh"`

	// Sources records which sub-queries contributed real data and which
	// degraded to a default value.
	Sources []SourceStatus `json:"sources,omitempty"`
}

// SourceStatus describes the outcome of one provider sub-query.
type SourceStatus struct {
	Provider string `json:"provider"`
	Fallback bool   `json:"fallback"`
}

// Place is a single geocoding candidate for a free-text place search.
type Place struct {
	Label string  `json:"label"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

// EstimateSoilPH derives a soil pH estimate from annual rainfall. Wetter
// climates leach bases from the soil and trend acidic, dry climates trend
// alkaline. It is a coarse band heuristic; users with a lab analysis are
// expected to override the value.
func EstimateSoilPH(annualRainfallMM float64) float64 {
	switch {
	case annualRainfallMM > 2000:
		return 5.0
	case annualRainfallMM > 1000:
		return 6.0
	case annualRainfallMM > 400:
		return 7.0
	default:
		return 7.8
	}
}
