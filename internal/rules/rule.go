package rules

import (
	"fmt"
	"strings"
)

// Kind classifies a rule as covering a crop variety or an animal breed.
// It drives which check branch the scorer applies.
type Kind string

const (
	KindCrop   Kind = "crop"
	KindAnimal Kind = "animal"
)

// Rule is one threshold row for a specific variety or breed. The CSV column
// names are a stable contract shared with the reference tables and must not
// be renamed.
type Rule struct {
	Variety string `csv:"variedad" json:"variety"`
	Species string `csv:"especie" json:"species"`

	TempMinC    float64 `csv:"temp_min" json:"tempMinC"`
	TempMaxC    float64 `csv:"temp_max" json:"tempMaxC"`
	SlopeMaxPct float64 `csv:"pendiente_max" json:"slopeMaxPercent"`

	// Crop-specific thresholds.
	PHMin       float64 `csv:"ph_min" json:"phMin"`
	PHMax       float64 `csv:"ph_max" json:"phMax"`
	PrecipMinMM float64 `csv:"precip_min_mm" json:"precipMinMm"`

	// Animal-specific thresholds.
	AltitudeMaxM   float64 `csv:"altitud_max_m" json:"altitudeMaxM"`
	HumidityMaxPct float64 `csv:"humedad_max" json:"humidityMaxPercent"`

	RiskNote string `csv:"riesgo_extra" json:"riskNote,omitempty"`

	// Kind is resolved from the especie marker at load time, never at
	// evaluation time.
	Kind Kind `csv:"-" json:"kind"`
}

// resolveKind maps the free-text especie column to a Kind. The reference
// tables mark rows with a leading "Cultivo" or "Animal" tag; anything else is
// a data error that fails the load.
func resolveKind(species string) (Kind, error) {
	switch {
	case strings.HasPrefix(strings.TrimSpace(species), "Cultivo"):
		return KindCrop, nil
	case strings.HasPrefix(strings.TrimSpace(species), "Animal"):
		return KindAnimal, nil
	default:
		return "", fmt.Errorf("especie %q does not carry a Cultivo or Animal marker", species)
	}
}
