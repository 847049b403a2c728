// Package advisory derives free-text agronomic and zootechnic tips from an
// environmental reading. It is a second, independent rule table next to the
// scorer: each tip is a condition over the same reading fields plus the
// category, with a severity tag. It shares no state with the scorer.
package advisory

import (
	"fmt"

	"github.com/agrodecision/agrodecision/internal/enviro"
	"github.com/agrodecision/agrodecision/internal/rules"
	"github.com/agrodecision/agrodecision/internal/scoring"
)

// Categories with category-specific tips. Other animal categories still get
// the generic animal tips.
const (
	CategoryCrops   = "cultivos"
	CategoryBovines = "bovinos"
	CategorySwine   = "porcinos"
)

// Tip is one triggered advisory message.
type Tip struct {
	Severity scoring.Severity `json:"severity"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
}

// Input bundles what the tip rules evaluate.
type Input struct {
	Reading  enviro.Reading
	Category string
	Kind     rules.Kind
}

// tipRule is one row of the advisory table.
type tipRule struct {
	code     string
	severity scoring.Severity
	applies  func(Input) bool
	message  func(Input) string
}

// tipTable holds every advisory rule in display order.
var tipTable = []tipRule{
	{
		code:     "frost_risk",
		severity: scoring.SeverityWarning,
		applies: func(in Input) bool {
			return in.Kind == rules.KindCrop && in.Reading.AltitudeM > 3500 && in.Reading.TemperatureC < 10
		},
		message: func(in Input) string {
			return "Frost risk: nocturnal radiation is high at this altitude. Use thermal covers or native varieties."
		},
	},
	{
		code:     "atmospheric_water_stress",
		severity: scoring.SeverityWarning,
		applies: func(in Input) bool {
			return in.Kind == rules.KindCrop && in.Reading.TemperatureC > 28 && in.Reading.HumidityPct < 40
		},
		message: func(in Input) string {
			return "Atmospheric water stress: plants will close stomata. Irrigate frequently, preferably at night."
		},
	},
	{
		code:     "fungal_alert",
		severity: scoring.SeverityBlocking,
		applies: func(in Input) bool {
			return in.Kind == rules.KindCrop && in.Reading.TemperatureC > 25 && in.Reading.HumidityPct > 80
		},
		message: func(in Input) string {
			return "Fungal alert: heat plus humidity favors rust and mildew. Apply preventive fungicide."
		},
	},
	{
		code:     "severe_acidity",
		severity: scoring.SeverityBlocking,
		applies: func(in Input) bool {
			return in.Kind == rules.KindCrop && in.Reading.SoilPH < 5.2
		},
		message: func(in Input) string {
			return fmt.Sprintf("Severe soil acidity (pH %.1f): free aluminum damages roots. Apply dolomitic lime.", in.Reading.SoilPH)
		},
	},
	{
		code:     "nutrient_lockout",
		severity: scoring.SeverityWarning,
		applies: func(in Input) bool {
			return in.Kind == rules.KindCrop && in.Reading.SoilPH > 7.5
		},
		message: func(in Input) string {
			return fmt.Sprintf("Alkaline soil (pH %.1f): iron becomes insoluble and leaves yellow. Use chelates.", in.Reading.SoilPH)
		},
	},
	{
		code:     "photoperiod_deficit",
		severity: scoring.SeverityWarning,
		applies: func(in Input) bool {
			return in.Kind == rules.KindCrop && in.Reading.DaylightHours < 10
		},
		message: func(in Input) string {
			return fmt.Sprintf("Short photoperiod (%.1fh of daylight): expect slower vegetative growth for light-demanding crops.", in.Reading.DaylightHours)
		},
	},
	{
		code:     "bovine_altitude_sickness",
		severity: scoring.SeverityBlocking,
		applies: func(in Input) bool {
			return in.Category == CategoryBovines && in.Reading.AltitudeM > 2800
		},
		message: func(in Input) string {
			return "Brisket disease risk: low oxygen pressure at this altitude. Avoid pure Holstein stock."
		},
	},
	{
		code:     "swine_heat_stress",
		severity: scoring.SeverityBlocking,
		applies: func(in Input) bool {
			return in.Category == CategorySwine && in.Reading.TemperatureC > 27
		},
		message: func(in Input) string {
			return "Swine heat stress: pigs cannot sweat and death losses are possible. Install showers or foggers."
		},
	},
	{
		code:     "sanitary_humidity",
		severity: scoring.SeverityWarning,
		applies: func(in Input) bool {
			return in.Kind == rules.KindAnimal && in.Reading.HumidityPct > 85
		},
		message: func(in Input) string {
			return "Sanitary risk: wet bedding breeds bacteria and ammonia. Ventilate and clean immediately."
		},
	},
}

// Tips evaluates the advisory table and returns the triggered tips in table
// order. An empty result means conditions are standard.
func Tips(in Input) []Tip {
	var tips []Tip
	for _, r := range tipTable {
		if r.applies(in) {
			tips = append(tips, Tip{
				Severity: r.severity,
				Code:     r.code,
				Message:  r.message(in),
			})
		}
	}
	return tips
}

// THI computes the temperature-humidity index used as a livestock thermal
// comfort indicator.
func THI(tempC, humidityPct float64) float64 {
	return 0.8*tempC + (humidityPct/100)*(tempC-14.4) + 46.4
}

// THISeverity bands a THI value: below 72 is comfortable, below 78 is mild
// stress, anything above is severe heat stress.
func THISeverity(thi float64) scoring.Severity {
	switch {
	case thi < 72:
		return scoring.SeverityOk
	case thi < 78:
		return scoring.SeverityWarning
	default:
		return scoring.SeverityBlocking
	}
}

// waterBaselineMM is the reference annual water demand used for the crop
// water balance indicator.
const waterBaselineMM = 800.0

// WaterBalance reports the annual rainfall surplus (positive) or deficit
// (negative) against the reference demand.
func WaterBalance(annualPrecipMM float64) float64 {
	return annualPrecipMM - waterBaselineMM
}
