// Package scoring evaluates an environmental reading against a threshold
// rule and produces a deterministic 0-100 suitability score with ordered,
// severity-tagged reasons. The same (reading, rule) pair always yields the
// same result.
package scoring

import (
	"fmt"

	"github.com/agrodecision/agrodecision/internal/common"
	"github.com/agrodecision/agrodecision/internal/enviro"
	"github.com/agrodecision/agrodecision/internal/rules"
)

// Severity classifies how limiting an evaluated condition is.
type Severity string

const (
	SeverityOk       Severity = "ok"
	SeverityWarning  Severity = "warning"
	SeverityBlocking Severity = "blocking"
)

// Band is the presentation convention consumers apply to a score.
type Band string

const (
	BandFit        Band = "fit"         // score >= 80
	BandMediumRisk Band = "medium_risk" // 50 <= score < 80
	BandUnfit      Band = "unfit"       // score < 50
)

// BandFor maps a score to its presentation band.
func BandFor(score int) Band {
	switch {
	case score >= 80:
		return BandFit
	case score >= 50:
		return BandMediumRisk
	default:
		return BandUnfit
	}
}

// Penalty weights. Altitude is the heaviest single penalty in the system,
// reflecting the severity of hypoxia risk for livestock.
const (
	penaltyTemperature = 20
	penaltySlopeCrop   = 30
	penaltySlopeAnimal = 15
	penaltySoilPH      = 25
	penaltyRainfall    = 20
	penaltyAltitude    = 40
	penaltyHumidity    = 10
)

// Reason is one evaluated condition, tagged with a stable code and severity.
type Reason struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

// Result is the outcome of one evaluation.
type Result struct {
	Score    int      `json:"score"`
	Band     Band     `json:"band"`
	Reasons  []Reason `json:"reasons"`
	RiskNote string   `json:"riskNote"`
}

// Evaluate scores the reading against the rule. Checks run in a fixed order
// (temperature, slope, then the kind-specific branch) and each appends one
// reason; the order is a display contract, not an implementation detail.
func Evaluate(reading enviro.Reading, rule rules.Rule) Result {
	score := 100
	var reasons []Reason

	// Temperature, applied to every kind.
	if reading.TemperatureC < rule.TempMinC || reading.TemperatureC > rule.TempMaxC {
		score -= penaltyTemperature
		reasons = append(reasons, Reason{
			Severity: SeverityWarning,
			Code:     "temperature_out_of_range",
			Message: fmt.Sprintf("Current temperature (%.1f°C) is outside the ideal range (%.0f-%.0f°C).",
				reading.TemperatureC, rule.TempMinC, rule.TempMaxC),
		})
	} else {
		reasons = append(reasons, Reason{
			Severity: SeverityOk,
			Code:     "temperature_ok",
			Message:  "Temperature is adequate.",
		})
	}

	// Slope, applied to every kind. Crops are penalized harder: machinery and
	// irrigation become impractical on steep terrain.
	if reading.SlopePct > rule.SlopeMaxPct {
		if rule.Kind == rules.KindCrop {
			score -= penaltySlopeCrop
		} else {
			score -= penaltySlopeAnimal
		}
		reasons = append(reasons, Reason{
			Severity: SeverityBlocking,
			Code:     "slope_exceeded",
			Message: fmt.Sprintf("Terrain slope (%.1f%%) exceeds the allowed maximum (%.0f%%).",
				reading.SlopePct, rule.SlopeMaxPct),
		})
	} else {
		reasons = append(reasons, Reason{
			Severity: SeverityOk,
			Code:     "slope_ok",
			Message:  "Terrain slope is within workable limits.",
		})
	}

	switch rule.Kind {
	case rules.KindCrop:
		if reading.SoilPH < rule.PHMin || reading.SoilPH > rule.PHMax {
			score -= penaltySoilPH
			reasons = append(reasons, Reason{
				Severity: SeverityWarning,
				Code:     "soil_ph_out_of_range",
				Message: fmt.Sprintf("Soil pH (%.1f) is inadequate. Ideal: %.1f-%.1f.",
					reading.SoilPH, rule.PHMin, rule.PHMax),
			})
		} else {
			reasons = append(reasons, Reason{
				Severity: SeverityOk,
				Code:     "soil_ph_ok",
				Message:  "Soil pH is optimal.",
			})
		}

		if reading.AnnualPrecipMM < rule.PrecipMinMM {
			score -= penaltyRainfall
			reasons = append(reasons, Reason{
				Severity: SeverityWarning,
				Code:     "rainfall_deficit",
				Message: fmt.Sprintf("Annual rainfall (%.0fmm) falls short of the %.0fmm requirement; deficit of %.0fmm.",
					reading.AnnualPrecipMM, rule.PrecipMinMM, rule.PrecipMinMM-reading.AnnualPrecipMM),
			})
		} else {
			reasons = append(reasons, Reason{
				Severity: SeverityOk,
				Code:     "rainfall_ok",
				Message:  "Annual rainfall covers the water requirement.",
			})
		}

	default: // rules.KindAnimal
		if reading.AltitudeM > rule.AltitudeMaxM {
			score -= penaltyAltitude
			reasons = append(reasons, Reason{
				Severity: SeverityBlocking,
				Code:     "altitude_exceeded",
				Message: fmt.Sprintf("Excessive altitude (%.0f masl). Altitude sickness risk above %.0fm.",
					reading.AltitudeM, rule.AltitudeMaxM),
			})
		} else {
			reasons = append(reasons, Reason{
				Severity: SeverityOk,
				Code:     "altitude_ok",
				Message:  "Altitude is safe.",
			})
		}

		if reading.HumidityPct > rule.HumidityMaxPct {
			score -= penaltyHumidity
			reasons = append(reasons, Reason{
				Severity: SeverityWarning,
				Code:     "humidity_exceeded",
				Message: fmt.Sprintf("High humidity (%.0f%%). Pathogen pressure above %.0f%%.",
					reading.HumidityPct, rule.HumidityMaxPct),
			})
		} else {
			reasons = append(reasons, Reason{
				Severity: SeverityOk,
				Code:     "humidity_ok",
				Message:  "Ambient humidity is within sanitary limits.",
			})
		}
	}

	score = common.ClampInt(score, 0, 100)

	riskNote := rule.RiskNote
	if riskNote == "" {
		riskNote = "N/A"
	}

	return Result{
		Score:    score,
		Band:     BandFor(score),
		Reasons:  reasons,
		RiskNote: riskNote,
	}
}
