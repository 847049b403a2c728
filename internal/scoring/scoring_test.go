package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrodecision/agrodecision/internal/enviro"
	"github.com/agrodecision/agrodecision/internal/rules"
)

func cropRule() rules.Rule {
	return rules.Rule{
		Variety:     "Maiz Amarillo Duro",
		Species:     "Cultivo - Cereal",
		Kind:        rules.KindCrop,
		TempMinC:    15,
		TempMaxC:    28,
		SlopeMaxPct: 30,
		PHMin:       6.0,
		PHMax:       7.0,
		PrecipMinMM: 600,
	}
}

func animalRule() rules.Rule {
	return rules.Rule{
		Variety:        "Holstein",
		Species:        "Animal - Bovino Lechero",
		Kind:           rules.KindAnimal,
		TempMinC:       0,
		TempMaxC:       30,
		SlopeMaxPct:    40,
		AltitudeMaxM:   2800,
		HumidityMaxPct: 80,
	}
}

func severities(reasons []Reason) []Severity {
	out := make([]Severity, 0, len(reasons))
	for _, r := range reasons {
		out = append(out, r.Severity)
	}
	return out
}

func codes(reasons []Reason) []string {
	out := make([]string, 0, len(reasons))
	for _, r := range reasons {
		out = append(out, r.Code)
	}
	return out
}

func TestEvaluate_AllWithinBounds_ScoresFull(t *testing.T) {
	reading := enviro.Reading{
		TemperatureC:   22,
		SlopePct:       5,
		SoilPH:         6.5,
		AnnualPrecipMM: 900,
	}

	result := Evaluate(reading, cropRule())

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, BandFit, result.Band)
	for _, r := range result.Reasons {
		assert.Equal(t, SeverityOk, r.Severity, "reason %s should be ok", r.Code)
	}
}

func TestEvaluate_CropTemperatureOutOfRange(t *testing.T) {
	reading := enviro.Reading{
		TemperatureC:   32,
		SlopePct:       5,
		SoilPH:         6.5,
		AnnualPrecipMM: 900,
	}

	result := Evaluate(reading, cropRule())

	assert.Equal(t, 80, result.Score)
	require.Len(t, result.Reasons, 4)
	assert.Equal(t,
		[]string{"temperature_out_of_range", "slope_ok", "soil_ph_ok", "rainfall_ok"},
		codes(result.Reasons))
	assert.Equal(t,
		[]Severity{SeverityWarning, SeverityOk, SeverityOk, SeverityOk},
		severities(result.Reasons))
}

func TestEvaluate_AnimalAltitudeExceeded(t *testing.T) {
	reading := enviro.Reading{
		TemperatureC: 18,
		HumidityPct:  50,
		SlopePct:     5,
		AltitudeM:    3200,
	}

	result := Evaluate(reading, animalRule())

	assert.Equal(t, 60, result.Score)
	assert.Equal(t, BandMediumRisk, result.Band)

	var blocking *Reason
	for i := range result.Reasons {
		if result.Reasons[i].Code == "altitude_exceeded" {
			blocking = &result.Reasons[i]
		}
	}
	require.NotNil(t, blocking, "expected an altitude_exceeded reason")
	assert.Equal(t, SeverityBlocking, blocking.Severity)
}

func TestEvaluate_SlopePenaltyAsymmetry(t *testing.T) {
	// Same slope overage: crops lose 30 points, animals 15.
	crop := cropRule()
	crop.SlopeMaxPct = 10

	animal := animalRule()
	animal.SlopeMaxPct = 10

	reading := enviro.Reading{
		TemperatureC:   20,
		HumidityPct:    50,
		SlopePct:       25,
		SoilPH:         6.5,
		AnnualPrecipMM: 900,
		AltitudeM:      1000,
	}

	cropResult := Evaluate(reading, crop)
	animalResult := Evaluate(reading, animal)

	assert.Equal(t, 70, cropResult.Score)
	assert.Equal(t, 85, animalResult.Score)
}

func TestEvaluate_ScoreStaysWithinRange(t *testing.T) {
	// Every crop check fails: 100 - 20 - 30 - 25 - 20 = 5.
	rule := cropRule()
	reading := enviro.Reading{
		TemperatureC:   45,
		SlopePct:       80,
		SoilPH:         3.0,
		AnnualPrecipMM: 0,
	}

	result := Evaluate(reading, rule)
	assert.Equal(t, 5, result.Score)
	assert.Equal(t, BandUnfit, result.Band)

	// An animal rule failing every check stays within the valid range too.
	animal := animalRule()
	animal.SlopeMaxPct = 1
	animal.AltitudeMaxM = 100
	animal.HumidityMaxPct = 10
	animal.TempMaxC = 5

	hostile := enviro.Reading{
		TemperatureC: 40,
		HumidityPct:  95,
		SlopePct:     60,
		AltitudeM:    4500,
	}
	floor := Evaluate(hostile, animal)
	assert.GreaterOrEqual(t, floor.Score, 0)
	assert.Equal(t, 15, floor.Score) // 100 - 20 - 15 - 40 - 10
}

func TestEvaluate_Idempotent(t *testing.T) {
	reading := enviro.Reading{
		TemperatureC:   32,
		SlopePct:       35,
		SoilPH:         5.0,
		AnnualPrecipMM: 100,
	}

	first := Evaluate(reading, cropRule())
	second := Evaluate(reading, cropRule())
	assert.Equal(t, first, second)
}

func TestEvaluate_RiskNoteDefaultsToNA(t *testing.T) {
	result := Evaluate(enviro.Reading{TemperatureC: 20, SoilPH: 6.5, AnnualPrecipMM: 900}, cropRule())
	assert.Equal(t, "N/A", result.RiskNote)

	withNote := cropRule()
	withNote.RiskNote = "Sensible a heladas tardias"
	result = Evaluate(enviro.Reading{TemperatureC: 20, SoilPH: 6.5, AnnualPrecipMM: 900}, withNote)
	assert.Equal(t, "Sensible a heladas tardias", result.RiskNote)
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		score int
		want  Band
	}{
		{100, BandFit},
		{80, BandFit},
		{79, BandMediumRisk},
		{50, BandMediumRisk},
		{49, BandUnfit},
		{0, BandUnfit},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BandFor(tt.score), "score %d", tt.score)
	}
}
