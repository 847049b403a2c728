package enviro

import (
	"context"
	"log"
	"sync"
	"time"
)

// Aggregator queries every environmental provider for a coordinate and joins
// the results into one Reading. Sub-queries are independent, so they run
// concurrently and are individually fault-isolated: a failing provider is
// logged and replaced by its default, it never fails the whole reading.
type Aggregator struct {
	weather   WeatherProvider
	rainfall  RainfallProvider
	elevation ElevationProvider
	solar     SolarProvider
}

// NewAggregator creates an Aggregator. Any provider may be nil, in which case
// its fields always take the default value.
func NewAggregator(weather WeatherProvider, rainfall RainfallProvider, elevation ElevationProvider, solar SolarProvider) *Aggregator {
	return &Aggregator{
		weather:   weather,
		rainfall:  rainfall,
		elevation: elevation,
		solar:     solar,
	}
}

// FetchAll produces a complete Reading for the coordinate. It never returns
// an error: every provider failure degrades to a documented default, so a
// reading is available even under total network failure. Soil pH is estimated
// from annual rainfall; callers may overwrite it with a measured value.
func (a *Aggregator) FetchAll(ctx context.Context, coord Coordinate) Reading {
	reading := Reading{
		Coordinate:     coord,
		FetchedAt:      time.Now().UTC(),
		TemperatureC:   DefaultTemperatureC,
		HumidityPct:    DefaultHumidityPct,
		AnnualPrecipMM: DefaultAnnualPrecip,
		AltitudeM:      DefaultAltitudeM,
		SlopePct:       DefaultSlopePct,
		DaylightHours:  DefaultDaylightHours,
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		sources []SourceStatus
	)

	report := func(name string, fallback bool) {
		mu.Lock()
		sources = append(sources, SourceStatus{Provider: name, Fallback: fallback})
		mu.Unlock()
	}

	if a.weather != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			temp, humidity, err := a.weather.FetchCurrent(ctx, coord)
			if err != nil {
				log.Printf("enviro: weather fetch failed for %s: %v", coord.Key(), err)
				report(a.weather.Name(), true)
				return
			}
			reading.TemperatureC = temp
			reading.HumidityPct = humidity
			report(a.weather.Name(), false)
		}()
	}

	if a.rainfall != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mm, err := a.rainfall.FetchAnnualRainfall(ctx, coord)
			if err != nil {
				log.Printf("enviro: rainfall fetch failed for %s: %v", coord.Key(), err)
				report(a.rainfall.Name(), true)
				return
			}
			reading.AnnualPrecipMM = mm
			report(a.rainfall.Name(), false)
		}()
	}

	if a.elevation != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slope, altitude, err := a.elevation.FetchAltitudeAndSlope(ctx, coord)
			if err != nil {
				log.Printf("enviro: elevation fetch failed for %s: %v", coord.Key(), err)
				report(a.elevation.Name(), true)
				return
			}
			reading.SlopePct = slope
			reading.AltitudeM = altitude
			report(a.elevation.Name(), false)
		}()
	}

	if a.solar != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hours, err := a.solar.FetchDaylightHours(ctx, coord)
			if err != nil {
				log.Printf("enviro: daylight fetch failed for %s: %v", coord.Key(), err)
				report(a.solar.Name(), true)
				return
			}
			reading.DaylightHours = hours
			report(a.solar.Name(), false)
		}()
	}

	wg.Wait()

	// Derived after the join: the pH heuristic depends on annual rainfall.
	reading.SoilPH = EstimateSoilPH(reading.AnnualPrecipMM)
	reading.Sources = sources

	return reading
}
