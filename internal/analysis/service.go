// Package analysis orchestrates the acquisition, caching, scoring and
// advisory layers into one site-suitability analysis per request.
package analysis

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/agrodecision/agrodecision/internal/advisory"
	"github.com/agrodecision/agrodecision/internal/common"
	"github.com/agrodecision/agrodecision/internal/enviro"
	"github.com/agrodecision/agrodecision/internal/rules"
	"github.com/agrodecision/agrodecision/internal/scoring"
	"github.com/agrodecision/agrodecision/internal/store"
)

// ReadingFetcher abstracts the environmental aggregator so tests can inject
// canned readings.
type ReadingFetcher interface {
	FetchAll(ctx context.Context, coord enviro.Coordinate) enviro.Reading
}

// Service ties the aggregator, reading cache, rule catalog and geocoders
// together.
type Service struct {
	fetcher   ReadingFetcher
	geocoders []enviro.Geocoder
	catalog   *rules.Catalog
	cache     *store.MemoryStore

	// readingMaxAge bounds how old a cached reading may be before the
	// providers are queried again.
	readingMaxAge time.Duration
}

// NewService creates a Service. cache may be nil to disable reading reuse.
func NewService(fetcher ReadingFetcher, geocoders []enviro.Geocoder, catalog *rules.Catalog, cache *store.MemoryStore, readingMaxAge time.Duration) *Service {
	return &Service{
		fetcher:       fetcher,
		geocoders:     geocoders,
		catalog:       catalog,
		cache:         cache,
		readingMaxAge: readingMaxAge,
	}
}

// Request identifies one analysis: where, what, and an optional measured soil
// pH that overrides the heuristic estimate.
type Request struct {
	Coordinate enviro.Coordinate
	Category   string
	Variety    string
	SoilPH     *float64
}

// Report is the full analysis response.
type Report struct {
	ID          string         `json:"id"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Category    string         `json:"category"`
	Variety     string         `json:"variety"`
	Reading     enviro.Reading `json:"reading"`
	Result      scoring.Result `json:"result"`
	Tips        []advisory.Tip `json:"tips"`

	// Kind-specific indicators: thermal comfort for animals, water balance
	// for crops.
	THI            *float64 `json:"thi,omitempty"`
	WaterBalanceMM *float64 `json:"waterBalanceMm,omitempty"`
}

// Analyze runs one full analysis. Rule errors (missing category table,
// unknown variety) propagate to the caller; acquisition failures never do,
// they only degrade the reading.
func (s *Service) Analyze(ctx context.Context, req Request) (Report, error) {
	// Resolve the rule first: there is no point querying providers for a
	// misconfigured category or an unknown variety.
	rule, err := s.catalog.Find(req.Category, req.Variety)
	if err != nil {
		return Report{}, err
	}

	reading := s.currentReading(ctx, req.Coordinate)

	if req.SoilPH != nil {
		reading.SoilPH = *req.SoilPH
	}

	result := scoring.Evaluate(reading, rule)
	tips := advisory.Tips(advisory.Input{
		Reading:  reading,
		Category: req.Category,
		Kind:     rule.Kind,
	})

	report := Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Category:    req.Category,
		Variety:     req.Variety,
		Reading:     reading,
		Result:      result,
		Tips:        tips,
	}

	switch rule.Kind {
	case rules.KindAnimal:
		thi := common.Round1(advisory.THI(reading.TemperatureC, reading.HumidityPct))
		report.THI = &thi
	case rules.KindCrop:
		balance := advisory.WaterBalance(reading.AnnualPrecipMM)
		report.WaterBalanceMM = &balance
	}

	return report, nil
}

// currentReading returns a cached fresh reading when available, otherwise
// fetches a new one and caches it.
func (s *Service) currentReading(ctx context.Context, coord enviro.Coordinate) enviro.Reading {
	if s.cache != nil {
		if reading, err := s.cache.Fresh(coord, s.readingMaxAge); err == nil {
			return reading
		}
	}

	reading := s.fetcher.FetchAll(ctx, coord)
	if s.cache != nil {
		s.cache.Save(reading)
	}
	return reading
}

// Refresh fetches and caches a reading for the coordinate, bypassing the
// freshness check. Used by the scheduler for tracked sites.
func (s *Service) Refresh(ctx context.Context, coord enviro.Coordinate) {
	reading := s.fetcher.FetchAll(ctx, coord)
	if s.cache != nil {
		s.cache.Save(reading)
	}
}

// LatestReading returns the newest cached reading for a coordinate.
func (s *Service) LatestReading(coord enviro.Coordinate) (enviro.Reading, error) {
	if s.cache == nil {
		return enviro.Reading{}, store.ErrNotFound
	}
	return s.cache.Latest(coord)
}

// ReadingHistory returns the cached readings for a coordinate in a window.
func (s *Service) ReadingHistory(coord enviro.Coordinate, from, to time.Time) ([]enviro.Reading, error) {
	if s.cache == nil {
		return nil, store.ErrNotFound
	}
	return s.cache.Range(coord, from, to)
}

// SearchPlaces queries the geocoders in order and returns the first
// non-empty candidate list. Failures are logged and treated as no-match: the
// place search never errors out to the user.
func (s *Service) SearchPlaces(ctx context.Context, query string) []enviro.Place {
	for _, g := range s.geocoders {
		places, err := g.Search(ctx, query)
		if err != nil {
			log.Printf("analysis: geocoder %s failed for %q: %v", g.Name(), query, err)
			continue
		}
		if len(places) > 0 {
			return places
		}
	}
	return nil
}

// Categories lists the rule categories the catalog serves.
func (s *Service) Categories() ([]string, error) {
	return s.catalog.Categories()
}

// Varieties lists the variety names available in a category.
func (s *Service) Varieties(category string) ([]string, error) {
	return s.catalog.Varieties(category)
}
