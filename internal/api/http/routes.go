package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/agrodecision/agrodecision/internal/analysis"
	"github.com/agrodecision/agrodecision/internal/enviro"
	"github.com/agrodecision/agrodecision/internal/rules"
	"github.com/agrodecision/agrodecision/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *analysis.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/places/search", func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return fiber.NewError(fiber.StatusBadRequest, "q query parameter is required")
		}

		// Geocoding is best effort: failures surface as an empty list.
		places := service.SearchPlaces(c.Context(), query)
		if places == nil {
			places = []enviro.Place{}
		}

		return c.JSON(fiber.Map{
			"query":  query,
			"places": places,
		})
	})

	v1.Get("/categories", func(c *fiber.Ctx) error {
		categories, err := service.Categories()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list categories")
		}
		return c.JSON(fiber.Map{"categories": categories})
	})

	v1.Get("/categories/:category/varieties", func(c *fiber.Ctx) error {
		varieties, err := service.Varieties(c.Params("category"))
		if err != nil {
			if errors.Is(err, rules.ErrCategoryNotFound) {
				return fiber.NewError(fiber.StatusNotFound,
					"no reference data for category; check the configured rules directory")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load category")
		}
		return c.JSON(fiber.Map{
			"category":  c.Params("category"),
			"varieties": varieties,
		})
	})

	v1.Get("/analysis", func(c *fiber.Ctx) error {
		var req analysisQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report, err := service.Analyze(c.Context(), analysis.Request{
			Coordinate: req.Coordinate.toCoordinate(),
			Category:   req.Category,
			Variety:    req.Variety,
			SoilPH:     req.SoilPH,
		})
		if err != nil {
			switch {
			case errors.Is(err, rules.ErrCategoryNotFound):
				return fiber.NewError(fiber.StatusNotFound,
					"no reference data for category; check the configured rules directory")
			case errors.Is(err, rules.ErrVarietyNotFound):
				return fiber.NewError(fiber.StatusUnprocessableEntity,
					"unknown variety for category")
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "analysis failed")
			}
		}

		return c.JSON(report)
	})

	v1.Get("/readings/current", func(c *fiber.Ctx) error {
		coord, err := parseCoordinateQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		reading, err := service.LatestReading(coord.toCoordinate())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no cached reading for requested coordinate")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch reading")
		}

		return c.JSON(reading)
	})

	v1.Get("/readings/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		coord := req.Coordinate.toCoordinate()
		readings, err := service.ReadingHistory(coord, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no reading history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch reading history")
		}

		return c.JSON(fiber.Map{
			"coordinate": coord,
			"from":       req.From,
			"to":         req.To,
			"readings":   readings,
		})
	})
}

// coordinateQuery holds the lat/lon query parameters.
type coordinateQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

func (q coordinateQuery) toCoordinate() enviro.Coordinate {
	return enviro.Coordinate{Lat: q.Lat, Lon: q.Lon}
}

func parseCoordinateQuery(c *fiber.Ctx) (coordinateQuery, error) {
	var q coordinateQuery

	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		return q, errors.New("lat and lon query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return q, errors.New("lat must be a decimal degree value")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return q, errors.New("lon must be a decimal degree value")
	}

	q.Lat = lat
	q.Lon = lon

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

// analysisQuery holds the query parameters for the analysis endpoint.
type analysisQuery struct {
	Coordinate coordinateQuery
	Category   string   `validate:"required"`
	Variety    string   `validate:"required"`
	SoilPH     *float64 `validate:"omitempty,gte=3,lte=10"`
}

func (a *analysisQuery) bind(c *fiber.Ctx) error {
	coord, err := parseCoordinateQuery(c)
	if err != nil {
		return err
	}
	a.Coordinate = coord

	a.Category = c.Query("category")
	a.Variety = c.Query("variety")

	if phStr := c.Query("soil_ph"); phStr != "" {
		ph, err := strconv.ParseFloat(phStr, 64)
		if err != nil {
			return errors.New("soil_ph must be a decimal value")
		}
		a.SoilPH = &ph
	}

	return validate.Struct(a)
}

// historyQuery holds the query parameters for the history endpoint.
type historyQuery struct {
	Coordinate coordinateQuery
	From       time.Time `validate:"required"`
	To         time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	coord, err := parseCoordinateQuery(c)
	if err != nil {
		return err
	}
	h.Coordinate = coord

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
