package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/agrodecision/agrodecision/internal/analysis"
	"github.com/agrodecision/agrodecision/internal/enviro"
	"github.com/agrodecision/agrodecision/internal/rules"
	"github.com/agrodecision/agrodecision/internal/store"
)

type staticFetcher struct {
	reading enviro.Reading
}

func (f staticFetcher) FetchAll(ctx context.Context, coord enviro.Coordinate) enviro.Reading {
	r := f.reading
	r.Coordinate = coord
	r.FetchedAt = time.Now().UTC()
	return r
}

type staticGeocoder struct {
	places []enviro.Place
}

func (g staticGeocoder) Name() string { return "static" }
func (g staticGeocoder) Search(ctx context.Context, query string) ([]enviro.Place, error) {
	return g.places, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": true, "message": err.Error()})
		},
	})

	fetcher := staticFetcher{reading: enviro.Reading{
		TemperatureC:   18,
		HumidityPct:    55,
		AnnualPrecipMM: 900,
		AltitudeM:      2000,
		SlopePct:       10,
		DaylightHours:  12,
		SoilPH:         6.0,
	}}
	geocoders := []enviro.Geocoder{staticGeocoder{places: []enviro.Place{
		{Label: "Lurín, Lima, Perú", Lat: -12.27, Lon: -76.87},
	}}}

	svc := analysis.NewService(fetcher, geocoders, rules.NewCatalog("testdata"),
		store.NewMemoryStore(10, time.Hour), 30*time.Minute)
	RegisterRoutes(app, svc)
	return app
}

func doRequest(t *testing.T, app *fiber.App, url string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return resp
}

func TestAnalysisEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(t, app,
		"/api/v1/analysis?lat=-12.0464&lon=-77.0428&category=cultivos&variety=Papa+Canchan")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var report struct {
		ID     string `json:"id"`
		Result struct {
			Score int    `json:"score"`
			Band  string `json:"band"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if report.ID == "" {
		t.Error("expected a report id")
	}
	if report.Result.Score != 100 || report.Result.Band != "fit" {
		t.Errorf("unexpected result: %+v", report.Result)
	}
}

func TestAnalysisEndpoint_SoilPHOverride(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(t, app,
		"/api/v1/analysis?lat=-12.0464&lon=-77.0428&category=cultivos&variety=Papa+Canchan&soil_ph=4.0")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var report struct {
		Result struct {
			Score int `json:"score"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if report.Result.Score != 75 {
		t.Errorf("expected pH override to cost 25 points, got score %d", report.Result.Score)
	}
}

func TestAnalysisEndpoint_Validation(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		url  string
		want int
	}{
		{"missing coordinates", "/api/v1/analysis?category=cultivos&variety=Papa+Canchan", http.StatusBadRequest},
		{"latitude out of range", "/api/v1/analysis?lat=95&lon=0&category=cultivos&variety=Papa+Canchan", http.StatusBadRequest},
		{"missing variety", "/api/v1/analysis?lat=-12&lon=-77&category=cultivos", http.StatusBadRequest},
		{"soil ph out of range", "/api/v1/analysis?lat=-12&lon=-77&category=cultivos&variety=Papa+Canchan&soil_ph=12", http.StatusBadRequest},
		{"unknown category", "/api/v1/analysis?lat=-12&lon=-77&category=caprinos&variety=Alpina", http.StatusNotFound},
		{"unknown variety", "/api/v1/analysis?lat=-12&lon=-77&category=cultivos&variety=NoExiste", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, tt.url)
			if resp.StatusCode != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestPlacesSearchEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(t, app, "/api/v1/places/search?q=Lurin")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		Places []enviro.Place `json:"places"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Places) != 1 || body.Places[0].Label != "Lurín, Lima, Perú" {
		t.Errorf("unexpected places: %+v", body.Places)
	}
}

func TestPlacesSearchEndpoint_RequiresQuery(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(t, app, "/api/v1/places/search")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}
}

func TestVarietiesEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(t, app, "/api/v1/categories/bovinos/varieties")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var body struct {
		Varieties []string `json:"varieties"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Varieties) != 2 {
		t.Errorf("expected 2 varieties, got %v", body.Varieties)
	}
}

func TestVarietiesEndpoint_UnknownCategory(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(t, app, "/api/v1/categories/caprinos/varieties")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.StatusCode)
	}
}

func TestReadingsCurrentEndpoint(t *testing.T) {
	app := newTestApp(t)

	// Nothing cached yet for this coordinate.
	resp := doRequest(t, app, "/api/v1/readings/current?lat=-12.0464&lon=-77.0428")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404 before any analysis, got %d", resp.StatusCode)
	}

	// An analysis populates the cache.
	resp = doRequest(t, app,
		"/api/v1/analysis?lat=-12.0464&lon=-77.0428&category=cultivos&variety=Papa+Canchan")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analysis failed with status %d", resp.StatusCode)
	}

	resp = doRequest(t, app, "/api/v1/readings/current?lat=-12.0464&lon=-77.0428")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200 after analysis, got %d", resp.StatusCode)
	}
}

func TestReadingsHistoryEndpoint_Validation(t *testing.T) {
	app := newTestApp(t)

	// Missing window parameters.
	resp := doRequest(t, app, "/api/v1/readings/history?lat=-12&lon=-77")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}

	// to before from violates the gtefield rule.
	resp = doRequest(t, app,
		"/api/v1/readings/history?lat=-12&lon=-77&from=2026-08-02T00:00:00Z&to=2026-08-01T00:00:00Z")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 for inverted window, got %d", resp.StatusCode)
	}
}
