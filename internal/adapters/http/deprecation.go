package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/solarsite/internal/core/domain"
	"github.com/samirrijal/solarsite/internal/core/usecases"
)

// DeprecatedRoute marks an endpoint as deprecated with sunset date.
type DeprecatedRoute struct {
	Path        string    // exact request path
	SunsetDate  time.Time // Date when endpoint will be removed
	Alternative string    // Recommended alternative endpoint (optional)
}

// legacyRoutes lists the unversioned endpoints kept for the first web
// client.
var legacyRoutes = []DeprecatedRoute{
	{Path: "/analyze", SunsetDate: time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC), Alternative: "/v1/analyze"},
}

// DeprecationMiddleware adds Deprecation, Sunset, and Link headers to deprecated endpoints.
func DeprecationMiddleware(deprecated []DeprecatedRoute) fiber.Handler {
	byPath := make(map[string]DeprecatedRoute, len(deprecated))
	for _, d := range deprecated {
		byPath[d.Path] = d
	}

	return func(c *fiber.Ctx) error {
		d, ok := byPath[c.Path()]
		if !ok {
			return c.Next()
		}

		// RFC 8594
		c.Set("Deprecation", "true")
		c.Set("Sunset", d.SunsetDate.UTC().Format(time.RFC1123))
		if d.Alternative != "" {
			c.Set("Link", fmt.Sprintf(`<%s>; rel="successor-version"`, d.Alternative))
		}
		days := time.Until(d.SunsetDate).Hours() / 24
		if days < 0 {
			days = 0
		}
		c.Set("Warning", fmt.Sprintf(`299 - "Deprecated API, will sunset in %.0f days"`, days))

		return c.Next()
	}
}

// legacyAnalyzeRequest is the body the first web client sends.
type legacyAnalyzeRequest struct {
	Method     string   `json:"method"`
	City       string   `json:"city"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Delta      *float64 `json:"delta"`
	Scale      *float64 `json:"scale"`
	Price      *float64 `json:"price"`
	PowerScale *float64 `json:"powerScale"`
	Year       *int     `json:"year"`
}

type legacyMax struct {
	Value float64 `json:"value"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

type legacyPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Avg float64 `json:"avg"`
}

type legacySettlement struct {
	Name             string  `json:"name"`
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	Capex            float64 `json:"capex"`
	TransmissionCost float64 `json:"transmissionCost"`
	RecoveryYears    float64 `json:"recoveryYears"`
}

// LegacyAnalyzeHandler serves POST /analyze with the original field
// names and response shape ({max, base, ranges, settlement}).
func LegacyAnalyzeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body legacyAnalyzeRequest
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		req, err := analysisRequest(deps, usecases.AnalysisInput{
			Mode:       body.Method,
			City:       body.City,
			Latitude:   body.Latitude,
			Longitude:  body.Longitude,
			Delta:      body.Delta,
			Step:       body.Scale,
			CapacityMW: body.PowerScale,
			Price:      body.Price,
			Year:       body.Year,
		})
		if err != nil {
			return writeError(c, err)
		}

		result, err := deps.Analysis.Analyze(c.UserContext(), req)
		if err != nil {
			return writeError(c, err)
		}

		var settlement any = fiber.Map{}
		if s := result.Settlement; s != nil {
			ls := legacySettlement{Name: s.Name, Lat: s.Coordinate.Lat, Lon: s.Coordinate.Lon}
			if e := result.Economics; e != nil {
				ls.Capex = e.CapitalExpenditure
				ls.TransmissionCost = e.TransmissionCost
				ls.RecoveryYears = e.RecoveryYears
			}
			settlement = ls
		}

		ranges := make(map[domain.Tier][]legacyPoint, len(domain.Tiers))
		for _, tier := range domain.Tiers {
			points := make([]legacyPoint, 0, len(result.Tiers[tier]))
			for _, p := range result.Tiers[tier] {
				points = append(points, legacyPoint{Lat: p.Coordinate.Lat, Lon: p.Coordinate.Lon, Avg: p.Average})
			}
			ranges[tier] = points
		}

		return c.JSON(fiber.Map{
			"max":        legacyMax{Value: result.Best.Average, Lat: result.Best.Coordinate.Lat, Lon: result.Best.Coordinate.Lon},
			"base":       fiber.Map{"lat": result.Center.Lat, "lon": result.Center.Lon},
			"ranges":     ranges,
			"settlement": settlement,
		})
	}
}
