package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/solarsite/internal/core/domain"
	"github.com/samirrijal/solarsite/internal/core/usecases"
)

// analysisRequest applies the configured defaults to a caller's input.
func analysisRequest(deps *Dependencies, in usecases.AnalysisInput) (domain.AnalysisRequest, error) {
	return in.WithDefaults(usecases.AnalysisDefaults(deps.Defaults))
}

// AnalyzeHandler runs a full feasibility analysis.
func AnalyzeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body usecases.AnalysisInput
		if err := c.BodyParser(&body); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		req, err := analysisRequest(deps, body)
		if err != nil {
			return writeError(c, err)
		}

		result, err := deps.Analysis.Analyze(c.UserContext(), req)
		if err != nil {
			return writeError(c, err)
		}

		c.Set("Cache-Control", "no-store")
		return c.JSON(result)
	}
}

// ResolvePlaceHandler resolves a city name to coordinates.
func ResolvePlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Query("name")
		if name == "" {
			return errBadRequest(c, "name parameter is required")
		}

		coord, err := deps.Analysis.ResolveCity(name)
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(fiber.Map{
			"name":       name,
			"coordinate": coord,
		})
	}
}

// SearchPlacesHandler lists gazetteer places by name prefix.
func SearchPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		prefix := c.Query("prefix")
		if prefix == "" {
			return errBadRequest(c, "prefix parameter is required")
		}
		if deps.Gazetteer == nil {
			return errNotFound(c, "gazetteer not loaded")
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 20)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		places, total := deps.Gazetteer.Search(prefix, offset, limit)
		if places == nil {
			places = []domain.Place{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: places, Pagination: pg})
	}
}

// EconomicsHandler evaluates the cost and payback model on its own.
func EconomicsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		capacity, err := queryFloat(c, "capacity_mw", nil)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		price, err := queryFloat(c, "price", nil)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		zero := 0.0
		distance, err := queryFloat(c, "distance_km", &zero)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		econ, err := usecases.ComputeEconomics(capacity, price, distance)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(econ)
	}
}

// queryFloat parses a float query parameter; def nil makes it required.
func queryFloat(c *fiber.Ctx, name string, def *float64) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		if def == nil {
			return 0, fiber.NewError(fiber.StatusBadRequest, name+" parameter is required")
		}
		return *def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" must be a number")
	}
	return v, nil
}
