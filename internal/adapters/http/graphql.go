package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/solarsite/internal/core/domain"
	"github.com/samirrijal/solarsite/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to the analysis service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	samplePointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SamplePoint",
		Fields: graphql.Fields{
			"coordinate": &graphql.Field{Type: coordinateType},
			"average":    &graphql.Field{Type: graphql.Float},
			"monthly":    &graphql.Field{Type: graphql.NewList(graphql.Float)},
		},
	})

	tiersType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TierBuckets",
		Fields: graphql.Fields{
			string(domain.TierUnfeasible): &graphql.Field{Type: graphql.NewList(samplePointType)},
			string(domain.TierModerate):   &graphql.Field{Type: graphql.NewList(samplePointType)},
			string(domain.TierGood):       &graphql.Field{Type: graphql.NewList(samplePointType)},
			string(domain.TierExcellent):  &graphql.Field{Type: graphql.NewList(samplePointType)},
		},
	})

	sweepType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SweepSummary",
		Fields: graphql.Fields{
			"cells_total":   &graphql.Field{Type: graphql.Int},
			"cells_sampled": &graphql.Field{Type: graphql.Int},
			"cells_failed":  &graphql.Field{Type: graphql.Int},
			"truncated":     &graphql.Field{Type: graphql.Boolean},
		},
	})

	settlementType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Settlement",
		Fields: graphql.Fields{
			"name":       &graphql.Field{Type: graphql.String},
			"coordinate": &graphql.Field{Type: coordinateType},
		},
	})

	recoveryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RecoveryPoint",
		Fields: graphql.Fields{
			"year":          &graphql.Field{Type: graphql.Int},
			"recovered_pct": &graphql.Field{Type: graphql.Float},
		},
	})

	economicsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Economics",
		Fields: graphql.Fields{
			"capacity_mw":         &graphql.Field{Type: graphql.Float},
			"unit_price":          &graphql.Field{Type: graphql.Float},
			"distance_km":         &graphql.Field{Type: graphql.Float},
			"capital_expenditure": &graphql.Field{Type: graphql.Float},
			"transmission_cost":   &graphql.Field{Type: graphql.Float},
			"recovery_years":      &graphql.Field{Type: graphql.Float},
			"projection":          &graphql.Field{Type: graphql.NewList(recoveryType)},
		},
	})

	analysisType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Analysis",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"center":     &graphql.Field{Type: coordinateType},
			"best":       &graphql.Field{Type: samplePointType},
			"tiers":      &graphql.Field{Type: tiersType},
			"sweep":      &graphql.Field{Type: sweepType},
			"settlement": &graphql.Field{Type: settlementType},
			"economics":  &graphql.Field{Type: economicsType},
			"warnings":   &graphql.Field{Type: graphql.NewList(graphql.String)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"analyze": &graphql.Field{
				Type:        analysisType,
				Description: "Sweep the irradiance grid around a city or coordinate",
				Args: graphql.FieldConfigArgument{
					"mode":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"city":        &graphql.ArgumentConfig{Type: graphql.String},
					"latitude":    &graphql.ArgumentConfig{Type: graphql.Float},
					"longitude":   &graphql.ArgumentConfig{Type: graphql.Float},
					"delta":       &graphql.ArgumentConfig{Type: graphql.Float},
					"step":        &graphql.ArgumentConfig{Type: graphql.Float},
					"capacity_mw": &graphql.ArgumentConfig{Type: graphql.Float},
					"price":       &graphql.ArgumentConfig{Type: graphql.Float},
					"year":        &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					body := usecases.AnalysisInput{
						Latitude:   floatArg(p.Args, "latitude"),
						Longitude:  floatArg(p.Args, "longitude"),
						Delta:      floatArg(p.Args, "delta"),
						Step:       floatArg(p.Args, "step"),
						CapacityMW: floatArg(p.Args, "capacity_mw"),
						Price:      floatArg(p.Args, "price"),
					}
					body.Mode, _ = p.Args["mode"].(string)
					body.City, _ = p.Args["city"].(string)
					if y, ok := p.Args["year"].(int); ok {
						body.Year = &y
					}

					req, err := analysisRequest(deps, body)
					if err != nil {
						return nil, err
					}
					result, err := deps.Analysis.Analyze(p.Context, req)
					if err != nil {
						return nil, err
					}
					return analysisMap(result), nil
				},
			},
			"resolveCity": &graphql.Field{
				Type:        coordinateType,
				Description: "Resolve a city name to coordinates",
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c, err := deps.Analysis.ResolveCity(p.Args["name"].(string))
					if err != nil {
						return nil, err
					}
					return coordinateMap(c), nil
				},
			},
			"economics": &graphql.Field{
				Type:        economicsType,
				Description: "Capital expenditure, transmission cost and payback estimate",
				Args: graphql.FieldConfigArgument{
					"capacity_mw": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"price":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"distance_km": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					econ, err := usecases.ComputeEconomics(
						p.Args["capacity_mw"].(float64),
						p.Args["price"].(float64),
						p.Args["distance_km"].(float64),
					)
					if err != nil {
						return nil, err
					}
					return economicsMap(econ), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func floatArg(args map[string]interface{}, name string) *float64 {
	v, ok := args[name].(float64)
	if !ok {
		return nil
	}
	return &v
}

// The map builders below hand graphql-go plain maps keyed by field name.

func coordinateMap(c domain.Coordinate) map[string]interface{} {
	return map[string]interface{}{"lat": c.Lat, "lon": c.Lon}
}

func samplePointMap(p domain.SamplePoint) map[string]interface{} {
	return map[string]interface{}{
		"coordinate": coordinateMap(p.Coordinate),
		"average":    p.Average,
		"monthly":    p.Monthly,
	}
}

func economicsMap(e *domain.Economics) map[string]interface{} {
	if e == nil {
		return nil
	}
	projection := make([]map[string]interface{}, 0, len(e.Projection))
	for _, rp := range e.Projection {
		projection = append(projection, map[string]interface{}{"year": rp.Year, "recovered_pct": rp.RecoveredPct})
	}
	return map[string]interface{}{
		"capacity_mw":         e.CapacityMW,
		"unit_price":          e.UnitPrice,
		"distance_km":         e.DistanceKm,
		"capital_expenditure": e.CapitalExpenditure,
		"transmission_cost":   e.TransmissionCost,
		"recovery_years":      e.RecoveryYears,
		"projection":          projection,
	}
}

func analysisMap(r *domain.AnalysisResult) map[string]interface{} {
	tiers := make(map[string]interface{}, len(domain.Tiers))
	for _, tier := range domain.Tiers {
		points := make([]map[string]interface{}, 0, len(r.Tiers[tier]))
		for _, p := range r.Tiers[tier] {
			points = append(points, samplePointMap(p))
		}
		tiers[string(tier)] = points
	}

	m := map[string]interface{}{
		"id":     r.ID,
		"center": coordinateMap(r.Center),
		"best":   samplePointMap(r.Best),
		"tiers":  tiers,
		"sweep": map[string]interface{}{
			"cells_total":   r.Sweep.CellsTotal,
			"cells_sampled": r.Sweep.CellsSampled,
			"cells_failed":  r.Sweep.CellsFailed,
			"truncated":     r.Sweep.Truncated,
		},
		"warnings": r.Warnings,
	}
	if r.Settlement != nil {
		m["settlement"] = map[string]interface{}{
			"name":       r.Settlement.Name,
			"coordinate": coordinateMap(r.Settlement.Coordinate),
		}
	}
	if r.Economics != nil {
		m["economics"] = economicsMap(r.Economics)
	}
	return m
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
