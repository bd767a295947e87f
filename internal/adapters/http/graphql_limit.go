package http

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// analyzeGate runs limit only for GraphQL requests that select the
// analyze field, so they share the analysis budget of /v1/analyze while
// lookups and economics queries pass through.
func analyzeGate(limit fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(c.Body(), &req); err != nil || !selectsAnalyze(req.Query) {
			return c.Next()
		}
		return limit(c)
	}
}

// selectsAnalyze reports whether any operation in query selects the
// top-level analyze field, directly, aliased or through fragments.
// Unparsable queries report false; the handler rejects them.
func selectsAnalyze(query string) bool {
	if query == "" {
		return false
	}
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return false
	}

	fragments := make(map[string]*ast.FragmentDefinition)
	for _, def := range doc.Definitions {
		if f, ok := def.(*ast.FragmentDefinition); ok && f.Name != nil {
			fragments[f.Name.Value] = f
		}
	}

	seen := make(map[string]bool)
	var walk func(set *ast.SelectionSet) bool
	walk = func(set *ast.SelectionSet) bool {
		if set == nil {
			return false
		}
		for _, sel := range set.Selections {
			switch s := sel.(type) {
			case *ast.Field:
				if s.Name != nil && s.Name.Value == "analyze" {
					return true
				}
			case *ast.InlineFragment:
				if walk(s.SelectionSet) {
					return true
				}
			case *ast.FragmentSpread:
				if s.Name == nil || seen[s.Name.Value] {
					continue
				}
				seen[s.Name.Value] = true
				if f, ok := fragments[s.Name.Value]; ok && walk(f.SelectionSet) {
					return true
				}
			}
		}
		return false
	}

	for _, def := range doc.Definitions {
		if op, ok := def.(*ast.OperationDefinition); ok && walk(op.SelectionSet) {
			return true
		}
	}
	return false
}
