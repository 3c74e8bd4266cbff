// Package httpapi exposes the series-building core to the rendering client
// over HTTP. All visual encoding happens on the client; this layer only
// returns labeled series and structured errors.
package httpapi

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/ewanvin/seaicemod/internal/cache"
	"github.com/ewanvin/seaicemod/internal/catalog"
	"github.com/ewanvin/seaicemod/internal/seaice"
)

var validate = validator.New()

// CacheInfo is the slice of the fetch cache the stats endpoint reports.
type CacheInfo interface {
	Stats() cache.Stats
	Len() int
}

// Options carries the collaborators the routes need.
type Options struct {
	Service  *seaice.Service
	Baseline seaice.Baseline
	Cache    CacheInfo

	// ClearOnError is echoed to clients on failed update cycles so the
	// rendering layer applies one consistent stale-output policy.
	ClearOnError bool
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, opts Options) {
	v1 := app.Group("/api/v1/seaice")

	v1.Get("/series", func(c *fiber.Ctx) error {
		var req seriesQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		view, err := opts.Service.BuildView(c.Context(), req.toSelection())
		if err != nil {
			return seriesError(c, err, opts.ClearOnError)
		}
		return c.JSON(view)
	})

	v1.Get("/baseline", func(c *fiber.Ctx) error {
		names := splitList(c.Query("seasons"))
		if len(names) == 0 {
			// Covers both an absent parameter and "?seasons=".
			names = []string{"DJF"}
		}
		out := make(map[string]seaice.AggregatedSeries, len(names))
		for _, name := range names {
			season, ok := catalog.SeasonByName(name)
			if !ok {
				return fiber.NewError(fiber.StatusBadRequest, (&seaice.ConfigurationError{Field: "season", Value: name}).Error())
			}
			out["OSISAF "+season.Name] = opts.Baseline.AggregateSeason(season)
		}
		return c.JSON(fiber.Map{
			"title":  opts.Baseline.Raw().Title,
			"units":  opts.Baseline.Raw().Units,
			"series": out,
		})
	})

	v1.Get("/catalog", func(c *fiber.Ctx) error {
		type described struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}

		models := make([]described, 0)
		for _, name := range catalog.Models() {
			models = append(models, described{Name: name, Description: catalog.ModelDescription(name)})
		}
		scenarios := make([]described, 0)
		for _, name := range catalog.Scenarios() {
			scenarios = append(scenarios, described{Name: name, Description: catalog.ScenarioDescription(name)})
		}
		variables := make([]described, 0)
		for _, v := range catalog.Variables() {
			variables = append(variables, described{Name: v.Name, Description: v.Description})
		}
		seasons := make([]described, 0)
		for _, s := range catalog.Seasons() {
			seasons = append(seasons, described{Name: s.Name, Description: s.Description})
		}

		return c.JSON(fiber.Map{
			"variables":       variables,
			"models":          models,
			"scenarios":       scenarios,
			"ensembleMembers": catalog.EnsembleMembers(),
			"seasons":         seasons,
		})
	})

	v1.Get("/cache/stats", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"entries": opts.Cache.Len(),
			"stats":   opts.Cache.Stats(),
		})
	})
}

// seriesError maps core error kinds onto HTTP statuses and a payload that
// identifies the failing combination.
func seriesError(c *fiber.Ctx, err error, clearOnError bool) error {
	var cfgErr *seaice.ConfigurationError
	if errors.As(err, &cfgErr) {
		return fiber.NewError(fiber.StatusBadRequest, cfgErr.Error())
	}

	var fetchErr *seaice.FetchError
	if errors.As(err, &fetchErr) {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":          true,
			"message":        fetchErr.Error(),
			"failedModel":    fetchErr.Key.Model,
			"failedScenario": fetchErr.Key.Scenario,
			"failedMember":   fetchErr.Key.EnsembleMember,
			"clearOnError":   clearOnError,
		})
	}

	var statsErr *seaice.StatisticsError
	if errors.As(err, &statsErr) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, statsErr.Error())
	}

	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}

// seriesQuery holds query parameters for the series endpoint.
type seriesQuery struct {
	Variable string   `validate:"required"`
	Models   []string `validate:"required,min=1"`
	Scens    []string `validate:"required,min=1"`
	Members  []string `validate:"required,min=1"`
	Seasons  []string `validate:"required,min=1"`
	Band     bool
}

func (q *seriesQuery) bind(c *fiber.Ctx) error {
	q.Variable = c.Query("variable")
	q.Models = splitList(c.Query("models"))
	q.Scens = splitList(c.Query("scenarios"))
	q.Members = splitList(c.Query("members", "r1i1p1f1"))
	q.Seasons = splitList(c.Query("seasons", "DJF"))
	q.Band = c.QueryBool("band", false)
	return validate.Struct(q)
}

func (q *seriesQuery) toSelection() seaice.Selection {
	return seaice.Selection{
		Variable:        q.Variable,
		Models:          q.Models,
		Scenarios:       q.Scens,
		EnsembleMembers: q.Members,
		Seasons:         q.Seasons,
		ShowBand:        q.Band,
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
