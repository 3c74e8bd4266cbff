package seaice

import (
	"context"
	"fmt"
	"log"

	"github.com/ewanvin/seaicemod/internal/catalog"
)

// Source supplies raw series by key, typically the fetch cache in front of the
// THREDDS fetcher.
type Source interface {
	GetOrFetch(ctx context.Context, key SeriesKey) (*RawSeries, error)
}

// Baseline exposes the fixed observational reference series for comparison.
type Baseline interface {
	Raw() *RawSeries
	AggregateSeason(season catalog.Season) AggregatedSeries
}

// Service runs update cycles: it turns one Selection into the complete set of
// labeled series the rendering collaborator plots. A cycle is all-or-nothing;
// no partial View is ever returned.
type Service struct {
	source             Source
	baseline           Baseline
	temporalResolution string
}

// NewService creates a Service. temporalResolution is the resolution segment
// of the dataset addresses (e.g. "Monthly").
func NewService(source Source, baseline Baseline, temporalResolution string) *Service {
	return &Service{
		source:             source,
		baseline:           baseline,
		temporalResolution: temporalResolution,
	}
}

// BuildView executes one update cycle for the given selection.
//
// Every (model, scenario, ensemble member) combination is fetched through the
// source before any statistics are combined; the first failed fetch aborts
// the whole cycle and the returned error identifies the failing combination.
// Groups with a single ensemble member yield that member's AggregatedSeries;
// groups with several members yield EnsembleStatistics over the intersection
// of the member year axes.
func (s *Service) BuildView(ctx context.Context, sel Selection) (*View, error) {
	variable, seasons, err := s.validate(sel)
	if err != nil {
		return nil, err
	}

	view := &View{
		Variable: sel.Variable,
		ShowBand: sel.ShowBand,
		Series:   make(map[string]SeriesEntry),
	}

	if s.baseline != nil {
		for _, season := range seasons {
			agg := s.baseline.AggregateSeason(season)
			label := fmt.Sprintf("OSISAF %s", season.Name)
			view.Labels = append(view.Labels, label)
			entry := agg
			view.Series[label] = SeriesEntry{Kind: KindBaseline, Aggregated: &entry}
		}
	}

	for _, model := range sel.Models {
		for _, scenario := range sel.Scenarios {
			raws := make([]*RawSeries, 0, len(sel.EnsembleMembers))
			for _, member := range sel.EnsembleMembers {
				key := SeriesKey{
					Variable:           variable.Code,
					Model:              model,
					TemporalResolution: s.temporalResolution,
					Scenario:           scenario,
					EnsembleMember:     member,
				}
				raw, err := s.source.GetOrFetch(ctx, key)
				if err != nil {
					log.Printf("update cycle aborted: %v", err)
					return nil, err
				}
				raws = append(raws, raw)
			}

			if view.LongName == "" && len(raws) > 0 {
				view.LongName = raws[0].LongName
				view.Units = raws[0].Units
			}

			for _, season := range seasons {
				label := fmt.Sprintf("%s - %s %s", model, scenario, season.Name)
				view.Labels = append(view.Labels, label)

				members := make([]AggregatedSeries, len(raws))
				for i, raw := range raws {
					members[i] = Aggregate(raw, season)
				}

				if len(members) == 1 {
					entry := members[0]
					view.Series[label] = SeriesEntry{Kind: KindMember, Aggregated: &entry}
					continue
				}
				stats, err := Combine(members)
				if err != nil {
					return nil, err
				}
				view.Series[label] = SeriesEntry{Kind: KindEnsemble, Ensemble: &stats}
			}
		}
	}

	return view, nil
}

// validate checks every selection value against the catalog before any fetch
// is attempted.
func (s *Service) validate(sel Selection) (catalog.Variable, []catalog.Season, error) {
	variable, ok := catalog.VariableByName(sel.Variable)
	if !ok {
		return catalog.Variable{}, nil, &ConfigurationError{Field: "variable", Value: sel.Variable}
	}
	for _, m := range sel.Models {
		if !catalog.ValidModel(m) {
			return catalog.Variable{}, nil, &ConfigurationError{Field: "model", Value: m}
		}
	}
	for _, sc := range sel.Scenarios {
		if !catalog.ValidScenario(sc) {
			return catalog.Variable{}, nil, &ConfigurationError{Field: "scenario", Value: sc}
		}
	}
	for _, em := range sel.EnsembleMembers {
		if !catalog.ValidEnsembleMember(em) {
			return catalog.Variable{}, nil, &ConfigurationError{Field: "ensemble member", Value: em}
		}
	}
	seasons := make([]catalog.Season, 0, len(sel.Seasons))
	for _, name := range sel.Seasons {
		season, ok := catalog.SeasonByName(name)
		if !ok {
			return catalog.Variable{}, nil, &ConfigurationError{Field: "season", Value: name}
		}
		seasons = append(seasons, season)
	}
	return variable, seasons, nil
}
