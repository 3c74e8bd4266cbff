package seaice

import (
	"fmt"
	"time"
)

// SeriesKey uniquely identifies one raw fetched dataset. It is the cache key
// and must stay comparable.
type SeriesKey struct {
	Variable           string `json:"variable"`
	Model              string `json:"model"`
	TemporalResolution string `json:"temporalResolution"`
	Scenario           string `json:"scenario"`
	EnsembleMember     string `json:"ensembleMember"`
}

// String returns a canonical slash-separated form, used for singleflight
// grouping and log lines.
func (k SeriesKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%s/%s",
		k.Variable, k.Model, k.TemporalResolution, k.Scenario, k.EnsembleMember)
}

// RawSeries is one fetched time series plus its dataset metadata. Values may
// contain NaN where the remote dataset marked data as missing. A RawSeries is
// never mutated after the fetcher returns it; consumers treat it as read-only.
type RawSeries struct {
	Key        SeriesKey   `json:"key"`
	Timestamps []time.Time `json:"timestamps"`
	Values     []float64   `json:"values"`
	Title      string      `json:"title"`
	LongName   string      `json:"longName"`
	Units      string      `json:"units"`
}

// AggregatedSeries is one value per year: the mean of a RawSeries over the
// months of one season. Years are strictly ascending; years without any
// qualifying observation are absent rather than NaN.
type AggregatedSeries struct {
	Key    SeriesKey `json:"key"`
	Season string    `json:"season"`
	Years  []int     `json:"years"`
	Values []float64 `json:"values"`
}

// EnsembleStatistics holds cross-member statistics for one
// (model, scenario, season), on a year axis common to all members.
type EnsembleStatistics struct {
	Model    string    `json:"model"`
	Scenario string    `json:"scenario"`
	Season   string    `json:"season"`
	Members  []string  `json:"members"`
	Years    []int     `json:"years"`
	Mean     []float64 `json:"mean"`
	Min      []float64 `json:"min"`
	Max      []float64 `json:"max"`
	Std      []float64 `json:"std"`
}

// Selection is the parameter tuple a UI collaborator submits for one update
// cycle.
type Selection struct {
	Variable        string   `json:"variable"`
	Models          []string `json:"models"`
	Scenarios       []string `json:"scenarios"`
	EnsembleMembers []string `json:"ensembleMembers"`
	Seasons         []string `json:"seasons"`
	ShowBand        bool     `json:"showBand"`
}

// Series entry kinds as they appear in a View.
const (
	KindBaseline = "baseline"
	KindMember   = "member"
	KindEnsemble = "ensemble"
)

// SeriesEntry is one plottable series: either a single aggregated series
// (baseline or lone ensemble member) or cross-member ensemble statistics.
type SeriesEntry struct {
	Kind       string              `json:"kind"`
	Aggregated *AggregatedSeries   `json:"aggregated,omitempty"`
	Ensemble   *EnsembleStatistics `json:"ensemble,omitempty"`
}

// View is the complete output of one update cycle: every series the rendering
// collaborator needs, keyed by display label. Labels preserves a stable plot
// order (baseline first, then model/scenario/season combinations in selection
// order).
type View struct {
	Variable string                 `json:"variable"`
	LongName string                 `json:"longName"`
	Units    string                 `json:"units"`
	ShowBand bool                   `json:"showBand"`
	Labels   []string               `json:"labels"`
	Series   map[string]SeriesEntry `json:"series"`
}
