package seaice

import "fmt"

// Fetch failure reasons.
const (
	ReasonUnreachable      = "remote unreachable"
	ReasonTimeout          = "fetch timed out"
	ReasonVariableMissing  = "variable missing from dataset"
	ReasonAttributeMissing = "required attribute missing"
	ReasonBadDataset       = "malformed dataset"
)

// FetchError reports a failed dataset fetch. It always identifies the
// combination that failed so the update-cycle boundary can surface it.
type FetchError struct {
	Key    SeriesKey
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.Key, e.Reason, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.Key, e.Reason)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Statistics failure reasons.
const (
	StatsEmptyInput = "no member series"
	StatsMixedKeys  = "members span multiple model/scenario/season groups"
)

// StatisticsError reports invalid input to the ensemble statistics engine.
type StatisticsError struct {
	Reason string
}

func (e *StatisticsError) Error() string {
	return fmt.Sprintf("ensemble statistics: %s", e.Reason)
}

// ConfigurationError reports a selection value outside the fixed catalog.
type ConfigurationError struct {
	Field string
	Value string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Field, e.Value)
}
