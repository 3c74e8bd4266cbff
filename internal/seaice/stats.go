package seaice

import (
	"math"
	"sort"
)

// Combine computes cross-member statistics for a set of aggregated series
// sharing one (model, scenario, season) group.
//
// The output year axis is the intersection of the member year axes: a year is
// included only when every member has a value for it, which avoids spurious
// min/max artifacts from members with differing data availability. Std is the
// population standard deviation (denominator = member count).
func Combine(members []AggregatedSeries) (EnsembleStatistics, error) {
	if len(members) == 0 {
		return EnsembleStatistics{}, &StatisticsError{Reason: StatsEmptyInput}
	}

	first := members[0]
	for _, m := range members[1:] {
		if m.Key.Model != first.Key.Model ||
			m.Key.Scenario != first.Key.Scenario ||
			m.Season != first.Season {
			return EnsembleStatistics{}, &StatisticsError{Reason: StatsMixedKeys}
		}
	}

	// Per-member year -> value lookup, counting how many members cover each year.
	byYear := make([]map[int]float64, len(members))
	coverage := make(map[int]int)
	for i, m := range members {
		byYear[i] = make(map[int]float64, len(m.Years))
		for j, year := range m.Years {
			if j >= len(m.Values) {
				break
			}
			byYear[i][year] = m.Values[j]
			coverage[year]++
		}
	}

	years := make([]int, 0, len(coverage))
	for year, n := range coverage {
		if n == len(members) {
			years = append(years, year)
		}
	}
	sort.Ints(years)

	n := float64(len(members))
	stats := EnsembleStatistics{
		Model:    first.Key.Model,
		Scenario: first.Key.Scenario,
		Season:   first.Season,
		Years:    years,
		Mean:     make([]float64, len(years)),
		Min:      make([]float64, len(years)),
		Max:      make([]float64, len(years)),
		Std:      make([]float64, len(years)),
	}
	for _, m := range members {
		stats.Members = append(stats.Members, m.Key.EnsembleMember)
	}

	for i, year := range years {
		var sum float64
		lo := math.Inf(1)
		hi := math.Inf(-1)
		for _, lookup := range byYear {
			v := lookup[year]
			sum += v
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		mean := sum / n

		var sq float64
		for _, lookup := range byYear {
			d := lookup[year] - mean
			sq += d * d
		}

		stats.Mean[i] = mean
		stats.Min[i] = lo
		stats.Max[i] = hi
		stats.Std[i] = math.Sqrt(sq / n)
	}

	return stats, nil
}
