package seaice

import (
	"math"
	"sort"

	"github.com/ewanvin/seaicemod/internal/catalog"
)

// Aggregate reduces a raw monthly series to one mean value per year over the
// months of the given season. Observations whose month falls outside the
// season, and NaN (missing) observations, are skipped. Years with no
// qualifying observation are omitted from the output entirely.
//
// DJF groups under the December year: December of year Y together with the
// following January and February form the year-Y data point (the season's
// wrap months handle the year boundary).
func Aggregate(raw *RawSeries, season catalog.Season) AggregatedSeries {
	sums := make(map[int]float64)
	counts := make(map[int]int)

	for i, ts := range raw.Timestamps {
		if i >= len(raw.Values) {
			break
		}
		if !season.Contains(ts.Month()) {
			continue
		}
		v := raw.Values[i]
		if math.IsNaN(v) {
			continue
		}
		year := season.AssignmentYear(ts)
		sums[year] += v
		counts[year]++
	}

	years := make([]int, 0, len(counts))
	for year := range counts {
		years = append(years, year)
	}
	sort.Ints(years)

	values := make([]float64, len(years))
	for i, year := range years {
		values[i] = sums[year] / float64(counts[year])
	}

	return AggregatedSeries{
		Key:    raw.Key,
		Season: season.Name,
		Years:  years,
		Values: values,
	}
}
