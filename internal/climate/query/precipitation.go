package query

import (
	"slices"

	"golang.org/x/exp/maps"

	"climate-cli/internal/climate/dataset"
	"climate-cli/internal/climate/types"
)

// MonthlyTotals sums precipitation per calendar month, ordered chronologically.
func MonthlyTotals(ds *dataset.Dataset) []types.MonthlyPrecipitation {
	sums := make(map[types.MonthKey]float64)
	for o := range ds.All() {
		k := types.MonthKey{Year: o.Date.Year(), Month: o.Date.Month()}
		sums[k] += o.PrecipitationMM
	}

	keys := maps.Keys(sums)
	slices.SortFunc(keys, compareMonthKeys)

	out := make([]types.MonthlyPrecipitation, 0, len(keys))
	for _, k := range keys {
		out = append(out, types.MonthlyPrecipitation{Key: k, TotalMM: sums[k]})
	}
	return out
}

// WettestMonth returns the month with the highest summed precipitation.
// Equal maxima resolve to the earliest month.
func WettestMonth(ds *dataset.Dataset) (types.MonthlyPrecipitation, error) {
	totals := MonthlyTotals(ds)
	if len(totals) == 0 {
		return types.MonthlyPrecipitation{}, ErrEmptyDataset
	}

	best := totals[0]
	for _, t := range totals[1:] {
		if t.TotalMM > best.TotalMM {
			best = t
		}
	}
	return best, nil
}

func compareMonthKeys(a, b types.MonthKey) int {
	switch {
	case a.Before(b):
		return -1
	case b.Before(a):
		return 1
	default:
		return 0
	}
}
