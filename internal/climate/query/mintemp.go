package query

import (
	"slices"
	"time"

	"golang.org/x/exp/maps"

	"climate-cli/internal/climate/dataset"
	"climate-cli/internal/climate/types"
)

// MinTempAverages returns, for each year in [startYear, endYear], the mean
// minimum temperature of the given month. Absent readings are skipped and
// years without any reading are left out. The result is ordered by year.
func MinTempAverages(ds *dataset.Dataset, month, startYear, endYear int) ([]types.YearlyAverage, error) {
	if !ValidMonth(month) {
		return nil, ErrInvalidMonth
	}
	if startYear > endYear {
		return nil, ErrInvalidYearRange
	}

	type acc struct {
		sum float64
		n   int
	}
	byYear := make(map[int]*acc)
	for o := range ds.All() {
		y := o.Date.Year()
		if y < startYear || y > endYear || int(o.Date.Month()) != month || !o.MinTempC.Valid {
			continue
		}
		a, ok := byYear[y]
		if !ok {
			a = &acc{}
			byYear[y] = a
		}
		a.sum += o.MinTempC.Value
		a.n++
	}

	years := maps.Keys(byYear)
	slices.Sort(years)

	out := make([]types.YearlyAverage, 0, len(years))
	for _, y := range years {
		a := byYear[y]
		out = append(out, types.YearlyAverage{
			Year:    y,
			Month:   time.Month(month),
			MeanC:   a.sum / float64(a.n),
			Samples: a.n,
		})
	}
	return out, nil
}

// MeanOfMeans averages the per-year means without weighting by sample count.
func MeanOfMeans(avgs []types.YearlyAverage) (float64, error) {
	if len(avgs) == 0 {
		return 0, ErrNoData
	}
	var sum float64
	for _, a := range avgs {
		sum += a.MeanC
	}
	return sum / float64(len(avgs)), nil
}
