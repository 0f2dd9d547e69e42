// Package query holds the read-only analyses run against a loaded dataset.
package query

import "errors"

// Coverage of the reference INMET record.
const (
	FirstYear = 1961
	LastYear  = 2016
)

var (
	ErrEmptyDataset       = errors.New("dataset is empty")
	ErrNoData             = errors.New("no data for the requested period")
	ErrInvalidMonth       = errors.New("month must be between 1 and 12")
	ErrInvalidYearRange   = errors.New("start year must not be after end year")
	ErrInvalidColumnGroup = errors.New("invalid column group")
)

func ValidMonth(m int) bool {
	return m >= 1 && m <= 12
}

// ValidYear reports whether y is covered by the dataset, not whether it is a calendar year.
func ValidYear(y int) bool {
	return y >= FirstYear && y <= LastYear
}
