package dataset

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"climate-cli/internal/climate/types"
)

// Column positions in the source CSV.
const (
	colDate = iota
	colPrecipitation
	colMaxTemp
	colMinTemp
	colInsolation
	colMeanTemp
	colHumidity
	colWindSpeed

	numColumns
)

var columnNames = [numColumns]string{
	"date",
	"precipitation",
	"max_temp",
	"min_temp",
	"insolation",
	"mean_temp",
	"relative_humidity",
	"wind_speed",
}

var ErrMissingDate = errors.New("missing date")

// decimalRe is the plain decimal notation of the source file. ParseFloat
// alone would also take hex floats, digit separators, inf and nan.
var decimalRe = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ParseError reports a row that could not be turned into an Observation.
// Line is the 1-based line in the file, 0 when parsing a detached row.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse row")
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ": column %s", e.Column)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " value %q", e.Value)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseRecord converts one CSV row into an Observation.
func ParseRecord(fields []string) (types.Observation, error) {
	if len(fields) < numColumns {
		return types.Observation{}, &ParseError{
			Err: fmt.Errorf("expected %d fields, got %d", numColumns, len(fields)),
		}
	}

	rawDate := strings.TrimSpace(fields[colDate])
	if rawDate == "" {
		return types.Observation{}, &ParseError{Column: columnNames[colDate], Err: ErrMissingDate}
	}
	date, err := time.Parse(types.DateLayout, rawDate)
	if err != nil {
		return types.Observation{}, &ParseError{Column: columnNames[colDate], Value: rawDate, Err: err}
	}

	var obs types.Observation
	obs.Date = date

	if obs.PrecipitationMM, err = parseZeroDefault(fields, colPrecipitation); err != nil {
		return types.Observation{}, err
	}
	if obs.MaxTempC, err = parseOptional(fields, colMaxTemp); err != nil {
		return types.Observation{}, err
	}
	if obs.MinTempC, err = parseOptional(fields, colMinTemp); err != nil {
		return types.Observation{}, err
	}
	if obs.InsolationHours, err = parseZeroDefault(fields, colInsolation); err != nil {
		return types.Observation{}, err
	}
	if obs.MeanTempC, err = parseOptional(fields, colMeanTemp); err != nil {
		return types.Observation{}, err
	}
	if obs.RelativeHumidityPct, err = parseOptional(fields, colHumidity); err != nil {
		return types.Observation{}, err
	}
	if obs.WindSpeedMS, err = parseZeroDefault(fields, colWindSpeed); err != nil {
		return types.Observation{}, err
	}
	return obs, nil
}

// parseZeroDefault is for accumulations and rates, which are 0 when not recorded.
func parseZeroDefault(fields []string, col int) (float64, error) {
	m, err := parseOptional(fields, col)
	if err != nil {
		return 0, err
	}
	return m.Value, nil
}

func parseOptional(fields []string, col int) (types.Measurement, error) {
	s := strings.TrimSpace(fields[col])
	if s == "" {
		return types.Absent(), nil
	}
	if !decimalRe.MatchString(s) {
		return types.Measurement{}, &ParseError{Column: columnNames[col], Value: s, Err: strconv.ErrSyntax}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return types.Measurement{}, &ParseError{Column: columnNames[col], Value: s, Err: err}
	}
	return types.Some(v), nil
}
