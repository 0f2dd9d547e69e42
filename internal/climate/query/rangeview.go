package query

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"climate-cli/internal/climate/dataset"
	"climate-cli/internal/climate/types"
)

// ColumnGroup selects which measurements WriteRange prints.
type ColumnGroup int

const (
	GroupAll ColumnGroup = iota + 1
	GroupPrecipitation
	GroupTemperature
	GroupHumidityWind
)

const dateWidth = 12

func (g ColumnGroup) Valid() bool {
	return g >= GroupAll && g <= GroupHumidityWind
}

func (g ColumnGroup) String() string {
	switch g {
	case GroupAll:
		return "all"
	case GroupPrecipitation:
		return "precipitation"
	case GroupTemperature:
		return "temperature"
	case GroupHumidityWind:
		return "humidity/wind"
	default:
		return fmt.Sprintf("ColumnGroup(%d)", int(g))
	}
}

type column struct {
	title string
	width int
	value func(types.Observation) types.Measurement
}

func precipitation(o types.Observation) types.Measurement { return types.Some(o.PrecipitationMM) }
func maxTemp(o types.Observation) types.Measurement       { return o.MaxTempC }
func minTemp(o types.Observation) types.Measurement       { return o.MinTempC }
func insolation(o types.Observation) types.Measurement    { return types.Some(o.InsolationHours) }
func meanTemp(o types.Observation) types.Measurement      { return o.MeanTempC }
func humidity(o types.Observation) types.Measurement      { return o.RelativeHumidityPct }
func windSpeed(o types.Observation) types.Measurement     { return types.Some(o.WindSpeedMS) }

var groupColumns = map[ColumnGroup][]column{
	GroupAll: {
		{title: "Precip(mm)", width: 11, value: precipitation},
		{title: "Max(°C)", width: 9, value: maxTemp},
		{title: "Min(°C)", width: 9, value: minTemp},
		{title: "Insol(h)", width: 10, value: insolation},
		{title: "Mean(°C)", width: 10, value: meanTemp},
		{title: "RH(%)", width: 8, value: humidity},
		{title: "Wind(m/s)", width: 11, value: windSpeed},
	},
	GroupPrecipitation: {
		{title: "Precipitation(mm)", width: 18, value: precipitation},
	},
	GroupTemperature: {
		{title: "Maximum(°C)", width: 13, value: maxTemp},
		{title: "Minimum(°C)", width: 13, value: minTemp},
		{title: "Mean(°C)", width: 13, value: meanTemp},
	},
	GroupHumidityWind: {
		{title: "Rel. Humidity(%)", width: 18, value: humidity},
		{title: "Wind Speed(m/s)", width: 18, value: windSpeed},
	},
}

// FilterRange returns the observations dated within [start, end], compared
// at day precision, in dataset order.
func FilterRange(ds *dataset.Dataset, start, end time.Time) []types.Observation {
	from, to := day(start), day(end)
	var out []types.Observation
	for o := range ds.All() {
		d := day(o.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// WriteRange prints a header and one fixed-width line per observation in
// [start, end] for the selected column group. Absent measurements are
// printed as a blank field.
func WriteRange(w io.Writer, ds *dataset.Dataset, start, end time.Time, group ColumnGroup) error {
	cols, ok := groupColumns[group]
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidColumnGroup, int(group))
	}

	var b strings.Builder
	b.WriteString("\nRecords in the selected range:\n")
	b.WriteString(runewidth.FillRight("Date", dateWidth))
	total := dateWidth
	for _, c := range cols {
		b.WriteString(runewidth.FillLeft(c.title, c.width))
		total += c.width
	}
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("-", total))
	b.WriteByte('\n')
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	for _, o := range FilterRange(ds, start, end) {
		b.Reset()
		b.WriteString(runewidth.FillRight(o.Date.Format(types.DateLayout), dateWidth))
		for _, c := range cols {
			b.WriteString(formatCell(c.value(o), c.width))
		}
		b.WriteByte('\n')
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

func formatCell(m types.Measurement, width int) string {
	if !m.Valid {
		return strings.Repeat(" ", width)
	}
	return fmt.Sprintf("%*.1f", width, m.Value)
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
