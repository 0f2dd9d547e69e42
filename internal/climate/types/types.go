package types

import (
	"fmt"
	"time"
)

// DateLayout is the dd/mm/yyyy layout used by the source CSV.
const DateLayout = "02/01/2006"

// Measurement is an optional point reading. The zero value is absent,
// which is not the same as a valid reading of 0.
type Measurement struct {
	Value float64
	Valid bool
}

// Some returns a present measurement.
func Some(v float64) Measurement {
	return Measurement{Value: v, Valid: true}
}

// Absent returns the missing-value marker.
func Absent() Measurement {
	return Measurement{}
}

// Ptr returns nil for an absent measurement, the way nullable columns
// and JSON fields expect it.
func (m Measurement) Ptr() *float64 {
	if !m.Valid {
		return nil
	}
	v := m.Value
	return &v
}

// Observation is one day of the climate record. Accumulations and rates
// default to 0 when missing; point measurements use Measurement.
type Observation struct {
	Date                time.Time   `json:"date"`
	PrecipitationMM     float64     `json:"precipitationMm"`
	MaxTempC            Measurement `json:"maxTempC"`
	MinTempC            Measurement `json:"minTempC"`
	InsolationHours     float64     `json:"insolationHours"`
	MeanTempC           Measurement `json:"meanTempC"`
	RelativeHumidityPct Measurement `json:"relativeHumidityPct"`
	WindSpeedMS         float64     `json:"windSpeedMs"`
}

// MonthKey groups daily observations by calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%02d/%d", int(k.Month), k.Year)
}

// Before reports whether k is chronologically earlier than o.
func (k MonthKey) Before(o MonthKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Month < o.Month
}

type MonthlyPrecipitation struct {
	Key     MonthKey `json:"key"`
	TotalMM float64  `json:"totalMm"`
}

// YearlyAverage is the mean minimum temperature of one calendar month in one year.
type YearlyAverage struct {
	Year    int        `json:"year"`
	Month   time.Month `json:"month"`
	MeanC   float64    `json:"meanC"`
	Samples int        `json:"samples"`
}

// Label is the chart label for the average, e.g. "01/2006".
func (a YearlyAverage) Label() string {
	return MonthKey{Year: a.Year, Month: a.Month}.String()
}
