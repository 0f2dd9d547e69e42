package menu

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-cli/internal/climate/dataset"
	"climate-cli/internal/climate/types"
	"climate-cli/internal/climate/views"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testDataset() *dataset.Dataset {
	return dataset.New([]types.Observation{
		{Date: day(2006, time.January, 1), PrecipitationMM: 10, MinTempC: types.Some(10)},
		{Date: day(2006, time.January, 15), PrecipitationMM: 5, MinTempC: types.Some(12)},
		{Date: day(2006, time.February, 1), PrecipitationMM: 25},
		{Date: day(2008, time.January, 10), PrecipitationMM: 0, MinTempC: types.Some(20)},
	})
}

func runScript(t *testing.T, ds *dataset.Dataset, script string, opts ...Option) string {
	t.Helper()
	var out bytes.Buffer
	err := New(ds, &out, strings.NewReader(script), opts...).Run(context.Background())
	require.NoError(t, err)
	return out.String()
}

func TestRun_ExitOption(t *testing.T) {
	out := runScript(t, testDataset(), "4\n")
	assert.Contains(t, out, "1. View records in a date range")
	assert.Contains(t, out, "Exiting.")
	assert.NotContains(t, out, "End of input")
}

func TestRun_EndOfInputExitsCleanly(t *testing.T) {
	out := runScript(t, testDataset(), "")
	assert.Contains(t, out, "End of input. Exiting.")
}

func TestRun_InvalidChoice(t *testing.T) {
	out := runScript(t, testDataset(), "abc\n9\n4\n")
	assert.Contains(t, out, "Please enter a valid number.")
	assert.Contains(t, out, "Invalid option. Try again.")
	assert.Equal(t, 3, strings.Count(out, "Choose an option:"))
}

func TestRun_WettestMonth(t *testing.T) {
	out := runScript(t, testDataset(), "2\n4\n")
	assert.Contains(t, out, "Wettest month: 2/2006 with 25.00mm of precipitation")
}

func TestRun_WettestMonthEmptyDataset(t *testing.T) {
	out := runScript(t, dataset.New(nil), "2\n4\n")
	assert.Contains(t, out, "No observations loaded.")
}

func TestRun_ViewRange(t *testing.T) {
	out := runScript(t, testDataset(), "1\n2006\n1\n2006\n1\n2\n4\n")
	assert.Contains(t, out, "Records in the selected range:")
	assert.Contains(t, out, "Precipitation(mm)")
	assert.Contains(t, out, "01/01/2006")
	assert.Contains(t, out, "15/01/2006")
	assert.NotContains(t, out, "01/02/2006")
}

func TestRun_ViewRangeIncludesLastDayOfEndMonth(t *testing.T) {
	ds := dataset.New([]types.Observation{
		{Date: day(2006, time.February, 28), PrecipitationMM: 1},
		{Date: day(2006, time.March, 31), PrecipitationMM: 2},
		{Date: day(2006, time.April, 1), PrecipitationMM: 3},
	})
	out := runScript(t, ds, "1\n2006\n2\n2006\n3\n1\n4\n")
	assert.Contains(t, out, "28/02/2006")
	assert.Contains(t, out, "31/03/2006")
	assert.NotContains(t, out, "01/04/2006")
}

func TestRun_ViewRangeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{name: "year too early", script: "1\n1960\n", want: "Invalid input: year must be between 1961 and 2016"},
		{name: "year too late", script: "1\n2017\n", want: "Invalid input: year must be between 1961 and 2016"},
		{name: "month 13", script: "1\n2006\n13\n", want: "Invalid input: month must be between 1 and 12"},
		{name: "month 0", script: "1\n2006\n1\n2006\n0\n", want: "Invalid input: month must be between 1 and 12"},
		{name: "not a number", script: "1\nnext year\n", want: `Invalid input: "next year" is not a whole number`},
		{name: "start after end", script: "1\n2007\n1\n2006\n12\n", want: "Invalid input: start 01/2007 is after end 12/2006"},
		{name: "bad group", script: "1\n2006\n1\n2006\n1\n5\n", want: "Invalid input: column group must be between 1 and 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runScript(t, testDataset(), tt.script+"4\n")
			assert.Contains(t, out, tt.want)
			assert.NotContains(t, out, "Records in the selected range:")
			assert.Contains(t, out, "Exiting.", "menu must be shown again after bad input")
		})
	}
}

func TestRun_MinTempReport(t *testing.T) {
	out := runScript(t, testDataset(), "3\n1\n4\n")
	assert.Contains(t, out, "01/2006: 11.00°C")
	assert.Contains(t, out, "01/2008: 20.00°C")
	assert.NotContains(t, out, "01/2007")
	assert.Contains(t, out, "Mean minimum temperature per year")
	assert.Contains(t, out, "Overall mean minimum temperature of 1/2006-2016: 15.50°C")
}

func TestRun_MinTempReportUsesConfiguredYears(t *testing.T) {
	out := runScript(t, testDataset(), "3\n1\n4\n", WithAvgYears(2007, 2008))
	assert.NotContains(t, out, "01/2006:")
	assert.Contains(t, out, "Overall mean minimum temperature of 1/2007-2008: 20.00°C")
}

func TestRun_MinTempReportNoData(t *testing.T) {
	out := runScript(t, testDataset(), "3\n6\n4\n")
	assert.Contains(t, out, "No minimum temperature readings for month 06 between 2006 and 2016.")
	assert.NotContains(t, out, "Overall mean")
}

func TestRun_MinTempReportWritesHTMLChart(t *testing.T) {
	require.NoError(t, views.LoadTemplates())
	path := filepath.Join(t.TempDir(), "chart.html")

	out := runScript(t, testDataset(), "3\n1\n4\n", WithChartHTMLPath(path))
	assert.Contains(t, out, "Chart written to "+path)

	page, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<svg")
	assert.Equal(t, 2, strings.Count(string(page), "<rect class=\"bar"))
}

func TestRun_MinTempReportChartFailureKeepsRunning(t *testing.T) {
	require.NoError(t, views.LoadTemplates())
	path := filepath.Join(t.TempDir(), "missing", "chart.html")

	out := runScript(t, testDataset(), "3\n1\n4\n", WithChartHTMLPath(path))
	assert.Contains(t, out, "Could not write chart to "+path)
	assert.Contains(t, out, "15.50°C")
	assert.Contains(t, out, "Exiting.")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("console closed")
}

func TestRun_ReturnsWriteErrors(t *testing.T) {
	m := New(testDataset(), failingWriter{}, strings.NewReader("1\n2006\n1\n2006\n1\n1\n4\n"))
	err := m.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "console closed")
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := New(testDataset(), &out, strings.NewReader("2\n4\n")).Run(ctx)
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "Wettest month")
}

func TestRun_CancelWhileWaitingForInput(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- New(testDataset(), io.Discard, pr).Run(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("menu did not stop after cancellation")
	}
}

func TestInputError(t *testing.T) {
	var err error = &InputError{Msg: "month must be between 1 and 12"}
	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "month must be between 1 and 12", err.Error())
}
