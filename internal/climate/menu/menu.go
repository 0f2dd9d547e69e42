// Package menu runs the interactive console over a loaded dataset.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"climate-cli/internal/climate/dataset"
	"climate-cli/internal/climate/query"
	"climate-cli/internal/climate/views"
)

const (
	DefaultAvgStartYear = 2006
	DefaultAvgEndYear   = 2016
	DefaultChartWidth   = 50
)

const (
	choiceRange = iota + 1
	choiceWettest
	choiceMinTemp
	choiceExit
)

// InputError is a rejected answer to a prompt. The menu reports it and
// shows the options again.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string {
	return e.Msg
}

func inputErrorf(format string, args ...any) error {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}

type Menu struct {
	ds     *dataset.Dataset
	out    io.Writer
	in     io.Reader
	logger *slog.Logger

	avgStartYear  int
	avgEndYear    int
	chartWidth    int
	chartHTMLPath string

	lines <-chan lineResult
}

type Option func(*Menu)

// WithAvgYears sets the inclusive year range of the minimum temperature report.
func WithAvgYears(start, end int) Option {
	return func(m *Menu) {
		m.avgStartYear = start
		m.avgEndYear = end
	}
}

func WithChartWidth(width int) Option {
	return func(m *Menu) { m.chartWidth = width }
}

// WithChartHTMLPath makes the minimum temperature report also write an SVG
// chart page to path.
func WithChartHTMLPath(path string) Option {
	return func(m *Menu) { m.chartHTMLPath = path }
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Menu) { m.logger = logger }
}

func New(ds *dataset.Dataset, out io.Writer, in io.Reader, opts ...Option) *Menu {
	m := &Menu{
		ds:           ds,
		out:          out,
		in:           in,
		logger:       slog.Default(),
		avgStartYear: DefaultAvgStartYear,
		avgEndYear:   DefaultAvgEndYear,
		chartWidth:   DefaultChartWidth,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run shows the menu until the user exits, input ends or ctx is cancelled.
// Bad answers are reported and never end the loop; only write failures and
// unexpected read errors are returned.
func (m *Menu) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	m.lines = scanLines(m.in, done)

	for {
		if ctx.Err() != nil {
			m.logger.Info("menu interrupted")
			return nil
		}

		m.printf("\nChoose an option:\n")
		m.printf("%d. View records in a date range\n", choiceRange)
		m.printf("%d. Find the wettest month\n", choiceWettest)
		m.printf("%d. Average minimum temperature of a month\n", choiceMinTemp)
		m.printf("%d. Exit\n", choiceExit)

		choice, err := m.readInt(ctx, "Enter your choice (1-4): ")
		var inputErr *InputError
		switch {
		case errors.As(err, &inputErr):
			m.printf("Please enter a valid number.\n")
			continue
		case err != nil:
			return m.stop(err)
		}

		m.logger.Debug("menu choice", "choice", choice)
		switch choice {
		case choiceRange:
			err = m.viewRange(ctx)
		case choiceWettest:
			err = m.wettestMonth()
		case choiceMinTemp:
			err = m.minTempReport(ctx)
		case choiceExit:
			m.printf("Exiting.\n")
			return nil
		default:
			m.printf("Invalid option. Try again.\n")
			continue
		}

		if errors.As(err, &inputErr) {
			m.printf("Invalid input: %s\n", inputErr.Msg)
			continue
		}
		if err != nil {
			return m.stop(err)
		}
	}
}

// stop maps the error that ended the loop to Run's result.
func (m *Menu) stop(err error) error {
	switch {
	case errors.Is(err, io.EOF):
		m.printf("\nEnd of input. Exiting.\n")
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		m.logger.Info("menu interrupted")
		return nil
	default:
		return err
	}
}

func (m *Menu) viewRange(ctx context.Context) error {
	startYear, err := m.readYear(ctx, "Enter the start year: ")
	if err != nil {
		return err
	}
	startMonth, err := m.readMonth(ctx, "Enter the start month (1-12): ")
	if err != nil {
		return err
	}
	endYear, err := m.readYear(ctx, "Enter the end year: ")
	if err != nil {
		return err
	}
	endMonth, err := m.readMonth(ctx, "Enter the end month (1-12): ")
	if err != nil {
		return err
	}

	start := time.Date(startYear, time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)
	// day 0 of the following month is the last day of endMonth
	end := time.Date(endYear, time.Month(endMonth)+1, 0, 0, 0, 0, 0, time.UTC)
	if start.After(end) {
		return inputErrorf("start %02d/%d is after end %02d/%d", startMonth, startYear, endMonth, endYear)
	}

	group, err := m.readGroup(ctx, "Choose the columns (1-All, 2-Precipitation, 3-Temperature, 4-Humidity/Wind): ")
	if err != nil {
		return err
	}

	m.logger.Debug("range view",
		"start", start.Format(time.DateOnly),
		"end", end.Format(time.DateOnly),
		"group", group.String(),
	)
	return query.WriteRange(m.out, m.ds, start, end, group)
}

func (m *Menu) wettestMonth() error {
	wettest, err := query.WettestMonth(m.ds)
	if errors.Is(err, query.ErrEmptyDataset) {
		m.printf("\nNo observations loaded.\n")
		return nil
	}
	if err != nil {
		return err
	}
	m.printf("\nWettest month: %d/%d with %.2fmm of precipitation\n",
		int(wettest.Key.Month), wettest.Key.Year, wettest.TotalMM)
	return nil
}

func (m *Menu) minTempReport(ctx context.Context) error {
	month, err := m.readMonth(ctx, "Enter the month to analyse (1-12): ")
	if err != nil {
		return err
	}

	avgs, err := query.MinTempAverages(m.ds, month, m.avgStartYear, m.avgEndYear)
	if err != nil {
		return err
	}
	overall, err := query.MeanOfMeans(avgs)
	if errors.Is(err, query.ErrNoData) {
		m.printf("\nNo minimum temperature readings for month %02d between %d and %d.\n",
			month, m.avgStartYear, m.avgEndYear)
		return nil
	}
	if err != nil {
		return err
	}

	m.printf("\nMinimum temperature averages:\n")
	bars := make([]views.Bar, 0, len(avgs))
	for _, a := range avgs {
		m.printf("%s: %.2f°C\n", a.Label(), a.MeanC)
		bars = append(bars, views.Bar{Label: a.Label(), Value: a.MeanC})
	}

	if err := views.WriteBarChart(m.out, "Mean minimum temperature per year", bars, m.chartWidth); err != nil {
		return err
	}
	if m.chartHTMLPath != "" {
		m.writeChartHTML(month, bars)
	}

	m.printf("\nOverall mean minimum temperature of %d/%d-%d: %.2f°C\n",
		month, m.avgStartYear, m.avgEndYear, overall)
	return nil
}

// writeChartHTML reports failures on the console and keeps the menu running.
func (m *Menu) writeChartHTML(month int, bars []views.Bar) {
	data := &views.ChartData{
		Title:  fmt.Sprintf("Mean minimum temperature of %s per year", time.Month(month)),
		XLabel: "Year",
		YLabel: "Temperature (°C)",
		Bars:   bars,
	}
	if err := writeChartFile(m.chartHTMLPath, data); err != nil {
		m.logger.Warn("write chart", "path", m.chartHTMLPath, "error", err)
		m.printf("Could not write chart to %s: %v\n", m.chartHTMLPath, err)
		return
	}
	m.printf("Chart written to %s\n", m.chartHTMLPath)
}

func writeChartFile(path string, data *views.ChartData) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return views.RenderChartHTML(f, data)
}

func (m *Menu) readInt(ctx context.Context, prompt string) (int, error) {
	m.printf("%s", prompt)
	line, err := m.readLine(ctx)
	if err != nil {
		return 0, err
	}
	line = strings.TrimSpace(line)
	n, err := strconv.Atoi(line)
	if err != nil {
		return 0, inputErrorf("%q is not a whole number", line)
	}
	return n, nil
}

func (m *Menu) readYear(ctx context.Context, prompt string) (int, error) {
	y, err := m.readInt(ctx, prompt)
	if err != nil {
		return 0, err
	}
	if !query.ValidYear(y) {
		return 0, inputErrorf("year must be between %d and %d", query.FirstYear, query.LastYear)
	}
	return y, nil
}

func (m *Menu) readMonth(ctx context.Context, prompt string) (int, error) {
	mo, err := m.readInt(ctx, prompt)
	if err != nil {
		return 0, err
	}
	if !query.ValidMonth(mo) {
		return 0, inputErrorf("month must be between 1 and 12")
	}
	return mo, nil
}

func (m *Menu) readGroup(ctx context.Context, prompt string) (query.ColumnGroup, error) {
	n, err := m.readInt(ctx, prompt)
	if err != nil {
		return 0, err
	}
	g := query.ColumnGroup(n)
	if !g.Valid() {
		return 0, inputErrorf("column group must be between %d and %d", query.GroupAll, query.GroupHumidityWind)
	}
	return g, nil
}

func (m *Menu) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-m.lines:
		if !ok {
			return "", io.EOF
		}
		return r.text, r.err
	}
}

func (m *Menu) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(m.out, format, args...)
}

type lineResult struct {
	text string
	err  error
}

// scanLines reads r line by line on its own goroutine so a blocked read
// does not hold up cancellation. After done is closed the goroutine exits
// as soon as its pending read returns; a read blocked on stdin keeps it
// alive until the next line or EOF.
func scanLines(r io.Reader, done <-chan struct{}) <-chan lineResult {
	ch := make(chan lineResult)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case ch <- lineResult{text: sc.Text()}:
			case <-done:
				return
			}
		}
		err := sc.Err()
		if err == nil {
			err = io.EOF
		}
		select {
		case ch <- lineResult{err: err}:
		case <-done:
		}
	}()
	return ch
}
