package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"climate-cli/internal/climate/dataset"
	"climate-cli/internal/climate/types"
)

//go:embed sql/insert-observation.sql
var insertObservationSQL string

//go:embed sql/get-observations.sql
var getObservationsSQL string

//go:embed sql/get-monthly-precipitation.sql
var getMonthlyPrecipitationSQL string

const dayLayout = time.DateOnly

// ObservationRepository is the SQLite mirror of a loaded dataset.
type ObservationRepository interface {
	ReplaceObservations(ctx context.Context, ds *dataset.Dataset) (int, error)
	CountObservations(ctx context.Context) (int, error)
	GetObservations(ctx context.Context, from time.Time, to time.Time) ([]types.Observation, error)
	MonthlyPrecipitation(ctx context.Context) ([]types.MonthlyPrecipitation, error)
}

type repositoryImpl struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRepository(db *sql.DB, logger *slog.Logger) ObservationRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &repositoryImpl{db: db, logger: logger}
}

// ReplaceObservations clears the mirror and writes every observation of ds
// in one transaction, keeping file order in the seq column.
func (r *repositoryImpl) ReplaceObservations(ctx context.Context, ds *dataset.Dataset) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			r.logger.Error("rollback observations", "error", rbErr)
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM observations`); err != nil {
		return 0, fmt.Errorf("clear observations: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertObservationSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("close insert statement", "error", err)
		}
	}()

	n := 0
	for o := range ds.All() {
		n++
		_, err := stmt.ExecContext(ctx,
			n,
			o.Date.Format(dayLayout),
			o.PrecipitationMM,
			o.MaxTempC.Ptr(),
			o.MinTempC.Ptr(),
			o.InsolationHours,
			o.MeanTempC.Ptr(),
			o.RelativeHumidityPct.Ptr(),
			o.WindSpeedMS,
		)
		if err != nil {
			return 0, fmt.Errorf("insert observation %s: %w", o.Date.Format(dayLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

func (r *repositoryImpl) CountObservations(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM observations`).Scan(&n)
	return n, err
}

// GetObservations returns the mirrored observations dated within [from, to], in file order.
func (r *repositoryImpl) GetObservations(ctx context.Context, from time.Time, to time.Time) ([]types.Observation, error) {
	rows, err := r.db.QueryContext(ctx, getObservationsSQL, from.Format(dayLayout), to.Format(dayLayout))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Error("close observations rows", "error", err)
		}
	}()

	var out []types.Observation
	for rows.Next() {
		var (
			o                              types.Observation
			day                            string
			maxT, minT, meanT, humidityPct sql.NullFloat64
		)
		if err := rows.Scan(&day, &o.PrecipitationMM, &maxT, &minT, &o.InsolationHours, &meanT, &humidityPct, &o.WindSpeedMS); err != nil {
			return nil, err
		}
		o.Date, err = time.Parse(dayLayout, day)
		if err != nil {
			return nil, fmt.Errorf("parse day %q: %w", day, err)
		}
		o.MaxTempC = measurement(maxT)
		o.MinTempC = measurement(minT)
		o.MeanTempC = measurement(meanT)
		o.RelativeHumidityPct = measurement(humidityPct)
		out = append(out, o)
	}
	return out, rows.Err()
}

// MonthlyPrecipitation is the SQL counterpart of query.MonthlyTotals.
func (r *repositoryImpl) MonthlyPrecipitation(ctx context.Context) ([]types.MonthlyPrecipitation, error) {
	rows, err := r.db.QueryContext(ctx, getMonthlyPrecipitationSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Error("close monthly precipitation rows", "error", err)
		}
	}()

	var out []types.MonthlyPrecipitation
	for rows.Next() {
		var (
			year, month int
			total       float64
		)
		if err := rows.Scan(&year, &month, &total); err != nil {
			return nil, err
		}
		out = append(out, types.MonthlyPrecipitation{
			Key:     types.MonthKey{Year: year, Month: time.Month(month)},
			TotalMM: total,
		})
	}
	return out, rows.Err()
}

func measurement(v sql.NullFloat64) types.Measurement {
	if !v.Valid {
		return types.Absent()
	}
	return types.Some(v.Float64)
}
