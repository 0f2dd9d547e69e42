package app

import (
	"context"
	"io"
	"log/slog"
	"os"

	"climate-cli/internal/climate/dataset"
	"climate-cli/internal/climate/menu"
	"climate-cli/internal/climate/repository"
	"climate-cli/internal/climate/views"
	"climate-cli/internal/config"
	"climate-cli/internal/db"
	"climate-cli/internal/migrate"
)

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	return run(ctx, cfg, logger, os.Stdin, os.Stdout)
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, in io.Reader, out io.Writer) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"dataPath", cfg.DataPath,
		"avgStartYear", cfg.AvgStartYear,
		"avgEndYear", cfg.AvgEndYear,
		"chartWidth", cfg.ChartWidth,
		"chartHTMLPath", cfg.ChartHTMLPath,
		"sqliteDriver", cfg.SQLiteDriver,
		"sqlitePath", cfg.SQLitePath,
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"sqliteMaxIdleConns", cfg.SQLiteMaxIdleConns,
		"sqliteConnMaxLifetime", cfg.SQLiteConnMaxLifetime,
	)

	ds, err := dataset.Load(cfg.DataPath)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded", "path", cfg.DataPath, "observations", ds.Len())

	if cfg.MirrorEnabled() {
		if err := mirror(ctx, cfg, logger, ds); err != nil {
			logger.Warn("sqlite mirror failed (continuing without it)", "error", err)
		}
	}

	if err := views.LoadTemplates(); err != nil {
		return err
	}

	m := menu.New(ds, out, in,
		menu.WithAvgYears(cfg.AvgStartYear, cfg.AvgEndYear),
		menu.WithChartWidth(cfg.ChartWidth),
		menu.WithChartHTMLPath(cfg.ChartHTMLPath),
		menu.WithLogger(logger),
	)
	return m.Run(ctx)
}

// mirror copies ds into the SQLite database named by cfg.
func mirror(ctx context.Context, cfg config.Config, logger *slog.Logger, ds *dataset.Dataset) error {
	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	if _, err := migrate.Run(dbConn, logger); err != nil {
		return err
	}

	n, err := repository.NewRepository(dbConn, logger).ReplaceObservations(ctx, ds)
	if err != nil {
		return err
	}
	logger.Info("sqlite mirror updated", "observations", n)
	return nil
}
