package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"climate-cli/internal/climate/dataset"
	"climate-cli/internal/climate/repository"
	"climate-cli/internal/config"
	"climate-cli/internal/db"
	"climate-cli/internal/migrate"
)

var ErrMirrorDisabled = errors.New("SQLITE_PATH or SQLITE_DSN must be set")

// DBCommands lists the maintenance commands accepted by RunDBCommand.
var DBCommands = map[string]string{
	"migrate": "apply pending schema migrations",
	"import":  "load DATA_PATH and replace the mirrored observations",
	"stats":   "print the mirrored row count and monthly precipitation totals",
}

// RunDBCommand runs one maintenance command against the SQLite mirror and
// reports the result on out.
func RunDBCommand(ctx context.Context, cfg config.Config, logger *slog.Logger, command string, out io.Writer) error {
	if _, ok := DBCommands[command]; !ok {
		return fmt.Errorf("unknown command: %s", command)
	}
	if !cfg.MirrorEnabled() {
		return ErrMirrorDisabled
	}

	dbConn, err := db.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	n, err := migrate.Run(dbConn, logger)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	repo := repository.NewRepository(dbConn, logger)

	switch command {
	case "migrate":
		_, err = fmt.Fprintf(out, "%d migrations applied\n", n)
		return err

	case "import":
		ds, err := dataset.Load(cfg.DataPath)
		if err != nil {
			return err
		}
		written, err := repo.ReplaceObservations(ctx, ds)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		_, err = fmt.Fprintf(out, "%d observations imported from %s\n", written, cfg.DataPath)
		return err

	default:
		count, err := repo.CountObservations(ctx)
		if err != nil {
			return fmt.Errorf("count observations: %w", err)
		}
		totals, err := repo.MonthlyPrecipitation(ctx)
		if err != nil {
			return fmt.Errorf("monthly precipitation: %w", err)
		}
		if _, err := fmt.Fprintf(out, "observations: %d\nmonths: %d\n", count, len(totals)); err != nil {
			return err
		}
		for _, t := range totals {
			if _, err := fmt.Fprintf(out, "%s %10.2f mm\n", t.Key, t.TotalMM); err != nil {
				return err
			}
		}
		return nil
	}
}
