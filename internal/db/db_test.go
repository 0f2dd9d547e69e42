package db

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climate-cli/internal/config"
)

func TestBuildDSN(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "explicit dsn wins",
			cfg:  config.Config{SQLiteDSN: "file:x.db?mode=ro", SQLitePath: "ignored.db"},
			want: "file:x.db?mode=ro",
		},
		{
			name: "memory",
			cfg:  config.Config{SQLitePath: ":memory:"},
			want: ":memory:",
		},
		{
			name: "plain path",
			cfg:  config.Config{SQLitePath: filepath.Join(dir, "nested", "mirror.db")},
			want: "file:" + filepath.Join(dir, "nested", "mirror.db") + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL",
		},
		{
			name: "file uri with query",
			cfg:  config.Config{SQLitePath: "file:" + filepath.Join(dir, "m.db") + "?cache=shared"},
			want: "file:" + filepath.Join(dir, "m.db") + "?cache=shared&_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDSN(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.DirExists(t, filepath.Join(dir, "nested"))
}

func TestOpen_PlainAndLogged(t *testing.T) {
	for _, logSQL := range []bool{false, true} {
		cfg := config.Config{
			SQLiteDriver:       "sqlite3",
			SQLitePath:         filepath.Join(t.TempDir(), "mirror.db"),
			SQLiteLogSQL:       logSQL,
			SQLiteMaxOpenConns: 1,
			SQLiteMaxIdleConns: 1,
		}
		handler := &captureHandler{}

		conn, err := Open(cfg, slog.New(handler))
		require.NoError(t, err)

		var ok int
		require.NoError(t, conn.QueryRow(`SELECT 1`).Scan(&ok))
		assert.Equal(t, 1, ok)
		require.NoError(t, Close(conn))

		assert.Equal(t, logSQL, len(handler.recordsFor(t, "sql")) > 0, "logSQL=%v", logSQL)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.Config{SQLiteDriver: "nope", SQLitePath: ":memory:"}, slog.Default())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "db open"), err.Error())
}

func TestClose_Nil(t *testing.T) {
	assert.NoError(t, Close(nil))
}
