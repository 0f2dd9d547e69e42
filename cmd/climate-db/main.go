package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"golang.org/x/exp/maps"

	"climate-cli/internal/app"
	"climate-cli/internal/config"
	"climate-cli/internal/logging"
)

const (
	appName = "climate-db"
	version = "dev"
)

func main() {
	command, ok := parseArgs(os.Args, os.Stderr)
	if !ok {
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunDBCommand(ctx, cfg, logger, command, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", command, err)
		os.Exit(1)
	}
}

// parseArgs returns the command to run. Missing or unknown commands print
// the usage to w before any configuration is read.
func parseArgs(args []string, w io.Writer) (string, bool) {
	if len(args) < 2 {
		usage(w, args)
		return "", false
	}
	if _, ok := app.DBCommands[args[1]]; !ok {
		fmt.Fprintf(w, "unknown command: %s\n", args[1])
		usage(w, args)
		return "", false
	}
	return args[1], true
}

func usage(w io.Writer, args []string) {
	prog := appName
	if len(args) > 0 {
		prog = args[0]
	}
	fmt.Fprintf(w, "usage: %s <command>\n", prog)
	commands := maps.Keys(app.DBCommands)
	slices.Sort(commands)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c, app.DBCommands[c])
	}
}
