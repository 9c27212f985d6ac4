package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/gfanton/djinit/internal/config"
	"github.com/oklog/run"
	"github.com/peterbourgon/ff/v3/ffcli"
	"go.uber.org/zap"
)

func main() {
	args := os.Args[1:]

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Load(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := cfg.Logger()
	defer logger.Sync()

	// Global flags are parsed by cfg.Load first, they are bound again here
	// so the command parser accepts them.
	root := &ffcli.Command{
		Name:       "djinit",
		ShortUsage: "djinit [flags] <subcommand>",
		ShortHelp:  "Scaffold django projects",
		LongHelp: `djinit creates a django project in a new directory: a virtual environment,
the project skeleton, settings split into local and prod variants, a
requirements.txt, the initial migrations and a git repository, then starts
the development server in a new terminal.

Flags can also be set from the environment (DJINIT_<FLAG>) or from the
TOML configuration file.`,
		FlagSet: cfg.FlagSet("djinit", flag.ContinueOnError),
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
		},
		Subcommands: []*ffcli.Command{
			newCommand(logger, cfg),
			statusCommand(logger),
			versionCommand(),
		},
	}

	// create process context
	processCtx, processCancel := context.WithCancel(context.Background())
	var process run.Group
	{
		// handle interrupt signals
		execute, interrupt := run.SignalHandler(processCtx, os.Interrupt)
		process.Add(execute, interrupt)

		// add root command to process
		process.Add(func() error {
			return root.ParseAndRun(processCtx, args)
		}, func(error) {
			processCancel()
		})
	}

	// start process
	err = process.Run()
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp): // ok
	default:
		logger.Debug("command failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}
