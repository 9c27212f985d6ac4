package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/gfanton/djinit/internal/config"
	"github.com/gfanton/djinit/internal/git"
	"github.com/gfanton/djinit/internal/launcher"
	"github.com/gfanton/djinit/internal/runner"
	"github.com/gfanton/djinit/internal/scaffold"
	"github.com/gfanton/djinit/internal/settings"
	"github.com/mattn/go-isatty"
	"github.com/peterbourgon/ff/v3/ffcli"
	"go.uber.org/zap"
)

const namePrompt = "Project name (e.g. mi_blog): "

func newCommand(logger *zap.Logger, cfg *config.Config) *ffcli.Command {
	return &ffcli.Command{
		Name:       "new",
		ShortUsage: "djinit [flags] new [name]",
		ShortHelp:  "Create a new django project",
		LongHelp: `Create a django project in <dir>/<name>. The name is asked on the
standard input when omitted; it cannot be empty or contain spaces.`,
		FlagSet: cfg.FlagSet("djinit new", flag.ContinueOnError),
		Exec: func(ctx context.Context, args []string) error {
			return runNew(ctx, logger, cfg, os.Stdin, os.Stdout, args)
		},
	}
}

func runNew(ctx context.Context, logger *zap.Logger, cfg *config.Config, in io.Reader, out io.Writer, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("too many arguments, expected a single project name")
	}

	// flags given after the subcommand are bound once Load has run
	if err := cfg.ResolveBaseDir(); err != nil {
		return err
	}

	// the launcher is resolved before anything is created
	var l launcher.Launcher
	if cfg.Launch {
		var err error
		if l, err = launcher.New(runtime.GOOS, cfg.Terminal, nil); err != nil {
			return fmt.Errorf("unable to select a terminal: %w", err)
		}
		logger.Debug("launcher selected", zap.String("launcher", l.Name()))
	}

	reader := bufio.NewReader(in)
	fmt.Fprintln(out, "--- Django project setup ---")

	name, err := readName(reader, out, args)
	if err != nil {
		return err
	}

	s := scaffold.New(logger, runner.New(logger), l, git.NewClient(logger), out)
	result, err := s.Scaffold(ctx, scaffold.Options{
		Name:         name,
		BaseDir:      cfg.BaseDir,
		Python:       cfg.Python,
		Venv:         cfg.Venv,
		GOOS:         runtime.GOOS,
		Dependencies: cfg.Dependencies(),
		Settings: settings.Options{
			LanguageCode: cfg.LanguageCode,
			TimeZone:     cfg.TimeZone,
		},
		StrictName: cfg.StrictName,
		Git:        cfg.Git,
		GitAuthor:  cfg.GitAuthor,
		GitEmail:   cfg.GitEmail,
		Launch:     cfg.Launch,
		Cleanup:    cfg.Cleanup,
	})
	wait := cfg.Pause && isTerminal(in)
	if err != nil {
		if result.MigrationFailed() {
			pause(wait, reader, out, "Press Enter to exit...")
		}
		return err
	}

	p := result.Project
	fmt.Fprintln(out, "\n--- Django project created! ---")
	fmt.Fprintf(out, "Your project '%s' is ready in '%s'\n", p.Name, p.Path)
	if result.Report.Done(scaffold.StepLaunchServer) {
		fmt.Fprintln(out, "The development server should be running in a new window.")
	}
	fmt.Fprintln(out, "----------------------------------------------------")

	pause(wait, reader, out, "Press Enter to close...")
	return nil
}

// readName returns the name given as argument, or prompts for it.
func readName(reader *bufio.Reader, out io.Writer, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	fmt.Fprint(out, namePrompt)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("unable to read project name: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func pause(wait bool, reader *bufio.Reader, out io.Writer, msg string) {
	if !wait {
		return
	}

	fmt.Fprintf(out, "\n%s", msg)
	reader.ReadString('\n')
}
