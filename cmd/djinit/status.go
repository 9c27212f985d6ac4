package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gfanton/djinit/internal/project"
	"github.com/gfanton/djinit/internal/scaffold"
	"github.com/peterbourgon/ff/v3/ffcli"
	"go.uber.org/zap"
)

func statusCommand(logger *zap.Logger) *ffcli.Command {
	fs := flag.NewFlagSet("djinit status", flag.ContinueOnError)

	return &ffcli.Command{
		Name:       "status",
		ShortUsage: "djinit status [dir]",
		ShortHelp:  "Show the outcome of the run that created a project",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			return runStatus(logger, os.Stdout, args)
		},
	}
}

func runStatus(logger *zap.Logger, out io.Writer, args []string) error {
	dir := "."
	switch len(args) {
	case 0:
	case 1:
		dir = args[0]
	default:
		return fmt.Errorf("too many arguments, expected a project directory")
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("unable to resolve %s: %w", dir, err)
	}

	logger.Debug("reading run record", zap.String("root", root))
	record, err := scaffold.ReadRecord(filepath.Join(root, project.RecordFile))
	if err != nil {
		return err
	}

	p := &project.Project{Name: record.Name, Path: root}

	fmt.Fprintf(out, "project:   %s\n", record.Name)
	fmt.Fprintf(out, "root:      %s\n", record.Root)
	fmt.Fprintf(out, "run:       %s\n", record.ID)
	fmt.Fprintf(out, "created:   %s (%s)\n",
		record.Started.Format("2006-01-02 15:04:05"),
		record.Finished.Sub(record.Started).Round(time.Second))
	fmt.Fprintf(out, "completed: %s\n", strings.Join(record.Completed, ", "))
	if record.Succeeded() {
		fmt.Fprintln(out, "status:    ok")
	} else {
		fmt.Fprintf(out, "status:    failed at %s: %s\n", record.Failed, record.Error)
	}
	for _, w := range record.Warnings {
		fmt.Fprintf(out, "warning:   %s\n", w)
	}
	fmt.Fprintf(out, "git:       %s\n", p.GetGitStatus())

	return nil
}
