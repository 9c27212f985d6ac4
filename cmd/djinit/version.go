package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/gfanton/djinit/internal/config"
	"github.com/gfanton/djinit/internal/project"
	"github.com/gfanton/djinit/pkg/template"
	"github.com/peterbourgon/ff/v3/ffcli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

type versionConfig struct {
	verbose bool
}

func versionCommand() *ffcli.Command {
	cfg := &versionConfig{}
	fs := flag.NewFlagSet("djinit version", flag.ContinueOnError)
	fs.BoolVar(&cfg.verbose, "v", false, "show verbose version information")
	fs.BoolVar(&cfg.verbose, "verbose", false, "show verbose version information")

	return &ffcli.Command{
		Name:       "version",
		ShortUsage: "djinit version [-v]",
		ShortHelp:  "Show version and scaffolding defaults",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			return runVersion(os.Stdout, cfg)
		},
	}
}

// buildVersion falls back to the module version when none was set at link
// time, as with go install.
func buildVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}

func runVersion(out io.Writer, cfg *versionConfig) error {
	v := buildVersion()
	if !cfg.verbose {
		fmt.Fprintln(out, v)
		return nil
	}

	fmt.Fprintf(out, "djinit %s (commit %s, built %s by %s)\n", v, commit, date, builtBy)
	fmt.Fprintf(out, "  go:        %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "  venv:      %s\n", config.DefaultVenv)
	fmt.Fprintf(out, "  settings:  %s\n", project.ConfigPackage)
	fmt.Fprintf(out, "  record:    %s\n", project.RecordFile)
	fmt.Fprintf(out, "  templates: %s\n", strings.Join(template.Names(), ", "))
	return nil
}
