// Package scaffold creates django projects: virtual environment, skeleton,
// settings variants, requirements, migrations, repository and dev server.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gfanton/djinit/internal/git"
	"github.com/gfanton/djinit/internal/launcher"
	"github.com/gfanton/djinit/internal/project"
	"github.com/gfanton/djinit/internal/runner"
	"github.com/gfanton/djinit/internal/settings"
	"go.uber.org/zap"
)

var (
	// ErrInvalidName is returned when the project name is rejected.
	ErrInvalidName = errors.New("invalid project name")
	// ErrRootExists is returned when the project root is already on disk.
	ErrRootExists = errors.New("project directory already exists")
)

// Options configures a scaffolding run.
type Options struct {
	Name    string
	BaseDir string
	// Python is the interpreter used to create the virtual environment.
	Python string
	Venv   string
	GOOS   string

	Dependencies []string
	Settings     settings.Options
	StrictName   bool

	Git       bool
	GitAuthor string
	GitEmail  string
	Launch    bool
	Cleanup   bool
}

// Result is the outcome of Scaffold.
type Result struct {
	// Project is nil when the name was rejected.
	Project *project.Project
	Report  *Report
	// Record is nil when nothing was written to disk.
	Record *Record
	// Removed reports whether the root was removed after a failure.
	Removed bool
}

// MigrationFailed reports whether the run stopped at the migrate step.
func (r *Result) MigrationFailed() bool {
	return r.Report.Failed() == StepMigrate
}

// Scaffolder runs the scaffolding pipeline.
type Scaffolder struct {
	logger   *zap.Logger
	runner   runner.Runner
	launcher launcher.Launcher
	git      *git.Client
	out      io.Writer
	now      func() time.Time
}

// New creates a Scaffolder. l may be nil when the server is never launched.
// Progress is written to out.
func New(logger *zap.Logger, r runner.Runner, l launcher.Launcher, g *git.Client, out io.Writer) *Scaffolder {
	return &Scaffolder{
		logger:   logger,
		runner:   r,
		launcher: l,
		git:      g,
		out:      out,
		now:      time.Now,
	}
}

// Scaffold creates the project described by opts. The returned error is the
// *StepError that stopped the run; the Result is always set.
func (s *Scaffolder) Scaffold(ctx context.Context, opts Options) (*Result, error) {
	b := &build{Scaffolder: s, opts: opts}
	started := s.now()

	report := NewPipeline(s.logger, b.steps()...).Run(ctx)
	result := &Result{Project: b.project, Report: report}

	if !report.Done(StepCreateRoot) {
		return result, report.Err
	}

	if report.Err != nil && opts.Cleanup {
		s.logger.Info("removing project directory", zap.String("path", b.project.Path))
		if err := os.RemoveAll(b.project.Path); err != nil {
			s.logger.Warn("unable to remove project directory", zap.Error(err))
		} else {
			fmt.Fprintf(s.out, "\nRemoved %s\n", b.project.Path)
			result.Removed = true
			return result, report.Err
		}
	}

	record := NewRecord(b.project.Name, b.project.Path, started, s.now(), report)
	if err := WriteRecord(b.project.Record(), record); err != nil {
		s.logger.Warn("unable to write run record", zap.Error(err))
	} else {
		result.Record = record
	}

	return result, report.Err
}

// build holds the state shared by the steps of one Scaffold call.
type build struct {
	*Scaffolder
	opts    Options
	project *project.Project
}

func (b *build) steps() []Step {
	steps := []Step{
		{Name: StepValidateName, Run: b.validateName},
		{Name: StepCreateRoot, Run: b.createRoot},
		{Name: StepCreateVenv, Run: b.createVenv},
		{Name: StepInstallDeps, Run: b.installDependencies},
		{Name: StepStartProject, Run: b.startProject},
		{Name: StepCreateDirs, Run: b.createDirectories},
		{Name: StepSplitSettings, Run: b.splitSettings},
		{Name: StepPatchEntrypoints, Run: b.patchEntrypoints},
		{Name: StepRewriteSettings, Run: b.rewriteSettings},
		{Name: StepFreeze, Run: b.freezeRequirements},
		{Name: StepMigrate, Run: b.migrate},
	}

	if b.opts.Git {
		steps = append(steps, Step{Name: StepInitGit, Run: b.initGit})
	}
	if b.opts.Launch && b.launcher != nil {
		steps = append(steps, Step{Name: StepLaunchServer, Run: b.launchServer, Optional: true})
	}

	return steps
}
