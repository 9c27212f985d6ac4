package scaffold

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Step names, in execution order.
const (
	StepValidateName     = "validate-name"
	StepCreateRoot       = "create-root"
	StepCreateVenv       = "create-venv"
	StepInstallDeps      = "install-dependencies"
	StepStartProject     = "start-project"
	StepCreateDirs       = "create-directories"
	StepSplitSettings    = "split-settings"
	StepPatchEntrypoints = "patch-entrypoints"
	StepRewriteSettings  = "rewrite-settings"
	StepFreeze           = "freeze-requirements"
	StepMigrate          = "migrate"
	StepInitGit          = "init-git"
	StepLaunchServer     = "launch-server"
)

// Step is a single operation of the pipeline.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
	// Optional steps report their failure as a warning and let the
	// pipeline continue.
	Optional bool
}

// StepError is returned when a step fails.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStep returns the name of the failed step wrapped in err, if any.
func FailedStep(err error) string {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step
	}
	return ""
}

// Warning is an optional step failure.
type Warning struct {
	Step string
	Err  error
}

// Report describes a pipeline execution.
type Report struct {
	// Completed lists the steps that succeeded, in order.
	Completed []string
	Warnings  []Warning
	// Err is the *StepError that stopped the pipeline, nil on success.
	Err error
}

// Done reports whether step completed.
func (r *Report) Done(step string) bool {
	for _, name := range r.Completed {
		if name == step {
			return true
		}
	}
	return false
}

// Failed returns the name of the step that stopped the pipeline.
func (r *Report) Failed() string {
	return FailedStep(r.Err)
}

// Pipeline runs steps in order and stops at the first failing one.
type Pipeline struct {
	logger *zap.Logger
	steps  []Step
}

// NewPipeline creates a pipeline over steps.
func NewPipeline(logger *zap.Logger, steps ...Step) *Pipeline {
	return &Pipeline{logger: logger, steps: steps}
}

// Run executes the steps. It never retries; a canceled context fails the
// step that was running, or the next one to start.
func (p *Pipeline) Run(ctx context.Context) *Report {
	report := &Report{}

	for _, step := range p.steps {
		p.logger.Debug("starting step", zap.String("step", step.Name))

		err := ctx.Err()
		if err == nil {
			err = step.Run(ctx)
		}

		if err == nil {
			report.Completed = append(report.Completed, step.Name)
			p.logger.Debug("step completed", zap.String("step", step.Name))
			continue
		}

		if step.Optional && ctx.Err() == nil {
			p.logger.Warn("optional step failed", zap.String("step", step.Name), zap.Error(err))
			report.Warnings = append(report.Warnings, Warning{Step: step.Name, Err: err})
			continue
		}

		p.logger.Debug("step failed", zap.String("step", step.Name), zap.Error(err))
		report.Err = &StepError{Step: step.Name, Err: err}
		return report
	}

	return report
}
