package scaffold

import (
	"bytes"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gfanton/djinit/internal/settings"
	"github.com/google/uuid"
)

// Record is the outcome of a scaffolding run, persisted in the project root.
type Record struct {
	ID        string    `toml:"id"`
	Name      string    `toml:"name"`
	Root      string    `toml:"root"`
	Started   time.Time `toml:"started"`
	Finished  time.Time `toml:"finished"`
	Completed []string  `toml:"completed"`
	Failed    string    `toml:"failed,omitempty"`
	Error     string    `toml:"error,omitempty"`
	Warnings  []string  `toml:"warnings,omitempty"`
}

// NewRecord builds the record of a finished pipeline.
func NewRecord(name, root string, started, finished time.Time, report *Report) *Record {
	r := &Record{
		ID:        uuid.NewString(),
		Name:      name,
		Root:      root,
		Started:   started,
		Finished:  finished,
		Completed: append([]string{}, report.Completed...),
		Failed:    report.Failed(),
	}
	if report.Err != nil {
		r.Error = report.Err.Error()
	}
	for _, w := range report.Warnings {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %v", w.Step, w.Err))
	}
	return r
}

// Succeeded reports whether the run went through every step.
func (r *Record) Succeeded() bool {
	return r.Failed == ""
}

// WriteRecord writes r to path as TOML.
func WriteRecord(path string, r *Record) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(r); err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	if err := settings.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// ReadRecord reads the record at path.
func ReadRecord(path string) (*Record, error) {
	var r Record
	if _, err := toml.DecodeFile(path, &r); err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", path, err)
	}
	return &r, nil
}
