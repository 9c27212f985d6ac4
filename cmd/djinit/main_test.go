package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gfanton/djinit/internal/config"
	"github.com/gfanton/djinit/internal/project"
	"github.com/gfanton/djinit/internal/scaffold"
	"go.uber.org/zap"
)

func TestReadName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		args  []string
		want  string
	}{
		{name: "argument", args: []string{"mi_blog"}, want: "mi_blog"},
		{name: "prompt", input: "mi_blog\n", want: "mi_blog"},
		{name: "prompt crlf", input: "mi_blog\r\n", want: "mi_blog"},
		{name: "prompt eof", input: "mi_blog", want: "mi_blog"},
		{name: "empty", input: "\n", want: ""},
		{name: "keeps spaces", input: "mi blog\n", want: "mi blog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := readName(bufio.NewReader(strings.NewReader(tt.input)), &out, tt.args)
			if err != nil {
				t.Fatalf("readName() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("readName() = %q, want %q", got, tt.want)
			}

			prompted := strings.Contains(out.String(), namePrompt)
			if prompted != (len(tt.args) == 0) {
				t.Errorf("prompted = %v with args %v", prompted, tt.args)
			}
		})
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() failed: %v", err)
	}
	cfg.BaseDir = t.TempDir()
	cfg.Launch = false
	cfg.Pause = false
	return cfg
}

func TestRunNewInvalidName(t *testing.T) {
	for _, input := range []string{"\n", "mi blog\n"} {
		t.Run(strings.TrimSpace(input), func(t *testing.T) {
			cfg := testConfig(t)
			var out bytes.Buffer

			err := runNew(context.Background(), zap.NewNop(), cfg, strings.NewReader(input), &out, nil)
			if !errors.Is(err, scaffold.ErrInvalidName) {
				t.Fatalf("runNew() error = %v, want ErrInvalidName", err)
			}

			entries, err := os.ReadDir(cfg.BaseDir)
			if err != nil {
				t.Fatalf("ReadDir() failed: %v", err)
			}
			if len(entries) != 0 {
				t.Errorf("nothing should be created, got %v", entries)
			}
		})
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir() failed: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestRunNewRelativeDirAfterSubcommand(t *testing.T) {
	work := t.TempDir()
	if err := os.Mkdir(filepath.Join(work, "rel"), 0755); err != nil {
		t.Fatalf("failed to create base dir: %v", err)
	}
	chdir(t, work)

	cfg := testConfig(t)
	cmd := newCommand(zap.NewNop(), cfg)
	if err := cmd.FlagSet.Parse([]string{"-dir", "rel", "mi blog"}); err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if cfg.BaseDir != "rel" {
		t.Fatalf("BaseDir = %q after parse, want rel", cfg.BaseDir)
	}

	// the invalid name stops the run before any command is executed
	err := runNew(context.Background(), zap.NewNop(), cfg, strings.NewReader(""), &bytes.Buffer{}, cmd.FlagSet.Args())
	if !errors.Is(err, scaffold.ErrInvalidName) {
		t.Fatalf("runNew() error = %v, want ErrInvalidName", err)
	}

	if !filepath.IsAbs(cfg.BaseDir) {
		t.Fatalf("BaseDir = %q, want an absolute path", cfg.BaseDir)
	}
	got, err := os.Stat(cfg.BaseDir)
	if err != nil {
		t.Fatalf("Stat() failed: %v", err)
	}
	want, err := os.Stat(filepath.Join(work, "rel"))
	if err != nil {
		t.Fatalf("Stat() failed: %v", err)
	}
	if !os.SameFile(got, want) {
		t.Errorf("BaseDir = %q, want %s", cfg.BaseDir, filepath.Join(work, "rel"))
	}
}

func TestRunNewMissingDirAfterSubcommand(t *testing.T) {
	cfg := testConfig(t)
	cfg.BaseDir = filepath.Join(cfg.BaseDir, "missing")

	var out bytes.Buffer
	err := runNew(context.Background(), zap.NewNop(), cfg, strings.NewReader("mi_blog\n"), &out, nil)
	if err == nil {
		t.Fatal("runNew() should fail for a missing base directory")
	}
	if strings.Contains(out.String(), namePrompt) {
		t.Error("the base directory should be checked before asking for a name")
	}
}

func TestRunNewTooManyArgs(t *testing.T) {
	cfg := testConfig(t)
	err := runNew(context.Background(), zap.NewNop(), cfg, strings.NewReader(""), &bytes.Buffer{}, []string{"a", "b"})
	if err == nil {
		t.Error("runNew() should fail with two names")
	}
}

func TestRunNewUnknownTerminal(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("no terminal emulator selection on " + runtime.GOOS)
	}

	cfg := testConfig(t)
	cfg.Launch = true
	cfg.Terminal = "gnome"

	var out bytes.Buffer
	err := runNew(context.Background(), zap.NewNop(), cfg, strings.NewReader("mi_blog\n"), &out, nil)
	if err == nil {
		t.Fatal("runNew() should fail for an unknown terminal")
	}
	if !strings.Contains(err.Error(), "gnome-terminal") {
		t.Errorf("error %q should suggest gnome-terminal", err)
	}
	if strings.Contains(out.String(), namePrompt) {
		t.Error("the terminal should be checked before asking for a name")
	}
}

func TestRunStatus(t *testing.T) {
	root := filepath.Join(t.TempDir(), "mi_blog")
	if err := os.Mkdir(root, 0755); err != nil {
		t.Fatalf("failed to create root: %v", err)
	}

	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	record := &scaffold.Record{
		Name:      "mi_blog",
		Root:      root,
		Started:   started,
		Finished:  started.Add(90 * time.Second),
		Completed: []string{scaffold.StepValidateName, scaffold.StepCreateRoot},
		Failed:    scaffold.StepCreateVenv,
		Error:     "create-venv: python3 exited with status 1",
	}
	if err := scaffold.WriteRecord(filepath.Join(root, project.RecordFile), record); err != nil {
		t.Fatalf("WriteRecord() failed: %v", err)
	}

	var out bytes.Buffer
	if err := runStatus(zap.NewNop(), &out, []string{root}); err != nil {
		t.Fatalf("runStatus() failed: %v", err)
	}

	for _, want := range []string{
		"project:   mi_blog",
		"completed: validate-name, create-root",
		"status:    failed at create-venv",
		"(1m30s)",
		"git:       " + string(project.GitStatusNotGit),
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output should contain %q:\n%s", want, out.String())
		}
	}
}

func TestRunStatusMissingRecord(t *testing.T) {
	if err := runStatus(zap.NewNop(), &bytes.Buffer{}, []string{t.TempDir()}); err == nil {
		t.Error("runStatus() should fail without a run record")
	}
	if err := runStatus(zap.NewNop(), &bytes.Buffer{}, []string{"a", "b"}); err == nil {
		t.Error("runStatus() should fail with two directories")
	}
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	if err := runVersion(&out, &versionConfig{}); err != nil {
		t.Fatalf("runVersion() failed: %v", err)
	}
	if out.String() != buildVersion()+"\n" {
		t.Errorf("runVersion() = %q, want %q", out.String(), buildVersion()+"\n")
	}

	out.Reset()
	if err := runVersion(&out, &versionConfig{verbose: true}); err != nil {
		t.Fatalf("runVersion() failed: %v", err)
	}
	for _, want := range []string{
		"go:        " + runtime.Version(),
		"venv:      entorno",
		"settings:  " + project.ConfigPackage,
		"templates: gitignore, local.py, prod.py, start_server.bat",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("verbose output should contain %q:\n%s", want, out.String())
		}
	}
}
