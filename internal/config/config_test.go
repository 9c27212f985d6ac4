package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() failed: %v", err)
	}

	if cfg == nil {
		t.Fatal("NewConfig() returned nil config")
	}

	if !strings.Contains(cfg.ConfigFile, ".djinitrc") {
		t.Errorf("ConfigFile should contain '.djinitrc', got: %s", cfg.ConfigFile)
	}

	if cfg.Venv != "entorno" {
		t.Errorf("Venv = %q, want %q", cfg.Venv, "entorno")
	}

	if cfg.Debug {
		t.Error("Debug should default to false")
	}

	if !cfg.Git || !cfg.Launch || !cfg.Pause {
		t.Error("Git, Launch and Pause should default to true")
	}

	if cfg.Cleanup {
		t.Error("Cleanup should default to false")
	}

	want := []string{"django", "pillow"}
	if got := cfg.Dependencies(); !reflect.DeepEqual(got, want) {
		t.Errorf("Dependencies() = %v, want %v", got, want)
	}
}

func TestConfigLoad(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    func(*Config) bool
		wantErr bool
	}{
		{
			name: "empty args",
			args: []string{},
			want: func(c *Config) bool {
				return !c.Debug && c.LanguageCode == DefaultLanguage
			},
		},
		{
			name: "debug flag",
			args: []string{"--debug"},
			want: func(c *Config) bool {
				return c.Debug
			},
		},
		{
			name: "stops at subcommand",
			args: []string{"-git=false", "new", "mi_blog"},
			want: func(c *Config) bool {
				return !c.Git
			},
		},
		{
			name: "deps and locale",
			args: []string{"-deps", "django, djangorestframework ,", "-language", "en-us", "-timezone", "UTC"},
			want: func(c *Config) bool {
				return reflect.DeepEqual(c.Dependencies(), []string{"django", "djangorestframework"}) &&
					c.LanguageCode == "en-us" && c.TimeZone == "UTC"
			},
		},
		{
			name:    "missing base dir",
			args:    []string{"-dir", "/does/not/exist/djinit"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewConfig()
			if err != nil {
				t.Fatalf("NewConfig() failed: %v", err)
			}

			tempDir := t.TempDir()
			cfg.BaseDir = tempDir
			cfg.ConfigFile = filepath.Join(tempDir, ".djinitrc")

			err = cfg.Load(tt.args)
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && !tt.want(cfg) {
				t.Errorf("Load() result doesn't match expectations for args: %v", tt.args)
			}
		})
	}
}

func TestResolveBaseDir(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	t.Setenv("DJINIT_TEST_BASE", base)

	tests := []struct {
		name    string
		dir     string
		want    string
		wantErr bool
	}{
		{name: "absolute", dir: base, want: base},
		{name: "environment", dir: "$DJINIT_TEST_BASE", want: base},
		{name: "cleaned", dir: base + "/./", want: base},
		{name: "missing", dir: filepath.Join(base, "missing"), wantErr: true},
		{name: "not a directory", dir: file, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{BaseDir: tt.dir}
			err := cfg.ResolveBaseDir()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveBaseDir() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg.BaseDir != tt.want {
				t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, tt.want)
			}
		})
	}

	t.Run("relative", func(t *testing.T) {
		cfg := &Config{BaseDir: "."}
		if err := cfg.ResolveBaseDir(); err != nil {
			t.Fatalf("ResolveBaseDir() failed: %v", err)
		}
		if !filepath.IsAbs(cfg.BaseDir) {
			t.Errorf("BaseDir = %q, want an absolute path", cfg.BaseDir)
		}
	})
}

func TestConfigLoadFile(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, ".djinitrc")
	content := "terminal = \"konsole\"\nlaunch = false\ndeps = \"django\"\n"
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() failed: %v", err)
	}
	cfg.BaseDir = tempDir

	if err := cfg.Load([]string{"-config", configFile}); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Terminal != "konsole" {
		t.Errorf("Terminal = %q, want konsole", cfg.Terminal)
	}
	if cfg.Launch {
		t.Error("Launch should be false from config file")
	}
	if got := cfg.Dependencies(); !reflect.DeepEqual(got, []string{"django"}) {
		t.Errorf("Dependencies() = %v, want [django]", got)
	}
}

func TestConfigWithEnvironmentVariables(t *testing.T) {
	tempDir := t.TempDir()

	t.Setenv("DJINIT_DIR", tempDir)
	t.Setenv("DJINIT_DEBUG", "true")
	t.Setenv("DJINIT_PYTHON", "/usr/bin/python3.12")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() failed: %v", err)
	}
	cfg.ConfigFile = filepath.Join(tempDir, ".djinitrc")

	if err := cfg.Load([]string{}); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if !cfg.Debug {
		t.Errorf("Expected Debug=true from env var, got %t", cfg.Debug)
	}

	if cfg.Python != "/usr/bin/python3.12" {
		t.Errorf("Expected Python from env var, got %s", cfg.Python)
	}

	if cfg.BaseDir != tempDir {
		t.Errorf("Expected BaseDir=%s from env var, got %s", tempDir, cfg.BaseDir)
	}
}

func TestConfigLogger(t *testing.T) {
	for _, debug := range []bool{false, true} {
		cfg := &Config{Debug: debug}
		logger := cfg.Logger()
		if logger == nil {
			t.Fatal("Logger() returned nil")
		}
		logger.Info("test message")
		logger.Debug("debug message")
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/test/home")

	if got := expandPath("/absolute/path"); got != "/absolute/path" {
		t.Errorf("expandPath(/absolute/path) = %s", got)
	}

	if got := expandPath("$HOME/Documents"); got != "/test/home/Documents" {
		t.Errorf("expandPath($HOME/Documents) = %s, want /test/home/Documents", got)
	}

	result := expandPath("~/Documents")
	if strings.Contains(result, "~") || !strings.HasSuffix(result, "Documents") {
		t.Errorf("expandPath(~/Documents) = %s", result)
	}
}

func TestDefaultPython(t *testing.T) {
	if got := defaultPython("windows"); got != "python" {
		t.Errorf("defaultPython(windows) = %s", got)
	}
	if got := defaultPython("linux"); got != "python3" {
		t.Errorf("defaultPython(linux) = %s", got)
	}
}
