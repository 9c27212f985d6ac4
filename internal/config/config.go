package config

import (
	"flag"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/fftoml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// EnvPrefix is the prefix of the environment variables read by Load.
	EnvPrefix = "DJINIT"

	DefaultVenv         = "entorno"
	DefaultDependencies = "django,pillow"
	DefaultLanguage     = "es-ar"
	DefaultTimeZone     = "America/Argentina/Buenos_Aires"
	DefaultTerminal     = "gnome-terminal"
)

// Config holds the global configuration for djinit.
type Config struct {
	ConfigFile string
	Debug      bool

	// BaseDir is the directory the project root is created in.
	BaseDir string
	Python  string
	Venv    string
	Deps    string

	LanguageCode string
	TimeZone     string
	Terminal     string

	Git       bool
	GitAuthor string
	GitEmail  string

	Launch     bool
	Pause      bool
	Cleanup    bool
	StrictName bool
}

// NewConfig creates a new configuration with default values.
func NewConfig() (*Config, error) {
	u, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	return &Config{
		ConfigFile:   filepath.Join(u.HomeDir, ".djinitrc"),
		Python:       defaultPython(runtime.GOOS),
		Venv:         DefaultVenv,
		Deps:         DefaultDependencies,
		LanguageCode: DefaultLanguage,
		TimeZone:     DefaultTimeZone,
		Terminal:     DefaultTerminal,
		Git:          true,
		GitAuthor:    "djinit",
		GitEmail:     "djinit@localhost",
		Launch:       true,
		Pause:        true,
	}, nil
}

// Load loads configuration from flags, environment variables, and config file.
func (c *Config) Load(args []string) error {
	fs := c.FlagSet("djinit", flag.ExitOnError)

	err := ff.Parse(fs, args,
		ff.WithEnvVarPrefix(EnvPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithAllowMissingConfigFile(true),
		ff.WithConfigFileParser(fftoml.Parser),
	)
	if err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	c.ConfigFile = expandPath(c.ConfigFile)
	return c.ResolveBaseDir()
}

// FlagSet returns a flag set bound to the configuration fields, using the
// current values as defaults.
func (c *Config) FlagSet(name string, handling flag.ErrorHandling) *flag.FlagSet {
	fs := flag.NewFlagSet(name, handling)
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "configuration file path")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "enable debug logging")
	fs.StringVar(&c.BaseDir, "dir", c.BaseDir, "directory the project is created in (default: current directory)")
	fs.StringVar(&c.Python, "python", c.Python, "python interpreter used to create the virtual environment")
	fs.StringVar(&c.Venv, "venv", c.Venv, "virtual environment directory name")
	fs.StringVar(&c.Deps, "deps", c.Deps, "comma separated list of packages to install")
	fs.StringVar(&c.LanguageCode, "language", c.LanguageCode, "LANGUAGE_CODE written to settings.py")
	fs.StringVar(&c.TimeZone, "timezone", c.TimeZone, "TIME_ZONE written to settings.py")
	fs.StringVar(&c.Terminal, "terminal", c.Terminal, "terminal emulator used on linux (or \"auto\")")
	fs.BoolVar(&c.Git, "git", c.Git, "initialise a git repository with an initial commit")
	fs.StringVar(&c.GitAuthor, "git-author", c.GitAuthor, "author name of the initial commit")
	fs.StringVar(&c.GitEmail, "git-email", c.GitEmail, "author email of the initial commit")
	fs.BoolVar(&c.Launch, "launch", c.Launch, "start the development server in a new terminal")
	fs.BoolVar(&c.Pause, "pause", c.Pause, "wait for enter before exiting")
	fs.BoolVar(&c.Cleanup, "cleanup", c.Cleanup, "remove the project directory when a step fails")
	fs.BoolVar(&c.StrictName, "strict-name", c.StrictName, "reject names that are not valid python identifiers")
	return fs
}

// Dependencies returns the packages to install, in order.
func (c *Config) Dependencies() []string {
	return splitList(c.Deps)
}

// Logger creates a console logger based on the debug configuration.
func (c *Config) Logger() *zap.Logger {
	level := zapcore.InfoLevel
	if c.Debug {
		level = zapcore.DebugLevel
	}

	encodeConfig := zap.NewDevelopmentEncoderConfig()
	encodeConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encodeConfig.EncodeTime = nil
	consoleEncoder := zapcore.NewConsoleEncoder(encodeConfig)
	core := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), level)
	logger := zap.New(core)

	logger.Debug("logger initialised")
	return logger
}

// ResolveBaseDir makes BaseDir absolute, defaulting to the working directory.
// The directory must already exist. It runs again whenever a subcommand flag
// set rebinds -dir after Load.
func (c *Config) ResolveBaseDir() error {
	if c.BaseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		c.BaseDir = wd
	}

	abs, err := filepath.Abs(expandPath(c.BaseDir))
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", abs)
	}

	c.BaseDir = abs
	return nil
}

func defaultPython(goos string) string {
	if goos == "windows" {
		return "python"
	}
	return "python3"
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// expandPath expands environment variables and ~ in paths.
func expandPath(path string) string {
	path = os.ExpandEnv(path)
	if strings.HasPrefix(path, "~") {
		if u, err := user.Current(); err == nil {
			return strings.Replace(path, "~", u.HomeDir, 1)
		}
	}
	return path
}
