// Package launcher opens a new terminal window running the django
// development server of a scaffolded project.
package launcher

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/gfanton/djinit/internal/project"
	"github.com/gfanton/djinit/internal/settings"
	"github.com/gfanton/djinit/pkg/template"
)

// Auto selects the first supported terminal emulator found on PATH.
const Auto = "auto"

// Command is a process that opens the terminal.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// String returns the command line for display.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Launcher builds the command opening a terminal that runs the server.
type Launcher interface {
	// Name identifies the strategy.
	Name() string
	// Prepare writes any file the launch needs and returns the command.
	Prepare(p *project.Project) (Command, error)
}

// LookPathFunc resolves an executable on PATH.
type LookPathFunc func(file string) (string, error)

// New selects the launcher for goos. terminal is only used on systems that
// go through a terminal emulator; it is either a supported emulator name or
// Auto. A nil lookPath defaults to exec.LookPath.
func New(goos, terminal string, lookPath LookPathFunc) (Launcher, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	switch goos {
	case "windows":
		return &Windows{}, nil
	case "darwin":
		return &Darwin{}, nil
	}

	if terminal == "" || terminal == Auto {
		for _, t := range Terminals {
			if _, err := lookPath(t.Binary); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("no supported terminal emulator found (tried %s)", strings.Join(TerminalNames(), ", "))
	}

	for _, t := range Terminals {
		if t.Binary == terminal {
			return t, nil
		}
	}

	if s := Suggest(terminal, TerminalNames()); s != "" {
		return nil, fmt.Errorf("unknown terminal %q, did you mean %q?", terminal, s)
	}
	return nil, fmt.Errorf("unknown terminal %q (supported: %s)", terminal, strings.Join(TerminalNames(), ", "))
}

// Windows writes a batch script and starts it in a new console.
type Windows struct{}

func (w *Windows) Name() string { return "cmd" }

func (w *Windows) Prepare(p *project.Project) (Command, error) {
	script, err := template.Render(template.ServerScript, p)
	if err != nil {
		return Command{}, err
	}

	path := p.ServerScript()
	if err := settings.WriteFile(path, []byte(script), 0644); err != nil {
		return Command{}, fmt.Errorf("failed to write %s: %w", path, err)
	}

	// start takes its first quoted argument as the window title
	return Command{
		Name: "cmd",
		Args: []string{"/c", "start", "", "cmd", "/c", path},
		Dir:  p.Path,
	}, nil
}

// Darwin asks Terminal.app to run the server through osascript.
type Darwin struct{}

func (d *Darwin) Name() string { return "osascript" }

func (d *Darwin) Prepare(p *project.Project) (Command, error) {
	script := fmt.Sprintf(`cd "%s"; source %s/bin/activate; python manage.py runserver`, p.Path, p.Venv)
	return Command{
		Name: "osascript",
		Args: []string{"-e", fmt.Sprintf(`tell app "Terminal" to do script "%s"`, appleScriptEscape(script))},
		Dir:  p.Path,
	}, nil
}

func appleScriptEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// ServerScript is the shell command run inside a unix terminal emulator. The
// trailing shell keeps the window open once the server stops.
func ServerScript(venv string) string {
	return fmt.Sprintf("source %s/bin/activate; python manage.py runserver; exec bash", venv)
}

// Terminal is a unix terminal emulator.
type Terminal struct {
	Binary string
	args   func(dir, script string) []string
}

func (t *Terminal) Name() string { return t.Binary }

func (t *Terminal) Prepare(p *project.Project) (Command, error) {
	return Command{
		Name: t.Binary,
		Args: t.args(p.Path, ServerScript(p.Venv)),
		Dir:  p.Path,
	}, nil
}

// Terminals lists the supported emulators, in Auto preference order.
var Terminals = []*Terminal{
	{Binary: "gnome-terminal", args: func(dir, script string) []string {
		return []string{"--working-directory=" + dir, "--", "bash", "-c", script}
	}},
	{Binary: "konsole", args: func(dir, script string) []string {
		return []string{"--workdir", dir, "-e", "bash", "-c", script}
	}},
	{Binary: "xfce4-terminal", args: func(dir, script string) []string {
		return []string{"--working-directory", dir, "-x", "bash", "-c", script}
	}},
	{Binary: "kitty", args: func(dir, script string) []string {
		return []string{"--directory", dir, "bash", "-c", script}
	}},
	{Binary: "alacritty", args: func(dir, script string) []string {
		return []string{"--working-directory", dir, "-e", "bash", "-c", script}
	}},
	{Binary: "xterm", args: func(_, script string) []string {
		return []string{"-e", "bash", "-c", script}
	}},
}

// TerminalNames returns the names of the supported emulators.
func TerminalNames() []string {
	names := make([]string, len(Terminals))
	for i, t := range Terminals {
		names[i] = t.Binary
	}
	return names
}
