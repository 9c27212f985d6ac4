package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
)

const (
	// ConfigPackage is the subpackage holding the settings variants.
	ConfigPackage = "configuraciones"
	// RecordFile is the name of the run record written in the project root.
	RecordFile = ".djinit.toml"
	// ServerScript is the batch file generated on windows to start the server.
	ServerScript = "start_server.bat"
)

// AuxDirs are the directories created next to manage.py.
var AuxDirs = []string{"apps", "static", "media", "templates"}

var (
	// ErrEmptyName is returned for an empty project name.
	ErrEmptyName = errors.New("project name cannot be empty")
	// ErrNameHasSpace is returned when the project name contains a space.
	ErrNameHasSpace = errors.New("project name cannot contain spaces")
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reserved holds python keywords and module names startproject refuses.
var reserved = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
	"django": true, "test": true, "site": true,
}

// ValidateName checks a project name. Only emptiness and spaces are rejected
// unless strict is set, in which case the name must also be a usable python
// package name.
func ValidateName(name string, strict bool) error {
	if name == "" {
		return ErrEmptyName
	}
	if strings.Contains(name, " ") {
		return ErrNameHasSpace
	}
	if !strict {
		return nil
	}

	if !identifier.MatchString(name) {
		return fmt.Errorf("project name '%s' is not a valid python identifier", name)
	}
	if reserved[name] {
		return fmt.Errorf("project name '%s' is reserved", name)
	}
	return nil
}

// Project is a django project scaffolded under a base directory.
type Project struct {
	Name string
	// Path is the project root, <base>/<name>.
	Path string
	// Venv is the virtual environment directory name inside Path.
	Venv string
	// GOOS selects the virtual environment layout.
	GOOS string
}

// ParseProject validates name and derives the project rooted in baseDir.
func ParseProject(baseDir, venv, goos, name string, strict bool) (*Project, error) {
	if err := ValidateName(name, strict); err != nil {
		return nil, err
	}
	if venv == "" {
		return nil, fmt.Errorf("virtual environment name is required")
	}

	return &Project{
		Name: name,
		Path: filepath.Join(baseDir, name),
		Venv: venv,
		GOOS: goos,
	}, nil
}

// String returns the project name.
func (p *Project) String() string {
	return p.Name
}

// Exists reports whether the project root already exists.
func (p *Project) Exists() bool {
	_, err := os.Lstat(p.Path)
	return err == nil
}

// VenvDir returns the virtual environment directory.
func (p *Project) VenvDir() string {
	return filepath.Join(p.Path, p.Venv)
}

// VenvBin returns the directory holding the virtual environment executables.
func (p *Project) VenvBin() string {
	if p.GOOS == "windows" {
		return filepath.Join(p.VenvDir(), "Scripts")
	}
	return filepath.Join(p.VenvDir(), "bin")
}

func (p *Project) executable(name string) string {
	if p.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(p.VenvBin(), name)
}

// Python returns the virtual environment interpreter.
func (p *Project) Python() string { return p.executable("python") }

// Pip returns the virtual environment package installer.
func (p *Project) Pip() string { return p.executable("pip") }

// DjangoAdmin returns the virtual environment django-admin.
func (p *Project) DjangoAdmin() string { return p.executable("django-admin") }

// PackageDir returns the generated python package, <root>/<name>.
func (p *Project) PackageDir() string {
	return filepath.Join(p.Path, p.Name)
}

// GeneratedSettings returns the settings.py written by startproject.
func (p *Project) GeneratedSettings() string {
	return filepath.Join(p.PackageDir(), "settings.py")
}

// ConfigDir returns the settings subpackage.
func (p *Project) ConfigDir() string {
	return filepath.Join(p.PackageDir(), ConfigPackage)
}

// Settings returns the relocated settings.py.
func (p *Project) Settings() string {
	return filepath.Join(p.ConfigDir(), "settings.py")
}

// SettingsModule returns the dotted module of a settings variant
// ("settings", "local" or "prod").
func (p *Project) SettingsModule(variant string) string {
	return p.Name + "." + ConfigPackage + "." + variant
}

// ManagePy returns the project entry point.
func (p *Project) ManagePy() string {
	return filepath.Join(p.Path, "manage.py")
}

// WSGI returns the generated wsgi.py.
func (p *Project) WSGI() string {
	return filepath.Join(p.PackageDir(), "wsgi.py")
}

// ASGI returns the generated asgi.py.
func (p *Project) ASGI() string {
	return filepath.Join(p.PackageDir(), "asgi.py")
}

// Requirements returns the dependency manifest path.
func (p *Project) Requirements() string {
	return filepath.Join(p.Path, "requirements.txt")
}

// Record returns the run record path.
func (p *Project) Record() string {
	return filepath.Join(p.Path, RecordFile)
}

// ServerScript returns the windows server start script path.
func (p *Project) ServerScript() string {
	return filepath.Join(p.Path, ServerScript)
}

// GitDir returns the path to the .git directory.
func (p *Project) GitDir() string {
	return filepath.Join(p.Path, ".git")
}

// OpenRepository opens the Git repository.
func (p *Project) OpenRepository() (*git.Repository, error) {
	return git.PlainOpen(p.Path)
}

// GitStatus represents the Git status of a project.
type GitStatus string

const (
	// GitStatusValid indicates a valid Git repository.
	GitStatusValid GitStatus = "valid"
	// GitStatusInvalid indicates an invalid Git repository.
	GitStatusInvalid GitStatus = "invalid"
	// GitStatusNotGit indicates the directory is not a Git repository.
	GitStatusNotGit GitStatus = "not a git"
)

// GetGitStatus returns the Git status of the project.
func (p *Project) GetGitStatus() GitStatus {
	_, err := p.OpenRepository()
	switch {
	case err == nil:
		return GitStatusValid
	case errors.Is(err, git.ErrRepositoryNotExists):
		return GitStatusNotGit
	default:
		return GitStatusInvalid
	}
}
