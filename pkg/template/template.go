// Package template holds the files djinit writes into a new project that
// startproject does not generate.
package template

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/gfanton/djinit/internal/project"
)

const ext = ".tmpl"

// Template names, also the base name of the rendered file except for
// GitIgnore, written as .gitignore.
const (
	LocalSettings = "local.py"
	ProdSettings  = "prod.py"
	ServerScript  = project.ServerScript
	GitIgnore     = "gitignore"
)

// SettingsVariants are the modules written next to settings.py, in order.
var SettingsVariants = []string{LocalSettings, ProdSettings}

//go:embed *.tmpl
var files embed.FS

var templates = template.Must(template.New("djinit").ParseFS(files, "*"+ext))

// Data holds the values available to the project templates.
type Data struct {
	Name string // Project name
	Root string // Absolute project root
	Venv string // Virtual environment directory name
}

// DataFor returns the template values of p.
func DataFor(p *project.Project) Data {
	return Data{Name: p.Name, Root: p.Path, Venv: p.Venv}
}

// Names lists the embedded templates, sorted.
func Names() []string {
	var names []string
	for _, t := range templates.Templates() {
		if name := t.Name(); strings.HasSuffix(name, ext) {
			names = append(names, strings.TrimSuffix(name, ext))
		}
	}
	sort.Strings(names)
	return names
}

// Render renders the named template for p.
func Render(name string, p *project.Project) (string, error) {
	t := templates.Lookup(name + ext)
	if t == nil {
		return "", fmt.Errorf("unknown template %q", name)
	}

	var buf strings.Builder
	if err := t.Execute(&buf, DataFor(p)); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}
