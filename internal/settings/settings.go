// Package settings rewrites the files generated by django-admin startproject.
//
// Edits are literal text substitutions on physical lines. Lines that no rule
// matches are copied unchanged, including their line endings.
package settings

import (
	"fmt"
	"os"
	"strings"
)

const (
	DefaultLanguageCode = "es-ar"
	DefaultTimeZone     = "America/Argentina/Buenos_Aires"
)

// Appendix is appended to every rewritten settings file.
const Appendix = "\n# --- Additional settings ---\n" +
	"STATIC_URL = '/static/'\n" +
	"STATICFILES_DIRS = [os.path.join(BASE_DIR, 'static')]\n" +
	"MEDIA_URL = '/media/'\n" +
	"MEDIA_ROOT = os.path.join(BASE_DIR, 'media')\n"

// Markers matched literally inside settings lines.
const (
	TemplateDirsMarker = "'DIRS': [],"
	DatabaseNameMarker = "'NAME': BASE_DIR / 'db.sqlite3',"
	pathlibImport      = "from pathlib import Path"
	osImport           = "import os"
)

// Options holds the values substituted into settings.py.
type Options struct {
	LanguageCode string
	TimeZone     string
}

func (o Options) withDefaults() Options {
	if o.LanguageCode == "" {
		o.LanguageCode = DefaultLanguageCode
	}
	if o.TimeZone == "" {
		o.TimeZone = DefaultTimeZone
	}
	return o
}

// Rule replaces a whole line when Match reports true.
type Rule struct {
	Name    string
	Match   func(line string) bool
	Replace string
}

func hasPrefix(prefix string) func(string) bool {
	return func(line string) bool {
		return strings.HasPrefix(strings.TrimSpace(line), prefix)
	}
}

func contains(marker string) func(string) bool {
	return func(line string) bool {
		return strings.Contains(line, marker)
	}
}

// withEnding gives replacement the line ending of line when line ends in
// CRLF. Replacements are written with LF.
func withEnding(replacement, line string) string {
	if strings.HasSuffix(line, "\r\n") {
		return strings.TrimSuffix(replacement, "\n") + "\r\n"
	}
	return replacement
}

// crlf reports whether the first line ends in CRLF.
func crlf(lines []string) bool {
	return len(lines) > 0 && strings.HasSuffix(lines[0], "\r\n")
}

// Rules returns the settings.py rules in priority order.
func Rules(opts Options) []Rule {
	opts = opts.withDefaults()
	return []Rule{
		{
			Name:    "base_dir",
			Match:   hasPrefix("BASE_DIR"),
			Replace: "BASE_DIR = os.path.dirname(os.path.dirname(os.path.dirname(os.path.abspath(__file__))))\n",
		},
		{
			Name:    "template_dirs",
			Match:   contains(TemplateDirsMarker),
			Replace: "        'DIRS': [os.path.join(BASE_DIR, 'templates')],\n",
		},
		{
			Name:    "database_name",
			Match:   contains(DatabaseNameMarker),
			Replace: "        'NAME': os.path.join(BASE_DIR, 'db.sqlite3'),\n",
		},
		{
			Name:    "language_code",
			Match:   hasPrefix("LANGUAGE_CODE"),
			Replace: fmt.Sprintf("LANGUAGE_CODE = '%s'\n", opts.LanguageCode),
		},
		{
			Name:    "time_zone",
			Match:   hasPrefix("TIME_ZONE"),
			Replace: fmt.Sprintf("TIME_ZONE = '%s'\n", opts.TimeZone),
		},
	}
}

// SplitLines splits content into physical lines, keeping line endings.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// ApplyRules replaces each line with the first matching rule, keeping the
// line's CRLF ending. The result has the same number of lines in the same
// order.
func ApplyRules(lines []string, rules []Rule) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		replaced := false
		for _, rule := range rules {
			if rule.Match(line) {
				out = append(out, withEnding(rule.Replace, line))
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, line)
		}
	}
	return out
}

// ensureOSImport swaps the pathlib import for "import os" when the file does
// not import os yet.
func ensureOSImport(lines []string) []string {
	for _, line := range lines {
		if strings.Contains(line, osImport) {
			return lines
		}
	}

	out := make([]string, len(lines))
	copy(out, lines)
	for i, line := range out {
		if strings.Contains(line, pathlibImport) {
			out[i] = withEnding(osImport+"\n", line)
			break
		}
	}
	return out
}

// Rewrite returns the rewritten settings.py content, Appendix included. A
// CRLF file stays CRLF, the Appendix included.
func Rewrite(content string, opts Options) string {
	lines := ensureOSImport(SplitLines(content))
	lines = ApplyRules(lines, Rules(opts))

	appendix := Appendix
	if crlf(lines) {
		appendix = strings.ReplaceAll(appendix, "\n", "\r\n")
	}
	return strings.Join(lines, "") + appendix
}

// RewriteFile rewrites the settings file at path in place.
func RewriteFile(path string, opts Options) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}

	if err := WriteFile(path, []byte(Rewrite(string(content), opts)), 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// SettingsModuleLine is the line startproject writes to select the settings.
func SettingsModuleLine(module string) string {
	return fmt.Sprintf("os.environ.setdefault('DJANGO_SETTINGS_MODULE', '%s')", module)
}

// Patch replaces every occurrence of find in content. It reports whether
// anything was replaced; content is returned unchanged otherwise.
func Patch(content, find, replace string) (string, bool) {
	if find == "" || !strings.Contains(content, find) {
		return content, false
	}
	return strings.ReplaceAll(content, find, replace), true
}

// PatchFile applies Patch to the file at path. The file is only written
// when something was replaced.
func PatchFile(path, find, replace string) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	patched, changed := Patch(string(content), find, replace)
	if !changed {
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	if err := WriteFile(path, []byte(patched), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

// PatchSettingsModule points the DJANGO_SETTINGS_MODULE default of the
// entry point at path from one module to another.
func PatchSettingsModule(path, from, to string) (bool, error) {
	return PatchFile(path, SettingsModuleLine(from), SettingsModuleLine(to))
}
