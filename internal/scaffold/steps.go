package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gfanton/djinit/internal/git"
	"github.com/gfanton/djinit/internal/project"
	"github.com/gfanton/djinit/internal/runner"
	"github.com/gfanton/djinit/internal/settings"
	"github.com/gfanton/djinit/pkg/template"
	"go.uber.org/zap"
)

// InitialCommitMessage is the message of the repository's first commit.
const InitialCommitMessage = "Initial django project"

func (b *build) validateName(ctx context.Context) error {
	o := b.opts
	if err := project.ValidateName(o.Name, o.StrictName); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidName, err)
	}

	p, err := project.ParseProject(o.BaseDir, o.Venv, o.GOOS, o.Name, o.StrictName)
	if err != nil {
		return err
	}

	b.project = p
	return nil
}

func (b *build) createRoot(ctx context.Context) error {
	if b.project.Exists() {
		return fmt.Errorf("%w: %s", ErrRootExists, b.project.Path)
	}

	if err := os.Mkdir(b.project.Path, 0755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrRootExists, b.project.Path)
		}
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	fmt.Fprintf(b.out, "\nCreated project root: %s\n", b.project.Path)
	return nil
}

func (b *build) createVenv(ctx context.Context) error {
	return b.command(ctx, b.opts.Python, []string{"-m", "venv", b.project.Venv}, nil)
}

func (b *build) installDependencies(ctx context.Context) error {
	if len(b.opts.Dependencies) == 0 {
		return fmt.Errorf("no dependencies to install")
	}

	args := append([]string{"install"}, b.opts.Dependencies...)
	return b.command(ctx, b.project.Pip(), args, nil)
}

func (b *build) startProject(ctx context.Context) error {
	args := []string{"startproject", b.project.Name, "."}
	return b.command(ctx, b.project.DjangoAdmin(), args, nil)
}

func (b *build) createDirectories(ctx context.Context) error {
	fmt.Fprintln(b.out, "\nCreating project directories...")
	for _, name := range project.AuxDirs {
		if err := os.Mkdir(filepath.Join(b.project.Path, name), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", name, err)
		}
		fmt.Fprintf(b.out, "-> Created directory: %s\n", name)
	}
	return nil
}

func (b *build) splitSettings(ctx context.Context) error {
	p := b.project
	fmt.Fprintln(b.out, "\nSplitting settings into local and prod variants...")

	if err := os.Mkdir(p.ConfigDir(), 0755); err != nil {
		return fmt.Errorf("failed to create settings package: %w", err)
	}

	if err := os.Rename(p.GeneratedSettings(), p.Settings()); err != nil {
		return fmt.Errorf("failed to move settings: %w", err)
	}
	fmt.Fprintf(b.out, "-> Moved settings.py to %s\n", filepath.Join(p.Name, project.ConfigPackage))

	if err := b.writeFile(filepath.Join(p.ConfigDir(), "__init__.py"), ""); err != nil {
		return err
	}

	for _, variant := range template.SettingsVariants {
		if err := b.renderFile(variant, filepath.Join(p.ConfigDir(), variant)); err != nil {
			return err
		}
	}

	return nil
}

func (b *build) patchEntrypoints(ctx context.Context) error {
	p := b.project
	fmt.Fprintln(b.out, "\nPointing entry points at the settings variants...")

	entrypoints := []struct {
		path     string
		variant  string
		optional bool
	}{
		{path: p.ManagePy(), variant: "local"},
		{path: p.WSGI(), variant: "prod", optional: true},
		{path: p.ASGI(), variant: "prod", optional: true},
	}

	generated := p.Name + ".settings"
	for _, e := range entrypoints {
		changed, err := settings.PatchSettingsModule(e.path, generated, p.SettingsModule(e.variant))
		switch {
		case err != nil && e.optional && errors.Is(err, fs.ErrNotExist):
			b.logger.Debug("entry point not found", zap.String("path", e.path))
			continue
		case err != nil:
			return err
		case !changed:
			b.logger.Warn("settings module reference not found, file left untouched",
				zap.String("path", e.path),
				zap.String("module", generated),
			)
			continue
		}
		fmt.Fprintf(b.out, "-> Modified: %s\n", filepath.Base(e.path))
	}

	return nil
}

func (b *build) rewriteSettings(ctx context.Context) error {
	if err := settings.RewriteFile(b.project.Settings(), b.opts.Settings); err != nil {
		return err
	}
	fmt.Fprintln(b.out, "-> Updated settings.py with project paths and locale")
	return nil
}

func (b *build) freezeRequirements(ctx context.Context) error {
	fmt.Fprintln(b.out, "\nWriting requirements.txt...")

	f, err := os.Create(b.project.Requirements())
	if err != nil {
		return fmt.Errorf("failed to create requirements: %w", err)
	}

	err = b.command(ctx, b.project.Pip(), []string{"freeze"}, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to write requirements: %w", cerr)
	}
	return err
}

func (b *build) migrate(ctx context.Context) error {
	fmt.Fprintln(b.out, "\n--- Final setup ---")

	err := b.command(ctx, b.project.Python(), []string{"manage.py", "migrate"}, nil)
	if err != nil && ctx.Err() == nil {
		fmt.Fprintln(b.out, "\n*** Migrations could not be applied. Activate the virtual environment and run them manually:")
		fmt.Fprintln(b.out, "    python manage.py migrate")
	}
	return err
}

// gitExclude lists the top-level entries kept out of the initial commit.
func (b *build) gitExclude() []string {
	return []string{b.project.Venv, "db.sqlite3", "media", project.ServerScript, project.RecordFile}
}

func (b *build) initGit(ctx context.Context) error {
	if err := b.renderFile(template.GitIgnore, filepath.Join(b.project.Path, ".gitignore")); err != nil {
		return err
	}

	fmt.Fprintln(b.out, "\nInitialising git repository...")
	hash, err := b.git.Init(ctx, git.InitOptions{
		Path:        b.project.Path,
		Message:     InitialCommitMessage,
		AuthorName:  b.opts.GitAuthor,
		AuthorEmail: b.opts.GitEmail,
		Exclude:     b.gitExclude(),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(b.out, "-> Initial commit: %s\n", hash.String()[:7])
	return nil
}

func (b *build) launchServer(ctx context.Context) error {
	fmt.Fprintln(b.out, "\nStarting the development server in a new terminal...")
	fmt.Fprintln(b.out, "NOTE: you still need to create a superuser.")
	fmt.Fprintln(b.out, "      Open another terminal, activate the environment and run: python manage.py createsuperuser")

	cmd, err := b.launcher.Prepare(b.project)
	if err != nil {
		return err
	}

	fmt.Fprintf(b.out, "\n> Running: %s\n", cmd)
	if err := b.runner.Spawn(ctx, cmd.Name, cmd.Args, runner.Options{Dir: cmd.Dir}); err != nil {
		fmt.Fprintf(b.out, "*** Unable to start the server: %v\n", err)
		fmt.Fprintln(b.out, "    Start it manually with: python manage.py runserver")
		return err
	}

	fmt.Fprintln(b.out, "... done")
	return nil
}

// command runs name in the project root, printing it first and its captured
// output when it fails. stdout, when set, receives the command output.
func (b *build) command(ctx context.Context, name string, args []string, stdout io.Writer) error {
	fmt.Fprintf(b.out, "\n> Running: %s\n", strings.Join(append([]string{name}, args...), " "))

	_, err := b.runner.Run(ctx, name, args, runner.Options{Dir: b.project.Path, Stdout: stdout})
	if err != nil {
		fmt.Fprintf(b.out, "*** %v\n", err)
		var exitErr *runner.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprint(b.out, exitErr.Output())
		}
		return err
	}

	fmt.Fprintln(b.out, "... done")
	return nil
}

func (b *build) renderFile(name, path string) error {
	content, err := template.Render(name, b.project)
	if err != nil {
		return err
	}
	return b.writeFile(path, content)
}

func (b *build) writeFile(path, content string) error {
	if err := settings.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	fmt.Fprintf(b.out, "-> Created file: %s\n", filepath.Base(path))
	return nil
}
