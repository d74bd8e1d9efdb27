package gitbuild

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

const (
	gradleWrapper = "gradlew"

	// BuildCommand is run in the repository root.
	BuildCommand = "./gradlew build"

	// ArtifactsDir is where Gradle places built jars, relative to the root.
	ArtifactsDir = "build/libs"
)

// Build marks the Gradle wrapper executable and runs BuildCommand in dir
// through an in-process POSIX shell. The build's own output goes to stdout
// and stderr unchanged.
func (b *Builder) Build(ctx context.Context, dir string, stdout, stderr io.Writer) error {
	wrapper := filepath.Join(dir, gradleWrapper)

	info, err := b.fs.Stat(wrapper)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: no %s in %s", ErrBuildFailed, gradleWrapper, dir)
		}
		return fmt.Errorf("failed to stat %s: %w", wrapper, err)
	}
	if err := b.fs.Chmod(wrapper, info.Mode().Perm()|0111); err != nil {
		return fmt.Errorf("failed to make %s executable: %w", gradleWrapper, err)
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(BuildCommand), "build")
	if err != nil {
		return fmt.Errorf("failed to parse build command: %w", err)
	}

	runner, err := interp.New(
		interp.Dir(dir),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(nil, stdout, stderr),
	)
	if err != nil {
		return fmt.Errorf("failed to create shell: %w", err)
	}

	slog.Debug("running build", "dir", dir, "command", BuildCommand)

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return fmt.Errorf("%w: exit status %d", ErrBuildFailed, status)
		}
		return fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	return nil
}

// Artifacts lists the files in dir/build/libs, sorted by name.
// A missing directory yields no artifacts.
func (b *Builder) Artifacts(dir string) ([]string, error) {
	libs := filepath.Join(dir, ArtifactsDir)

	entries, err := afero.ReadDir(b.fs, libs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", libs, err)
	}

	var files []string
	for _, e := range entries {
		if e.Mode().IsRegular() {
			files = append(files, filepath.Join(libs, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// CopyArtifact copies src into destDir keeping its base name and returns
// the destination path.
func (b *Builder) CopyArtifact(src, destDir string) (string, error) {
	dest := filepath.Join(destDir, filepath.Base(src))

	in, err := b.fs.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer func() { _ = in.Close() }()

	if err := b.fs.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	out, err := b.fs.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dest, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("failed to copy artifact: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", dest, err)
	}

	return dest, nil
}
