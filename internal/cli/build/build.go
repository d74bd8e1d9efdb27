// Package build implements the --github flow: clone a mod repository, pick a
// branch, build it and copy the chosen jars.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/steviee/cdl/internal/gitbuild"
	"github.com/steviee/cdl/internal/tui"
)

// Prompter reads one line of selection input.
type Prompter interface {
	Prompt(ctx context.Context) (string, error)
}

// Runner wires the flow's collaborators. Build output goes to Out and Err.
type Runner struct {
	Builder  *gitbuild.Builder
	Prompter Prompter
	Out      io.Writer
	Err      io.Writer
}

const nothingToDo = "There's nothing to do."

// Run clones url, builds the branch the user picks and copies the selected
// artifacts into destDir. An invalid choice at either prompt prints
// "There's nothing to do." and is not an error.
func (r *Runner) Run(ctx context.Context, url, destDir string) error {
	repo, err := r.Builder.Clone(ctx, url)
	if err != nil {
		return err
	}

	branches, err := repo.Branches()
	if err != nil {
		return err
	}
	if len(branches) == 0 {
		_, _ = fmt.Fprintln(r.Out, nothingToDo)
		return nil
	}

	_, _ = fmt.Fprintln(r.Out, "The following branches were found, please select one:")
	tui.RenderList(r.Out, []string{"BRANCH"}, column(branches))

	input, err := r.Prompter.Prompt(ctx)
	if err != nil {
		return fmt.Errorf("read selection: %w", err)
	}
	n, err := tui.SelectOne(input, len(branches))
	if err != nil {
		_, _ = fmt.Fprintln(r.Out, nothingToDo)
		return nil
	}
	branch := branches[n-1]

	if err := repo.Checkout(branch); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(r.Out, "Switched to branch %s, beginning build process...\n", branch)

	if err := r.Builder.Build(ctx, repo.Dir, r.Out, r.Err); err != nil {
		return err
	}

	artifacts, err := r.Builder.Artifacts(repo.Dir)
	if err != nil {
		return err
	}
	if len(artifacts) == 0 {
		_, _ = fmt.Fprintln(r.Out, "\nThe build did not create any jars.")
		return nil
	}

	names := make([]string, len(artifacts))
	for i, a := range artifacts {
		names[i] = filepath.Base(a)
	}

	_, _ = fmt.Fprintln(r.Out, "\nThe following jars were created, please select one or more:")
	tui.RenderList(r.Out, []string{"FILE"}, column(names))

	input, err = r.Prompter.Prompt(ctx)
	if err != nil {
		return fmt.Errorf("read selection: %w", err)
	}
	indices, err := tui.SelectIndices(input, len(artifacts))
	if err != nil {
		if !errors.Is(err, tui.ErrInvalidSelection) {
			return err
		}
		_, _ = fmt.Fprintln(r.Out, nothingToDo)
		return nil
	}

	theme := tui.NewTheme(r.Out)
	for _, src := range tui.Pick(artifacts, indices) {
		dest, err := r.Builder.CopyArtifact(src, destDir)
		if err != nil {
			return err
		}
		slog.Debug("copied artifact", "src", src, "dest", dest)
		_, _ = fmt.Fprintf(r.Out, "<== Copied %s to %s %s\n", filepath.Base(src), destDir, theme.Success.Render("done!"))
	}

	return nil
}

func column(values []string) [][]string {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{v}
	}
	return rows
}
