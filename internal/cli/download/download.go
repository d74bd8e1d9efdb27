// Package download implements the search, select and download flow of the
// root command.
package download

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/steviee/cdl/internal/curseforge"
	"github.com/steviee/cdl/internal/mods"
	"github.com/steviee/cdl/internal/tui"
)

// Searcher finds mods matching a query.
type Searcher interface {
	Search(ctx context.Context, opts *curseforge.SearchOptions) ([]curseforge.SearchResult, error)
}

// Installer downloads a selection of mods with their dependencies.
type Installer interface {
	DownloadAll(ctx context.Context, gameVersion string, selected []curseforge.SearchResult, ledger *mods.Ledger, sink mods.EventSink) (*mods.Report, error)
}

// Prompter reads one line of selection input.
type Prompter interface {
	Prompt(ctx context.Context) (string, error)
}

// Options describes a single search and download run.
type Options struct {
	Query       string
	GameVersion string
	Loader      curseforge.ModLoader
	Sort        curseforge.SortType
	Amount      int

	// Selection is used instead of prompting when set.
	Selection string

	JSON bool
}

// Output is the JSON envelope written with --json.
type Output struct {
	Status  string  `json:"status"`
	Data    *Result `json:"data,omitempty"`
	Message string  `json:"message,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// Result lists the files of a batch by outcome.
type Result struct {
	Downloaded []FileData `json:"downloaded"`
	Skipped    []FileData `json:"skipped"`
	Failed     []FileData `json:"failed"`
}

// FileData describes one file in Result.
type FileData struct {
	ModID    int    `json:"mod_id"`
	FileID   int    `json:"file_id"`
	Name     string `json:"name"`
	FileName string `json:"file_name"`
	Path     string `json:"path"`
	Size     int64  `json:"size,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Runner wires the flow's collaborators.
type Runner struct {
	Searcher  Searcher
	Installer Installer
	Prompter  Prompter
	Out       io.Writer
}

// Run searches, lists the results, reads a selection and downloads it.
// An empty or invalid selection prints "There's nothing to do." and is not
// an error. Only search, resolution and cancellation errors are returned.
func (r *Runner) Run(ctx context.Context, opts Options) error {
	if opts.JSON && strings.TrimSpace(opts.Selection) == "" {
		return errors.New("--json requires --select")
	}

	results, err := r.Searcher.Search(ctx, &curseforge.SearchOptions{
		Query:       opts.Query,
		GameVersion: opts.GameVersion,
		PageSize:    opts.Amount,
		Sort:        opts.Sort,
		Loader:      opts.Loader,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		msg := fmt.Sprintf("No %s mods for %s including '%s' found.", opts.Loader, opts.GameVersion, opts.Query)
		if opts.JSON {
			return writeJSON(r.Out, Output{Status: "success", Data: newResult(), Message: msg})
		}
		_, _ = fmt.Fprintln(r.Out, msg)
		return nil
	}

	if !opts.JSON {
		tui.RenderList(r.Out, listHeaders(opts.Loader), listRows(results, opts.Loader))
		_, _ = fmt.Fprintf(r.Out, "Searched %s mods for %s including '%s'.\n", opts.Loader, opts.GameVersion, opts.Query)
	}

	input := opts.Selection
	if strings.TrimSpace(input) == "" {
		input, err = r.Prompter.Prompt(ctx)
		if err != nil {
			return fmt.Errorf("read selection: %w", err)
		}
	}

	indices, err := tui.SelectIndices(input, len(results))
	if err != nil {
		if !errors.Is(err, tui.ErrInvalidSelection) {
			return err
		}
		if opts.JSON {
			return writeJSON(r.Out, Output{Status: "success", Data: newResult(), Message: nothingToDo})
		}
		_, _ = fmt.Fprintln(r.Out, nothingToDo)
		return nil
	}

	selected := tui.Pick(results, indices)

	if opts.JSON {
		collector := newCollector()
		if _, err := r.Installer.DownloadAll(ctx, opts.GameVersion, selected, mods.NewLedger(), collector.handle); err != nil {
			return err
		}
		return writeJSON(r.Out, Output{Status: "success", Data: collector.result})
	}

	p := newPrinter(r.Out)
	report, err := r.Installer.DownloadAll(ctx, opts.GameVersion, selected, mods.NewLedger(), p.handle)
	if err != nil {
		return err
	}
	if n := len(report.Failed); n > 0 {
		_, _ = fmt.Fprintf(r.Out, "%d file(s) could not be downloaded.\n", n)
	}
	return nil
}

const nothingToDo = "There's nothing to do."

func listHeaders(loader curseforge.ModLoader) []string {
	if loader == curseforge.Both {
		return []string{"NAME", "AUTHOR", "LOADER"}
	}
	return []string{"NAME", "AUTHOR"}
}

// listRows marks Fabric mods only when both loaders are listed together.
func listRows(results []curseforge.SearchResult, loader curseforge.ModLoader) [][]string {
	rows := make([][]string, 0, len(results))
	for i := range results {
		row := []string{results[i].Name, results[i].AuthorNames()}
		if loader == curseforge.Both {
			marker := ""
			if results[i].IsFabric() {
				marker = fabricMarker
			}
			row = append(row, marker)
		}
		rows = append(rows, row)
	}
	return rows
}

const fabricMarker = "[FABRIC]"

func newResult() *Result {
	return &Result{
		Downloaded: []FileData{},
		Skipped:    []FileData{},
		Failed:     []FileData{},
	}
}

func writeJSON(w io.Writer, output Output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		return fmt.Errorf("encode JSON output: %w", err)
	}
	return nil
}
