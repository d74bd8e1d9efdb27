package download

import (
	"fmt"
	"io"

	"github.com/docker/go-units"
	"github.com/steviee/cdl/internal/mods"
	"github.com/steviee/cdl/internal/tui"
)

const dependencyIndent = "    "

// printer renders download events as console progress lines.
type printer struct {
	out   io.Writer
	theme tui.Theme
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out, theme: tui.NewTheme(out)}
}

func (p *printer) handle(e mods.Event) {
	prefix := "<== "
	if !e.Kind.IsPrimary() {
		prefix = dependencyIndent
	}
	name := e.Mod.FileName

	switch e.Kind {
	case mods.PrimaryDownloading, mods.DependencyDownloading:
		_, _ = fmt.Fprintf(p.out, "%sDownloading %s... ", prefix, name)
	case mods.PrimaryDownloaded, mods.DependencyDownloaded:
		_, _ = fmt.Fprintf(p.out, "%s %s\n",
			p.theme.Success.Render("done!"),
			p.theme.Muted.Render("("+units.HumanSize(float64(e.Bytes))+")"))
	case mods.PrimaryAlreadyDownloaded, mods.DependencyAlreadyDownloaded:
		_, _ = fmt.Fprintf(p.out, "%s%s\n", prefix, p.theme.Skipped.Render(name+" is already downloaded."))
	case mods.PrimaryError, mods.DependencyError:
		_, _ = fmt.Fprintf(p.out, "%s %v\n", p.theme.Error.Render("failed!"), e.Err)
	}
}

// collector gathers events into a Result for JSON output.
type collector struct {
	result *Result
}

func newCollector() *collector {
	return &collector{result: newResult()}
}

func (c *collector) handle(e mods.Event) {
	data := FileData{
		ModID:    e.Mod.ModID,
		FileID:   e.Mod.ID,
		Name:     e.Mod.DisplayName,
		FileName: e.Mod.FileName,
		Path:     e.Path,
	}

	switch e.Kind {
	case mods.PrimaryDownloaded, mods.DependencyDownloaded:
		data.Size = e.Bytes
		c.result.Downloaded = append(c.result.Downloaded, data)
	case mods.PrimaryAlreadyDownloaded, mods.DependencyAlreadyDownloaded:
		c.result.Skipped = append(c.result.Skipped, data)
	case mods.PrimaryError, mods.DependencyError:
		if e.Err != nil {
			data.Error = e.Err.Error()
		}
		c.result.Failed = append(c.result.Failed, data)
	}
}
