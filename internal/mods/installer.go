package mods

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/steviee/cdl/internal/curseforge"
)

// DependencyResolver expands a mod into its ordered download list.
type DependencyResolver interface {
	Resolve(ctx context.Context, gameVersion string, modID int) ([]curseforge.ModInfo, error)
}

// FileFetcher downloads a single file.
type FileFetcher interface {
	Fetch(ctx context.Context, url, destPath string) (int64, error)
}

// Installer downloads selected mods together with their hard dependencies.
// Each file is downloaded at most once per batch.
type Installer struct {
	resolver DependencyResolver
	fetcher  FileFetcher
	fs       afero.Fs
	destDir  string
}

// NewInstaller creates an installer that writes into destDir on fs.
// A nil fs means the OS filesystem.
func NewInstaller(resolver DependencyResolver, fetcher FileFetcher, fs afero.Fs, destDir string) *Installer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if destDir == "" {
		destDir = "."
	}
	return &Installer{
		resolver: resolver,
		fetcher:  fetcher,
		fs:       fs,
		destDir:  destDir,
	}
}

// Report summarizes a batch.
type Report struct {
	Downloaded []curseforge.ModInfo
	Skipped    []curseforge.ModInfo
	Failed     []curseforge.ModInfo
}

// DownloadAll resolves every selected mod and downloads the primary file and
// each dependency that is neither on disk nor already in ledger.
//
// Only resolution errors and cancellation are returned. A failed download is
// reported through sink as an error event and the batch continues. A nil
// ledger starts a fresh batch; a nil sink discards events.
func (i *Installer) DownloadAll(ctx context.Context, gameVersion string, selected []curseforge.SearchResult, ledger *Ledger, sink EventSink) (*Report, error) {
	if ledger == nil {
		ledger = NewLedger()
	}
	if sink == nil {
		sink = func(Event) {}
	}

	report := &Report{}

	slog.Debug("downloading mods",
		"count", len(selected),
		"game_version", gameVersion,
		"dir", i.destDir)

	for _, mod := range selected {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		resolved, err := i.resolver.Resolve(ctx, gameVersion, mod.ID)
		if err != nil {
			return report, fmt.Errorf("resolve %q: %w", mod.Name, err)
		}

		if len(resolved) == 0 {
			slog.Debug("nothing resolved, skipping",
				"mod_id", mod.ID,
				"name", mod.Name,
				"game_version", gameVersion)
			continue
		}

		primary, rest := resolved[0], resolved[1:]
		i.install(ctx, primary, primaryKinds, ledger, sink, report)

		for _, dep := range rest {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			i.install(ctx, dep, dependencyKinds, ledger, sink, report)
		}
	}

	slog.Debug("download finished",
		"downloaded", len(report.Downloaded),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed))

	return report, nil
}

// install runs the skip/download/record sequence for one file.
func (i *Installer) install(ctx context.Context, info curseforge.ModInfo, k kinds, ledger *Ledger, sink EventSink, report *Report) {
	dest, err := i.destination(info)
	if err != nil {
		report.Failed = append(report.Failed, info)
		sink(Event{Kind: k.downloading, Mod: info})
		sink(Event{Kind: k.failed, Mod: info, Err: err})
		return
	}

	if i.exists(dest) || !ledger.Reserve(info.ModID) {
		report.Skipped = append(report.Skipped, info)
		sink(Event{Kind: k.already, Mod: info, Path: dest})
		return
	}

	sink(Event{Kind: k.downloading, Mod: info, Path: dest})

	n, err := i.fetcher.Fetch(ctx, info.DownloadURL, dest)
	if err != nil {
		ledger.Release(info.ModID)
		report.Failed = append(report.Failed, info)

		slog.Debug("download failed",
			"mod_id", info.ModID,
			"file", info.FileName,
			"error", err)

		sink(Event{Kind: k.failed, Mod: info, Path: dest, Err: err})
		return
	}

	ledger.Commit(info.ModID)
	report.Downloaded = append(report.Downloaded, info)
	sink(Event{Kind: k.downloaded, Mod: info, Path: dest, Bytes: n})
}

// destination returns the local path for a file. Only the base name of the
// remote file name is used; a name without one is an ErrFileSystem.
func (i *Installer) destination(info curseforge.ModInfo) (string, error) {
	name := filepath.Base(filepath.Clean("/" + info.FileName))
	if name == "/" || name == "." || name == ".." {
		return "", fmt.Errorf("%w: mod %d file %d has no usable file name %q", ErrFileSystem, info.ModID, info.ID, info.FileName)
	}
	return filepath.Join(i.destDir, name), nil
}

func (i *Installer) exists(path string) bool {
	ok, err := afero.Exists(i.fs, path)
	if err != nil {
		slog.Debug("stat failed, treating as missing", "path", path, "error", err)
		return false
	}
	return ok
}
