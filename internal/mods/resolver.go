package mods

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/steviee/cdl/internal/curseforge"
)

// ModAPI is the subset of the addon API the resolver needs.
type ModAPI interface {
	GetMod(ctx context.Context, modID int) (*curseforge.SearchResult, error)
	GetFile(ctx context.Context, modID, fileID int) (*curseforge.ModInfo, error)
}

// Resolver expands a mod into its file plus the files of its hard dependencies.
type Resolver struct {
	api ModAPI
}

// NewResolver creates a resolver backed by api.
func NewResolver(api ModAPI) *Resolver {
	return &Resolver{api: api}
}

// Resolve returns the file of modID for gameVersion followed by the files of
// its transitive hard dependencies, depth-first in declaration order. The
// requested mod is always first.
//
// A mod without a file for gameVersion contributes nothing, which yields an
// empty result for the top-level call. A dependency that is already on the
// current path (a cycle) also contributes nothing. The same dependency
// reached through two different branches appears twice; callers deduplicate.
func (r *Resolver) Resolve(ctx context.Context, gameVersion string, modID int) ([]curseforge.ModInfo, error) {
	slog.Debug("resolving dependencies",
		"mod_id", modID,
		"game_version", gameVersion)

	resolved, err := r.resolve(ctx, gameVersion, modID, make(map[int]bool))
	if err != nil {
		return nil, err
	}

	slog.Debug("dependencies resolved",
		"mod_id", modID,
		"count", len(resolved))

	return resolved, nil
}

// resolve is the recursive helper for Resolve. path holds the mod ids of the
// calls currently on the stack.
func (r *Resolver) resolve(ctx context.Context, gameVersion string, modID int, path map[int]bool) ([]curseforge.ModInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if path[modID] {
		slog.Debug("circular dependency detected, skipping", "mod_id", modID)
		return nil, nil
	}
	path[modID] = true
	defer delete(path, modID)

	mod, err := r.api.GetMod(ctx, modID)
	if err != nil {
		return nil, fmt.Errorf("resolve mod %d: %w", modID, err)
	}

	gameFile, ok := mod.FileForVersion(gameVersion)
	if !ok {
		slog.Debug("no file for game version",
			"mod_id", modID,
			"game_version", gameVersion)
		return nil, nil
	}

	file, err := r.api.GetFile(ctx, modID, gameFile.ProjectFileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file of mod %d: %w", modID, err)
	}

	info := *file
	info.ModID = modID

	resolved := []curseforge.ModInfo{info}
	for _, dep := range info.HardDependencies() {
		sub, err := r.resolve(ctx, gameVersion, dep.ModID, path)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, sub...)
	}

	return resolved, nil
}
