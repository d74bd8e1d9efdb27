package curseforge

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

const (
	// MinecraftGameID identifies Minecraft on the addon API.
	MinecraftGameID = 432

	// ModsSectionID is the section holding mods (as opposed to modpacks or worlds).
	ModsSectionID = 6

	// DefaultPageSize is used when no page size is given.
	DefaultPageSize = 9

	// MaxPageSize caps the page size. Only a single page is ever requested.
	MaxPageSize = 50
)

// SearchOptions holds search parameters.
type SearchOptions struct {
	Query       string
	GameVersion string
	PageSize    int
	Sort        SortType
	Loader      ModLoader
}

// Search queries the search endpoint and filters results by mod loader.
// An empty result is not an error.
func (c *Client) Search(ctx context.Context, opts *SearchOptions) ([]SearchResult, error) {
	if opts == nil || strings.TrimSpace(opts.Query) == "" {
		return nil, ErrInvalidSearchQuery
	}

	path := "/search?" + searchQuery(opts)

	slog.Debug("searching CurseForge",
		"query", opts.Query,
		"game_version", opts.GameVersion,
		"sort", opts.Sort.String(),
		"loader", opts.Loader.String())

	var results []SearchResult
	if err := c.getJSON(ctx, path, &results); err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}

	filtered := FilterByLoader(results, opts.Loader)

	slog.Debug("search completed",
		"hits", len(results),
		"kept", len(filtered))

	return filtered, nil
}

// searchQuery builds the query string in the parameter order the endpoint
// documents. The search text is path-escaped so spaces become %20.
func searchQuery(opts *SearchOptions) string {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return fmt.Sprintf(
		"categoryId=0&gameId=%d&gameVersion=%s&index=0&pageSize=%d&searchFilter=%s&sectionId=%d&sort=%s",
		MinecraftGameID,
		url.QueryEscape(opts.GameVersion),
		pageSize,
		url.PathEscape(strings.TrimSpace(opts.Query)),
		ModsSectionID,
		opts.Sort.String(),
	)
}

// FilterByLoader keeps the results compatible with loader, preserving order.
// Forge drops Fabric-tagged mods, Fabric keeps only Fabric-tagged mods and
// Both keeps everything.
func FilterByLoader(results []SearchResult, loader ModLoader) []SearchResult {
	if loader == Both {
		return results
	}

	kept := make([]SearchResult, 0, len(results))
	for i := range results {
		fabric := results[i].IsFabric()
		if (loader == Fabric) == fabric {
			kept = append(kept, results[i])
		}
	}
	return kept
}
