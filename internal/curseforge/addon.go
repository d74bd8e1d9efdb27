package curseforge

import (
	"context"
	"fmt"
	"log/slog"
)

// GetMod fetches the summary record of a mod, including its per-version files.
func (c *Client) GetMod(ctx context.Context, modID int) (*SearchResult, error) {
	if modID <= 0 {
		return nil, fmt.Errorf("invalid mod ID: %d", modID)
	}

	if mod, ok := c.mods.Get(modID); ok {
		slog.Debug("mod cache hit", "mod_id", modID)
		return &mod, nil
	}

	var mod SearchResult
	if err := c.getJSON(ctx, fmt.Sprintf("/%d", modID), &mod); err != nil {
		return nil, fmt.Errorf("get mod %d: %w", modID, err)
	}

	c.mods.Set(modID, mod)

	slog.Debug("mod retrieved",
		"mod_id", mod.ID,
		"name", mod.Name,
		"files", len(mod.GameFiles))

	return &mod, nil
}

// GetFile fetches the full file record for a mod's file.
func (c *Client) GetFile(ctx context.Context, modID, fileID int) (*ModInfo, error) {
	if modID <= 0 || fileID <= 0 {
		return nil, fmt.Errorf("invalid mod/file ID: %d/%d", modID, fileID)
	}

	key := fileKey{modID: modID, fileID: fileID}
	if file, ok := c.files.Get(key); ok {
		slog.Debug("file cache hit", "mod_id", modID, "file_id", fileID)
		return &file, nil
	}

	var file ModInfo
	if err := c.getJSON(ctx, fmt.Sprintf("/%d/file/%d", modID, fileID), &file); err != nil {
		return nil, fmt.Errorf("get file %d of mod %d: %w", fileID, modID, err)
	}
	file.ModID = modID
	c.files.Set(key, file)

	slog.Debug("file retrieved",
		"mod_id", modID,
		"file_id", file.ID,
		"file_name", file.FileName,
		"dependencies", len(file.Dependencies))

	return &file, nil
}
