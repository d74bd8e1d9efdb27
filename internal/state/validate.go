package state

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/steviee/cdl/internal/curseforge"
)

const (
	// MinAmount and MaxAmount bound the number of search results per query.
	MinAmount = 1
	MaxAmount = curseforge.MaxPageSize
)

// gameVersionRegex accepts release versions like 1.16.4 or 1.20 with an
// optional suffix such as -pre1.
var gameVersionRegex = regexp.MustCompile(`^\d+\.\d+(\.\d+)?(-\w+)?$`)

// ValidateGameVersion validates a Minecraft version string.
func ValidateGameVersion(version string) error {
	if version == "" {
		return fmt.Errorf("game version cannot be empty")
	}

	if !gameVersionRegex.MatchString(version) {
		return fmt.Errorf("invalid game version: %q (expected format: 1.16.4)", version)
	}

	return nil
}

// ValidateAmount validates the number of search results to show.
func ValidateAmount(amount int) error {
	if amount < MinAmount || amount > MaxAmount {
		return fmt.Errorf("amount must be between %d and %d, got %d", MinAmount, MaxAmount, amount)
	}
	return nil
}

// ValidateModLoader validates a parsed mod loader value.
func ValidateModLoader(loader curseforge.ModLoader) error {
	if loader < curseforge.Forge || loader > curseforge.Both {
		return fmt.Errorf("invalid mod loader: %d", loader)
	}
	return nil
}

// ValidateSortType validates a parsed sort type value.
func ValidateSortType(sort curseforge.SortType) error {
	if sort < curseforge.TotalDownloads || sort > curseforge.DateCreated {
		return fmt.Errorf("invalid sort type: %d", sort)
	}
	return nil
}

// ValidateDir validates a directory setting. Relative paths are allowed.
func ValidateDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("directory cannot be empty")
	}
	return nil
}
