package curseforge

import (
	"fmt"
	"strings"
)

// FabricCategoryID is the category tag that marks a mod as Fabric-compatible.
// Mods without it are treated as Forge mods.
const FabricCategoryID = 4780

// SearchResult represents a mod as returned by search and by the mod summary endpoint.
type SearchResult struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Authors     []Author   `json:"authors"`
	Description string     `json:"summary"`
	WebsiteURL  string     `json:"websiteUrl"`
	Categories  []Category `json:"categories"`
	GameFiles   []GameFile `json:"gameVersionLatestFiles"`
}

// Author represents a mod author.
type Author struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Category represents a category tag attached to a mod.
type Category struct {
	CategoryID int    `json:"categoryId"`
	Name       string `json:"name"`
	URL        string `json:"url"`
}

// GameFile associates a game version with the latest file for it.
type GameFile struct {
	GameVersion     string `json:"gameVersion"`
	ProjectFileID   int    `json:"projectFileId"`
	ProjectFileName string `json:"projectFileName"`
	FileType        int    `json:"fileType"`
}

// ModInfo is a concrete downloadable file of a mod.
type ModInfo struct {
	// ModID is the owning mod. It is not part of the file payload and is
	// filled in by the client from the request.
	ModID int `json:"-"`

	ID           int          `json:"id"`
	DisplayName  string       `json:"displayName"`
	FileName     string       `json:"fileName"`
	DownloadURL  string       `json:"downloadUrl"`
	FileLength   int64        `json:"fileLength"`
	Dependencies []Dependency `json:"dependencies"`
}

// Dependency is an edge from a file to another mod.
type Dependency struct {
	ModID int          `json:"addonId"`
	Type  RelationType `json:"type"`
}

// RelationType is the API's integer code for a dependency relation.
type RelationType int

// Relation type codes as defined by the addon API.
const (
	EmbeddedLibrary    RelationType = 1
	OptionalDependency RelationType = 2
	RequiredDependency RelationType = 3
	Tool               RelationType = 4
	Incompatible       RelationType = 5
	Include            RelationType = 6
)

// String returns a readable name for the relation type.
func (r RelationType) String() string {
	switch r {
	case EmbeddedLibrary:
		return "embedded"
	case OptionalDependency:
		return "optional"
	case RequiredDependency:
		return "required"
	case Tool:
		return "tool"
	case Incompatible:
		return "incompatible"
	case Include:
		return "include"
	default:
		return fmt.Sprintf("relation(%d)", int(r))
	}
}

// IsFabric reports whether the mod carries the Fabric category tag.
func (r *SearchResult) IsFabric() bool {
	for _, c := range r.Categories {
		if c.CategoryID == FabricCategoryID {
			return true
		}
	}
	return false
}

// FileForVersion returns the latest file record for the given game version.
func (r *SearchResult) FileForVersion(version string) (*GameFile, bool) {
	for i := range r.GameFiles {
		if r.GameFiles[i].GameVersion == version {
			return &r.GameFiles[i], true
		}
	}
	return nil, false
}

// AuthorNames returns up to three author names, followed by "et al." when
// the mod has more.
func (r *SearchResult) AuthorNames() string {
	names := make([]string, 0, 3)
	for i, a := range r.Authors {
		if i == 3 {
			break
		}
		names = append(names, a.Name)
	}

	joined := strings.Join(names, ", ")
	if len(r.Authors) > 3 {
		joined += " et al."
	}
	return joined
}

// HardDependencies returns the dependency edges that must be installed.
func (m *ModInfo) HardDependencies() []Dependency {
	deps := make([]Dependency, 0, len(m.Dependencies))
	for _, d := range m.Dependencies {
		if d.Type == RequiredDependency {
			deps = append(deps, d)
		}
	}
	return deps
}

// ModLoader selects which mod loader search results must be compatible with.
type ModLoader int

const (
	Forge ModLoader = iota
	Fabric
	Both
)

// ParseModLoader parses "forge", "fabric" or "both" (case-insensitive).
func ParseModLoader(s string) (ModLoader, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forge":
		return Forge, nil
	case "fabric":
		return Fabric, nil
	case "both":
		return Both, nil
	default:
		return Forge, fmt.Errorf("%q is not a valid mod loader (must be forge, fabric, or both)", s)
	}
}

// String returns the display name of the loader.
func (l ModLoader) String() string {
	switch l {
	case Fabric:
		return "Fabric"
	case Both:
		return "Forge/Fabric"
	default:
		return "Forge"
	}
}

// Key returns the lowercase name accepted by ParseModLoader.
func (l ModLoader) Key() string {
	switch l {
	case Fabric:
		return "fabric"
	case Both:
		return "both"
	default:
		return "forge"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l ModLoader) MarshalText() ([]byte, error) {
	return []byte(l.Key()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *ModLoader) UnmarshalText(text []byte) error {
	parsed, err := ParseModLoader(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// SortType is the ordering requested from the search endpoint.
type SortType int

const (
	TotalDownloads SortType = iota
	Popularity
	Name
	LastUpdated
	DateCreated
)

var sortKeys = map[SortType]string{
	TotalDownloads: "downloads",
	Popularity:     "popularity",
	Name:           "name",
	LastUpdated:    "updated",
	DateCreated:    "created",
}

// ParseSortType parses one of downloads, popularity, name, updated or created.
func ParseSortType(s string) (SortType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for t, k := range sortKeys {
		if k == key {
			return t, nil
		}
	}
	return Popularity, fmt.Errorf("%q is not a valid sort type (must be downloads, popularity, name, updated, or created)", s)
}

// String returns the value sent to the search endpoint.
func (t SortType) String() string {
	switch t {
	case TotalDownloads:
		return "TotalDownloads"
	case Name:
		return "Name"
	case LastUpdated:
		return "LastUpdated"
	case DateCreated:
		return "DateCreated"
	default:
		return "Popularity"
	}
}

// Key returns the lowercase name accepted by ParseSortType.
func (t SortType) Key() string {
	if k, ok := sortKeys[t]; ok {
		return k
	}
	return "popularity"
}

// MarshalText implements encoding.TextMarshaler.
func (t SortType) MarshalText() ([]byte, error) {
	return []byte(t.Key()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *SortType) UnmarshalText(text []byte) error {
	parsed, err := ParseSortType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
