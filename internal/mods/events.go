package mods

import "github.com/steviee/cdl/internal/curseforge"

// EventKind identifies a download lifecycle transition.
type EventKind int

const (
	PrimaryAlreadyDownloaded EventKind = iota
	PrimaryDownloading
	PrimaryDownloaded
	PrimaryError
	DependencyAlreadyDownloaded
	DependencyDownloading
	DependencyDownloaded
	DependencyError
)

var eventNames = map[EventKind]string{
	PrimaryAlreadyDownloaded:    "primary_already_downloaded",
	PrimaryDownloading:          "primary_downloading",
	PrimaryDownloaded:           "primary_downloaded",
	PrimaryError:                "primary_error",
	DependencyAlreadyDownloaded: "dependency_already_downloaded",
	DependencyDownloading:       "dependency_downloading",
	DependencyDownloaded:        "dependency_downloaded",
	DependencyError:             "dependency_error",
}

// String returns the snake_case name of the kind.
func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsPrimary reports whether the event concerns a selected mod rather than
// one of its dependencies.
func (k EventKind) IsPrimary() bool {
	return k <= PrimaryError
}

// Event is emitted once per lifecycle transition of a resolved file.
type Event struct {
	Kind EventKind
	Mod  curseforge.ModInfo

	// Path is the local destination of the file.
	Path string

	// Bytes is set on *Downloaded events.
	Bytes int64

	// Err is set on *Error events.
	Err error
}

// EventSink receives events synchronously, in resolution order.
type EventSink func(Event)

// kinds maps the four transitions to the primary or dependency variant.
type kinds struct {
	already, downloading, downloaded, failed EventKind
}

var (
	primaryKinds    = kinds{PrimaryAlreadyDownloaded, PrimaryDownloading, PrimaryDownloaded, PrimaryError}
	dependencyKinds = kinds{DependencyAlreadyDownloaded, DependencyDownloading, DependencyDownloaded, DependencyError}
)
