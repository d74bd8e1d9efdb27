package mods

import "errors"

// ErrFileSystem is returned when a downloaded file cannot be written locally.
var ErrFileSystem = errors.New("file system error")
