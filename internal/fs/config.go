package fs

import "sectorfs/internal/disk"

// Sectors holding the file headers for the free-space map and the root
// directory. These are placed at well-known locations so the volume can
// be found again on mount. They are fixed at format time and never
// reallocated.
const (
	FreeMapSector   = 0
	DirectorySector = 1
)

const (
	// FreeMapFileSize is the size in bytes of the free-space map file:
	// one bit per sector on the device.
	FreeMapFileSize = disk.NumSectors / 8

	// NumDirEntries is the fixed entry capacity of every directory,
	// the root included.
	NumDirEntries = 16

	// DirectoryFileSize is the size in bytes of a directory's backing file.
	DirectoryFileSize = DirEntrySize * NumDirEntries

	// MaxOpenFiles is the capacity of the open-file table.
	MaxOpenFiles = 10

	// MaxNameLen is the longest file or directory name a directory
	// entry can store. Longer names are truncated.
	MaxNameLen = 24
)

// Handle identifies an entry in the open-file table.
type Handle int

// InvalidHandle is returned by Open when the file cannot be opened.
const InvalidHandle Handle = -1
