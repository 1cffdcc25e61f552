package fs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"sectorfs/internal/logging"
)

// EntryType tags a directory entry as a file or a directory.
type EntryType uint8

const (
	// EntryFile marks an entry describing a regular file.
	EntryFile EntryType = iota
	// EntryDirectory marks an entry describing a directory.
	EntryDirectory
)

// String returns the type tag used in listings.
func (t EntryType) String() string {
	if t == EntryDirectory {
		return "dir"
	}
	return "file"
}

// DirEntrySize is the fixed width of one on-disk directory entry.
const DirEntrySize = 1 + 1 + 4 + MaxNameLen

var dirLogger = logging.GetLogger().WithPrefix("dir")

// dirEntry is the fixed-width on-disk record for one directory entry.
type dirEntry struct {
	InUse  bool
	Type   EntryType
	Sector int32
	Name   [MaxNameLen]byte
}

func (e *dirEntry) name() string {
	n := bytes.IndexByte(e.Name[:], 0)
	if n == -1 {
		n = len(e.Name)
	}
	return string(e.Name[:n])
}

// truncateName clips a name to the bounded length a directory entry
// can store.
func truncateName(name string) string {
	if len(name) > MaxNameLen {
		return name[:MaxNameLen]
	}
	return name
}

// EntryInfo describes one live directory entry to callers.
type EntryInfo struct {
	Name   string
	Sector int
	Type   EntryType
}

// Directory is an in-memory snapshot of one directory's bounded entry
// table, scoped to a single directory sector on disk. Names are unique
// within a snapshot. Every directory holds a "." entry pointing at its
// own sector and a ".." entry pointing at its parent (the root's
// parent is itself).
type Directory struct {
	entries []dirEntry
}

// NewDirectory creates an empty directory snapshot with the given
// entry capacity.
func NewDirectory(capacity int) *Directory {
	return &Directory{entries: make([]dirEntry, capacity)}
}

// FetchFrom loads the directory contents from its backing file.
func (dir *Directory) FetchFrom(f *BlockFile) error {
	size := DirEntrySize * len(dir.entries)
	buf := make([]byte, size)
	n, err := f.ReadAt(buf, 0)
	if err != nil {
		return fmt.Errorf("failed to fetch directory: %w", err)
	}
	if n != size {
		return fmt.Errorf("short directory read: got %d bytes, want %d", n, size)
	}
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, dir.entries); err != nil {
		return fmt.Errorf("failed to decode directory: %w", err)
	}
	return nil
}

// WriteBack flushes the directory contents to its backing file.
func (dir *Directory) WriteBack(f *BlockFile) error {
	size := DirEntrySize * len(dir.entries)
	buf := bytes.NewBuffer(make([]byte, 0, size))
	if err := binary.Write(buf, binary.LittleEndian, dir.entries); err != nil {
		return fmt.Errorf("failed to encode directory: %w", err)
	}
	n, err := f.WriteAt(buf.Bytes(), 0)
	if err != nil {
		return fmt.Errorf("failed to write back directory: %w", err)
	}
	if n != size {
		return fmt.Errorf("short directory write: wrote %d bytes, want %d", n, size)
	}
	return nil
}

// index returns the slot holding name, or -1.
func (dir *Directory) index(name string) int {
	name = truncateName(name)
	for i := range dir.entries {
		if dir.entries[i].InUse && dir.entries[i].name() == name {
			return i
		}
	}
	return -1
}

// Find returns the header sector recorded for name, or -1 if the name
// is not present.
func (dir *Directory) Find(name string) int {
	if i := dir.index(name); i != -1 {
		return int(dir.entries[i].Sector)
	}
	return -1
}

// FindEntry returns the live entry for name.
func (dir *Directory) FindEntry(name string) (EntryInfo, bool) {
	i := dir.index(name)
	if i == -1 {
		return EntryInfo{}, false
	}
	e := &dir.entries[i]
	return EntryInfo{Name: e.name(), Sector: int(e.Sector), Type: e.Type}, true
}

// Add records name at the given header sector. It fails with
// ErrAlreadyExists for duplicate names and ErrDirectoryFull when every
// slot is in use.
func (dir *Directory) Add(name string, sector int, typ EntryType) error {
	if dir.index(name) != -1 {
		return ErrAlreadyExists
	}
	for i := range dir.entries {
		if dir.entries[i].InUse {
			continue
		}
		e := &dir.entries[i]
		e.InUse = true
		e.Type = typ
		e.Sector = int32(sector)
		e.Name = [MaxNameLen]byte{}
		copy(e.Name[:], truncateName(name))
		dirLogger.Trace("Added entry %q -> sector %d (%s)", name, sector, typ)
		return nil
	}
	return ErrDirectoryFull
}

// Remove drops the entry for name. The entry's storage is the caller's
// to reclaim.
func (dir *Directory) Remove(name string) error {
	i := dir.index(name)
	if i == -1 {
		return ErrNotFound
	}
	dir.entries[i] = dirEntry{}
	dirLogger.Trace("Removed entry %q", name)
	return nil
}

// Entries returns the live entries in slot order.
func (dir *Directory) Entries() []EntryInfo {
	var infos []EntryInfo
	for i := range dir.entries {
		if !dir.entries[i].InUse {
			continue
		}
		e := &dir.entries[i]
		infos = append(infos, EntryInfo{Name: e.name(), Sector: int(e.Sector), Type: e.Type})
	}
	return infos
}

// List writes a human-readable listing of the directory to w.
func (dir *Directory) List(w io.Writer) {
	for _, e := range dir.Entries() {
		fmt.Fprintf(w, "%-4s %6d  %s\n", e.Type, e.Sector, e.Name)
	}
}

// Print dumps the raw entry table to w, for the Print diagnostic.
func (dir *Directory) Print(w io.Writer) {
	fmt.Fprintf(w, "Directory contents (%d slots):\n", len(dir.entries))
	for i := range dir.entries {
		e := &dir.entries[i]
		if !e.InUse {
			continue
		}
		fmt.Fprintf(w, "  slot %d: name %q, sector %d, type %s\n",
			i, e.name(), e.Sector, e.Type)
	}
}
