package fs

import (
	"fmt"
	"io"
	"os"
	"sync"

	"sectorfs/internal/disk"
	"sectorfs/internal/logging"
)

var fsLogger = logging.GetLogger().WithPrefix("fs")

// FileSystem coordinates the on-disk structures: it maps names to
// stored data, keeps the free-space map, the directory tree and the
// file headers mutually consistent, and owns the open-file table.
//
// Composite operations stage every mutation in in-memory snapshots of
// the map and the affected directory, and flush them back only when
// each step has succeeded. On failure the snapshots are discarded
// unwritten; that conditional flush is the only consistency mechanism.
// There is no journaling, so a crash between flushes can leak space
// but never publishes a reference to unwritten data.
//
// A single coarse mutex serializes every public operation, preserving
// the design's single-writer assumption when callers (such as the FUSE
// surface) are concurrent.
type FileSystem struct {
	mu          sync.Mutex
	device      *disk.Disk
	freeMapFile *BlockFile // free-space map backing file, open for the volume's lifetime
	rootDirFile *BlockFile // root directory backing file, open for the volume's lifetime
	table       *openFileTable

	// currentDir is the sector path resolution starts from. It is an
	// explicit field, not ambient per-thread state.
	currentDir int

	out io.Writer // destination for List and Print
}

// New initializes the file system on the given device. With format
// true the device is assumed empty: an empty free-space map and root
// directory are laid down at their well-known sectors. With format
// false the two permanently-open backing files are opened as-is;
// consistency checking is deferred to later operations.
func New(device *disk.Disk, format bool) (*FileSystem, error) {
	fs := &FileSystem{
		device:     device,
		table:      newOpenFileTable(),
		currentDir: DirectorySector,
		out:        os.Stdout,
	}

	if format {
		if err := fs.format(); err != nil {
			return nil, NewError(OpFormat, "", err)
		}
	} else {
		var err error
		if fs.freeMapFile, err = OpenBlockFile(device, FreeMapSector); err != nil {
			return nil, NewError(OpMount, "", err)
		}
		if fs.rootDirFile, err = OpenBlockFile(device, DirectorySector); err != nil {
			return nil, NewError(OpMount, "", err)
		}
		fsLogger.Info("Mounted volume %s", device.Path())
	}

	return fs, nil
}

// format lays down the free-space map and root directory. A volume too
// small to hold its own metadata is a configuration error, so any
// allocation failure here aborts formatting outright.
func (fs *FileSystem) format() error {
	fsLogger.Info("Formatting volume %s", fs.device.Path())

	freeMap := NewBitmap(disk.NumSectors)
	directory := NewDirectory(NumDirEntries)
	mapHdr := new(FileHeader)
	dirHdr := new(FileHeader)

	freeMap.Mark(FreeMapSector)
	freeMap.Mark(DirectorySector)

	if err := mapHdr.Allocate(freeMap, FreeMapFileSize); err != nil {
		return fmt.Errorf("volume too small for free-space map: %w", err)
	}
	if err := dirHdr.Allocate(freeMap, DirectoryFileSize); err != nil {
		return fmt.Errorf("volume too small for root directory: %w", err)
	}

	// Headers must reach the disk before the files can be opened,
	// since opening reads the header back.
	if err := mapHdr.WriteBack(fs.device, FreeMapSector); err != nil {
		return err
	}
	if err := dirHdr.WriteBack(fs.device, DirectorySector); err != nil {
		return err
	}

	var err error
	if fs.freeMapFile, err = OpenBlockFile(fs.device, FreeMapSector); err != nil {
		return err
	}
	if fs.rootDirFile, err = OpenBlockFile(fs.device, DirectorySector); err != nil {
		return err
	}

	// The root is its own parent.
	if err := directory.Add(".", DirectorySector, EntryDirectory); err != nil {
		return err
	}
	if err := directory.Add("..", DirectorySector, EntryDirectory); err != nil {
		return err
	}

	if err := freeMap.WriteBack(fs.freeMapFile); err != nil {
		return err
	}
	if err := directory.WriteBack(fs.rootDirFile); err != nil {
		return err
	}

	fsLogger.Info("Format complete: %d sectors free", freeMap.NumClear())
	return nil
}

// openDirectory loads a fresh snapshot of the directory stored at the
// given sector, along with its backing file for the eventual flush.
func (fs *FileSystem) openDirectory(sector int) (*Directory, *BlockFile, error) {
	file, err := OpenBlockFile(fs.device, sector)
	if err != nil {
		return nil, nil, err
	}
	directory := NewDirectory(NumDirEntries)
	if err := directory.FetchFrom(file); err != nil {
		return nil, nil, err
	}
	return directory, file, nil
}

// fetchFreeMap loads a fresh snapshot of the free-space map.
func (fs *FileSystem) fetchFreeMap() (*Bitmap, error) {
	freeMap := NewBitmap(disk.NumSectors)
	if err := freeMap.FetchFrom(fs.freeMapFile); err != nil {
		return nil, err
	}
	return freeMap, nil
}

// Create creates a file of the given fixed size in the current
// directory. It reports whether the file was created; on failure
// nothing is persisted.
func (fs *FileSystem) Create(name string, initialSize int) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := fs.create(name, initialSize); err != nil {
		fsLogger.Warn("%v", NewError(OpCreate, name, err))
		return false
	}
	fsLogger.Info("Created file %q, size %d", name, initialSize)
	return true
}

func (fs *FileSystem) create(name string, initialSize int) error {
	if name == "" {
		return fmt.Errorf("empty name: %w", ErrInvalidArgument)
	}
	if initialSize < 0 {
		return fmt.Errorf("negative size %d: %w", initialSize, ErrInvalidArgument)
	}

	directory, dirFile, err := fs.openDirectory(fs.currentDir)
	if err != nil {
		return err
	}
	if directory.Find(name) != -1 {
		return ErrAlreadyExists
	}

	freeMap, err := fs.fetchFreeMap()
	if err != nil {
		return err
	}

	sector := freeMap.FindAndMark()
	if sector == -1 {
		return fmt.Errorf("no free sector for file header: %w", ErrOutOfSpace)
	}
	if err := directory.Add(name, sector, EntryFile); err != nil {
		return err
	}

	hdr := new(FileHeader)
	if err := hdr.Allocate(freeMap, initialSize); err != nil {
		return err
	}

	// Every step succeeded; flush in dependency order so a crash
	// between writes never leaves a reference to unwritten data.
	if err := hdr.WriteBack(fs.device, sector); err != nil {
		return err
	}
	if err := directory.WriteBack(dirFile); err != nil {
		return err
	}
	return freeMap.WriteBack(fs.freeMapFile)
}

// Open opens the named file in the current directory and returns its
// handle, or InvalidHandle. Opening a file that is already open
// returns the existing handle rather than a second table entry.
func (fs *FileSystem) Open(name string) Handle {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	handle, err := fs.open(name)
	if err != nil {
		fsLogger.Warn("%v", NewError(OpOpen, name, err))
		return InvalidHandle
	}
	return handle
}

func (fs *FileSystem) open(name string) (Handle, error) {
	if name == "" {
		return InvalidHandle, fmt.Errorf("empty name: %w", ErrInvalidArgument)
	}

	directory, _, err := fs.openDirectory(fs.currentDir)
	if err != nil {
		return InvalidHandle, err
	}
	sector := directory.Find(name)
	if sector == -1 {
		return InvalidHandle, ErrNotFound
	}

	if h := fs.table.bySector(sector); h != InvalidHandle {
		fsLogger.Debug("File %q already open as handle %d", name, h)
		return h, nil
	}

	handle := fs.table.acquire()
	if handle == InvalidHandle {
		return InvalidHandle, ErrTableFull
	}

	file, err := OpenBlockFile(fs.device, sector)
	if err != nil {
		fs.table.release(handle)
		return InvalidHandle, err
	}

	entry := fs.table.entry(handle)
	entry.file = file
	entry.sector = sector
	entry.name = truncateName(name)
	entry.cursor = 0

	fsLogger.Debug("Opened %q as handle %d (sector %d)", name, handle, sector)
	return handle, nil
}

// Remove deletes the named file from the current directory, returning
// its header and data sectors to the free-space map. Handles still
// open on the removed file are not revoked; using one afterwards
// touches storage the map no longer reserves.
func (fs *FileSystem) Remove(name string) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := fs.remove(name); err != nil {
		fsLogger.Warn("%v", NewError(OpRemove, name, err))
		return false
	}
	fsLogger.Info("Removed %q", name)
	return true
}

func (fs *FileSystem) remove(name string) error {
	if name == "" {
		return fmt.Errorf("empty name: %w", ErrInvalidArgument)
	}

	directory, dirFile, err := fs.openDirectory(fs.currentDir)
	if err != nil {
		return err
	}
	sector := directory.Find(name)
	if sector == -1 {
		return ErrNotFound
	}

	hdr := new(FileHeader)
	if err := hdr.FetchFrom(fs.device, sector); err != nil {
		return err
	}

	freeMap, err := fs.fetchFreeMap()
	if err != nil {
		return err
	}

	hdr.Deallocate(freeMap) // data blocks
	freeMap.Clear(sector)   // header block
	if err := directory.Remove(name); err != nil {
		return err
	}

	if err := freeMap.WriteBack(fs.freeMapFile); err != nil {
		return err
	}
	return directory.WriteBack(dirFile)
}

// ChangeDirectory walks the given path, one component per directory
// level, starting from the current directory. On success the current
// directory becomes the resolved sector; on-disk state is never
// touched.
func (fs *FileSystem) ChangeDirectory(path string) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	sector, err := fs.walk(path)
	if err != nil {
		fsLogger.Warn("%v", NewError(OpChdir, path, err))
		return false
	}
	fs.currentDir = sector
	fsLogger.Debug("Current directory is now sector %d", sector)
	return true
}

// walk resolves a possibly multi-component path against the current
// directory, requiring every component to be a directory.
func (fs *FileSystem) walk(path string) (int, error) {
	if path == "" {
		return -1, fmt.Errorf("empty path: %w", ErrInvalidArgument)
	}

	sector := fs.currentDir
	components := NewPathComponents(path)
	for {
		component, ok := components.Next()
		if !ok {
			return sector, nil
		}
		directory, _, err := fs.openDirectory(sector)
		if err != nil {
			return -1, err
		}
		entry, found := directory.FindEntry(component)
		if !found {
			return -1, fmt.Errorf("%q: %w", component, ErrNotFound)
		}
		if entry.Type != EntryDirectory {
			return -1, fmt.Errorf("%q: %w", component, ErrNotADirectory)
		}
		sector = entry.Sector
	}
}

// CreateDirectory creates an empty directory in the current directory.
// It reports whether the directory was created; on failure nothing is
// persisted, and any tentatively chosen sector stays unallocated.
func (fs *FileSystem) CreateDirectory(name string) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := fs.createDirectory(name); err != nil {
		fsLogger.Warn("%v", NewError(OpMkdir, name, err))
		return false
	}
	fsLogger.Info("Created directory %q", name)
	return true
}

func (fs *FileSystem) createDirectory(name string) error {
	if name == "" {
		return fmt.Errorf("empty name: %w", ErrInvalidArgument)
	}

	parentSector := fs.currentDir
	parent, parentFile, err := fs.openDirectory(parentSector)
	if err != nil {
		return err
	}
	if parent.Find(name) != -1 {
		return ErrAlreadyExists
	}

	freeMap, err := fs.fetchFreeMap()
	if err != nil {
		return err
	}

	sector := freeMap.FindAndMark()
	if sector == -1 {
		return fmt.Errorf("no free sector for directory header: %w", ErrOutOfSpace)
	}
	if err := parent.Add(name, sector, EntryDirectory); err != nil {
		return err
	}

	hdr := new(FileHeader)
	if err := hdr.Allocate(freeMap, DirectoryFileSize); err != nil {
		return err
	}
	if err := hdr.WriteBack(fs.device, sector); err != nil {
		return err
	}

	newDir := NewDirectory(NumDirEntries)
	if err := newDir.Add(".", sector, EntryDirectory); err != nil {
		return err
	}
	if err := newDir.Add("..", parentSector, EntryDirectory); err != nil {
		return err
	}

	newDirFile, err := OpenBlockFile(fs.device, sector)
	if err != nil {
		return err
	}

	// New directory's own contents first, then the parent's reference
	// to it, then the space accounting.
	if err := newDir.WriteBack(newDirFile); err != nil {
		return err
	}
	if err := parent.WriteBack(parentFile); err != nil {
		return err
	}
	return freeMap.WriteBack(fs.freeMapFile)
}

// Read transfers up to len(buf) bytes from the handle's cursor,
// advancing the cursor by the bytes transferred. It returns 0 on any
// validation failure.
func (fs *FileSystem) Read(h Handle, buf []byte) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entry, err := fs.ioEntry(h, buf)
	if err != nil {
		fsLogger.Warn("%v", NewError(OpRead, "", err))
		return 0
	}

	entry.file.Seek(entry.cursor)
	n, err := entry.file.Read(buf)
	if err != nil {
		fsLogger.Error("Read on handle %d failed: %v", h, err)
		return 0
	}
	entry.cursor += n
	fsLogger.Trace("Read %d bytes from %q (handle %d)", n, entry.name, h)
	return n
}

// Write transfers up to len(buf) bytes at the handle's cursor,
// advancing the cursor by the bytes transferred. It returns 0 on any
// validation failure.
func (fs *FileSystem) Write(h Handle, buf []byte) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entry, err := fs.ioEntry(h, buf)
	if err != nil {
		fsLogger.Warn("%v", NewError(OpWrite, "", err))
		return 0
	}

	entry.file.Seek(entry.cursor)
	n, err := entry.file.Write(buf)
	if err != nil {
		fsLogger.Error("Write on handle %d failed: %v", h, err)
		return 0
	}
	entry.cursor += n
	fsLogger.Trace("Wrote %d bytes to %q (handle %d)", n, entry.name, h)
	return n
}

// ReadAt transfers up to len(buf) bytes at an explicit byte offset.
// The cursor advances by the bytes transferred.
func (fs *FileSystem) ReadAt(h Handle, buf []byte, position int) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entry, err := fs.ioEntry(h, buf)
	if err != nil {
		fsLogger.Warn("%v", NewError(OpRead, "", err))
		return 0
	}

	n, err := entry.file.ReadAt(buf, position)
	if err != nil {
		fsLogger.Error("ReadAt on handle %d failed: %v", h, err)
		return 0
	}
	entry.cursor += n
	fsLogger.Trace("Read %d bytes from %q at %d (handle %d)", n, entry.name, position, h)
	return n
}

// WriteAt transfers up to len(buf) bytes at an explicit byte offset.
// Unlike ReadAt it leaves the cursor where it was; longstanding
// behavior, kept as-is.
func (fs *FileSystem) WriteAt(h Handle, buf []byte, position int) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	entry, err := fs.ioEntry(h, buf)
	if err != nil {
		fsLogger.Warn("%v", NewError(OpWrite, "", err))
		return 0
	}

	n, err := entry.file.WriteAt(buf, position)
	if err != nil {
		fsLogger.Error("WriteAt on handle %d failed: %v", h, err)
		return 0
	}
	fsLogger.Trace("Wrote %d bytes to %q at %d (handle %d)", n, entry.name, position, h)
	return n
}

// ioEntry validates a handle and buffer for positional I/O.
func (fs *FileSystem) ioEntry(h Handle, buf []byte) (*tableEntry, error) {
	if !fs.table.valid(h) {
		return nil, fmt.Errorf("handle %d: %w", h, ErrInvalidHandle)
	}
	if buf == nil {
		return nil, fmt.Errorf("nil buffer: %w", ErrInvalidArgument)
	}
	return fs.table.entry(h), nil
}

// Close releases a handle's table slot. An invalid handle is reported
// and otherwise ignored.
func (fs *FileSystem) Close(h Handle) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.closeHandle(h)
}

func (fs *FileSystem) closeHandle(h Handle) {
	if !fs.table.valid(h) {
		fsLogger.Warn("%v", NewError(OpClose, "", fmt.Errorf("handle %d: %w", h, ErrInvalidHandle)))
		return
	}
	fsLogger.Debug("Closing %q (handle %d)", fs.table.entry(h).name, h)
	fs.table.release(h)
}

// CloseAll releases every in-use handle; used at shutdown and error
// unwind.
func (fs *FileSystem) CloseAll() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fsLogger.Debug("Closing all open files")
	for i := 0; i < MaxOpenFiles; i++ {
		if fs.table.valid(Handle(i)) {
			fs.closeHandle(Handle(i))
		}
	}
}

// TouchOpenedFiles logs every in-use open-file entry with the given
// tag; a diagnostic aid.
func (fs *FileSystem) TouchOpenedFiles(tag string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	for i := 0; i < MaxOpenFiles; i++ {
		if fs.table.valid(Handle(i)) {
			entry := fs.table.entry(Handle(i))
			fsLogger.Info("[%s] open file %q (handle %d, sector %d, cursor %d)",
				tag, entry.name, i, entry.sector, entry.cursor)
		}
	}
}

// HandleSector returns the header sector an open handle refers to, or
// -1 for an invalid handle.
func (fs *FileSystem) HandleSector(h Handle) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if !fs.table.valid(h) {
		return -1
	}
	return fs.table.entry(h).sector
}

// GetCurrentDirectory returns the sector of the current directory.
func (fs *FileSystem) GetCurrentDirectory() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.currentDir
}

// SetCurrentDirectory replaces the current directory sector. The
// caller is responsible for passing a sector that holds a directory
// header.
func (fs *FileSystem) SetCurrentDirectory(sector int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.currentDir = sector
}

// SetOutput redirects List and Print output; the default is stdout.
func (fs *FileSystem) SetOutput(w io.Writer) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.out = w
}

// List writes a listing of the current directory's entries.
func (fs *FileSystem) List() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	directory, _, err := fs.openDirectory(fs.currentDir)
	if err != nil {
		fsLogger.Error("%v", NewError(OpList, "", err))
		return
	}
	directory.List(fs.out)
}

// Print dumps the free-space map header, the current directory's
// header, the map contents and the directory entries; a debugging aid.
func (fs *FileSystem) Print() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	mapHdr := new(FileHeader)
	if err := mapHdr.FetchFrom(fs.device, FreeMapSector); err != nil {
		fsLogger.Error("Print: %v", err)
		return
	}
	fmt.Fprintln(fs.out, "Free-space map file header:")
	mapHdr.Print(fs.out)

	dirHdr := new(FileHeader)
	if err := dirHdr.FetchFrom(fs.device, fs.currentDir); err != nil {
		fsLogger.Error("Print: %v", err)
		return
	}
	fmt.Fprintln(fs.out, "Current directory file header:")
	dirHdr.Print(fs.out)

	freeMap, err := fs.fetchFreeMap()
	if err != nil {
		fsLogger.Error("Print: %v", err)
		return
	}
	freeMap.Print(fs.out)

	directory, _, err := fs.openDirectory(fs.currentDir)
	if err != nil {
		fsLogger.Error("Print: %v", err)
		return
	}
	directory.Print(fs.out)
}

// FreeSectors returns the number of unallocated sectors.
func (fs *FileSystem) FreeSectors() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	freeMap, err := fs.fetchFreeMap()
	if err != nil {
		fsLogger.Error("%v", err)
		return -1
	}
	return freeMap.NumClear()
}

// DirEntries returns the live entries of the directory stored at the
// given sector. Used by read-only surfaces such as the FUSE layer.
func (fs *FileSystem) DirEntries(sector int) ([]EntryInfo, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	directory, _, err := fs.openDirectory(sector)
	if err != nil {
		return nil, err
	}
	return directory.Entries(), nil
}

// FileLength returns the byte length of the file whose header lives at
// the given sector.
func (fs *FileSystem) FileLength(sector int) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	hdr := new(FileHeader)
	if err := hdr.FetchFrom(fs.device, sector); err != nil {
		return 0, err
	}
	return int(hdr.Length), nil
}

// ReadFileAt reads from the file whose header lives at the given
// sector, without involving the open-file table. Used by read-only
// surfaces such as the FUSE layer.
func (fs *FileSystem) ReadFileAt(sector int, buf []byte, position int) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	file, err := OpenBlockFile(fs.device, sector)
	if err != nil {
		return 0, err
	}
	return file.ReadAt(buf, position)
}
