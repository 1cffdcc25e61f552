package fs

import (
	"fmt"

	"sectorfs/internal/disk"
	"sectorfs/internal/logging"
)

var fileLogger = logging.GetLogger().WithPrefix("file")

// BlockFile exposes byte-addressed reads and writes over the data
// sectors described by a file header. It carries a seek position for
// sequential access; positional access leaves the position alone.
// Files cannot grow: I/O beyond the fixed length is clipped.
type BlockFile struct {
	device *disk.Disk
	hdr    *FileHeader
	sector int
	pos    int
}

// OpenBlockFile opens the file whose header lives at the given sector.
func OpenBlockFile(d *disk.Disk, sector int) (*BlockFile, error) {
	hdr := new(FileHeader)
	if err := hdr.FetchFrom(d, sector); err != nil {
		return nil, fmt.Errorf("failed to open file at sector %d: %w", sector, err)
	}
	fileLogger.Trace("Opened file at sector %d, length %d", sector, hdr.Length)
	return &BlockFile{device: d, hdr: hdr, sector: sector}, nil
}

// Length returns the file's fixed byte length.
func (f *BlockFile) Length() int {
	return int(f.hdr.Length)
}

// Sector returns the sector holding the file's header.
func (f *BlockFile) Sector() int {
	return f.sector
}

// Header returns the file's in-memory header.
func (f *BlockFile) Header() *FileHeader {
	return f.hdr
}

// Seek sets the position for the next sequential Read or Write.
func (f *BlockFile) Seek(pos int) {
	f.pos = pos
}

// Read reads from the current position, advancing it by the bytes
// transferred.
func (f *BlockFile) Read(buf []byte) (int, error) {
	n, err := f.ReadAt(buf, f.pos)
	f.pos += n
	return n, err
}

// Write writes at the current position, advancing it by the bytes
// transferred.
func (f *BlockFile) Write(buf []byte) (int, error) {
	n, err := f.WriteAt(buf, f.pos)
	f.pos += n
	return n, err
}

// clip bounds a transfer of len(buf) bytes at position to the file's
// length, returning the byte count to transfer.
func (f *BlockFile) clip(buf []byte, position int) int {
	length := int(f.hdr.Length)
	if position < 0 || position >= length {
		return 0
	}
	n := len(buf)
	if position+n > length {
		n = length - position
	}
	return n
}

// ReadAt reads up to len(buf) bytes at the given byte offset. It does
// not move the seek position.
func (f *BlockFile) ReadAt(buf []byte, position int) (int, error) {
	n := f.clip(buf, position)
	if n == 0 {
		return 0, nil
	}

	first := position / disk.SectorSize
	last := (position + n - 1) / disk.SectorSize

	// Read all spanned sectors, then copy out the requested range.
	span := make([]byte, (last-first+1)*disk.SectorSize)
	for s := first; s <= last; s++ {
		off := (s - first) * disk.SectorSize
		if err := f.device.ReadSector(f.hdr.ByteToSector(s*disk.SectorSize), span[off:off+disk.SectorSize]); err != nil {
			return 0, err
		}
	}
	copy(buf[:n], span[position-first*disk.SectorSize:])

	fileLogger.Trace("Read %d bytes at offset %d (sector %d)", n, position, f.sector)
	return n, nil
}

// WriteAt writes up to len(buf) bytes at the given byte offset. It
// does not move the seek position. Partially covered edge sectors are
// read first so their remaining bytes survive.
func (f *BlockFile) WriteAt(buf []byte, position int) (int, error) {
	n := f.clip(buf, position)
	if n == 0 {
		return 0, nil
	}

	first := position / disk.SectorSize
	last := (position + n - 1) / disk.SectorSize
	span := make([]byte, (last-first+1)*disk.SectorSize)

	firstAligned := position%disk.SectorSize == 0
	lastAligned := (position+n)%disk.SectorSize == 0

	if !firstAligned {
		if err := f.device.ReadSector(f.hdr.ByteToSector(first*disk.SectorSize), span[:disk.SectorSize]); err != nil {
			return 0, err
		}
	}
	if !lastAligned {
		// May re-read the first sector when the span is one sector;
		// harmless.
		off := (last - first) * disk.SectorSize
		if err := f.device.ReadSector(f.hdr.ByteToSector(last*disk.SectorSize), span[off:off+disk.SectorSize]); err != nil {
			return 0, err
		}
	}

	copy(span[position-first*disk.SectorSize:], buf[:n])

	for s := first; s <= last; s++ {
		off := (s - first) * disk.SectorSize
		if err := f.device.WriteSector(f.hdr.ByteToSector(s*disk.SectorSize), span[off:off+disk.SectorSize]); err != nil {
			return 0, err
		}
	}

	fileLogger.Trace("Wrote %d bytes at offset %d (sector %d)", n, position, f.sector)
	return n, nil
}
