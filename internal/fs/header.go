package fs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"sectorfs/internal/disk"
	"sectorfs/internal/logging"
)

const (
	// NumDirect is the number of direct block pointers a header holds.
	// The header struct is arranged to be exactly one sector.
	NumDirect = (disk.SectorSize - 8) / 4

	// MaxFileSize is the largest file the direct extent can describe.
	MaxFileSize = NumDirect * disk.SectorSize
)

var headerLogger = logging.GetLogger().WithPrefix("header")

// FileHeader is the fixed-size on-disk record describing a file's block
// extent: its byte length and the data sectors assigned to it. The
// length is fixed at creation time; there is no dynamic growth.
type FileHeader struct {
	Length  int32
	Sectors int32
	Direct  [NumDirect]int32
}

// sectorsForBytes returns the number of whole sectors needed to hold
// size bytes.
func sectorsForBytes(size int) int {
	return (size + disk.SectorSize - 1) / disk.SectorSize
}

// Allocate assigns data sectors for a file of the given size, marking
// them in the free-space map snapshot. On failure the snapshot may have
// been partially mutated; callers discard it without writing back.
func (h *FileHeader) Allocate(freeMap *Bitmap, size int) error {
	if size > MaxFileSize {
		return fmt.Errorf("%d bytes exceeds maximum file size %d: %w",
			size, MaxFileSize, ErrOutOfSpace)
	}

	numSectors := sectorsForBytes(size)
	if freeMap.NumClear() < numSectors {
		return fmt.Errorf("%d sectors needed, %d free: %w",
			numSectors, freeMap.NumClear(), ErrOutOfSpace)
	}

	h.Length = int32(size)
	h.Sectors = int32(numSectors)
	for i := 0; i < numSectors; i++ {
		sector := freeMap.FindAndMark()
		if sector == -1 {
			return fmt.Errorf("free-space map exhausted mid-allocation: %w", ErrOutOfSpace)
		}
		h.Direct[i] = int32(sector)
	}

	headerLogger.Debug("Allocated %d sectors for %d bytes", numSectors, size)
	return nil
}

// Deallocate returns the header's data sectors to the free-space map
// snapshot.
func (h *FileHeader) Deallocate(freeMap *Bitmap) {
	for i := int32(0); i < h.Sectors; i++ {
		freeMap.Clear(int(h.Direct[i]))
	}
	headerLogger.Debug("Deallocated %d sectors", h.Sectors)
}

// FetchFrom reads the header from the given sector of the device.
func (h *FileHeader) FetchFrom(d *disk.Disk, sector int) error {
	buf := make([]byte, disk.SectorSize)
	if err := d.ReadSector(sector, buf); err != nil {
		return fmt.Errorf("failed to fetch header from sector %d: %w", sector, err)
	}
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, h); err != nil {
		return fmt.Errorf("failed to decode header at sector %d: %w", sector, err)
	}
	return nil
}

// WriteBack writes the header to the given sector of the device.
func (h *FileHeader) WriteBack(d *disk.Disk, sector int) error {
	buf := bytes.NewBuffer(make([]byte, 0, disk.SectorSize))
	if err := binary.Write(buf, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("failed to encode header for sector %d: %w", sector, err)
	}
	data := buf.Bytes()[:disk.SectorSize]
	if err := d.WriteSector(sector, data); err != nil {
		return fmt.Errorf("failed to write back header to sector %d: %w", sector, err)
	}
	return nil
}

// ByteToSector returns the device sector holding the byte at offset.
func (h *FileHeader) ByteToSector(offset int) int {
	return int(h.Direct[offset/disk.SectorSize])
}

// Print dumps the header contents to w, for the Print diagnostic.
func (h *FileHeader) Print(w io.Writer) {
	fmt.Fprintf(w, "File header: %d bytes in %d sectors\n", h.Length, h.Sectors)
	fmt.Fprint(w, "Data sectors: ")
	for i := int32(0); i < h.Sectors; i++ {
		fmt.Fprintf(w, "%d ", h.Direct[i])
	}
	fmt.Fprintln(w)
}
