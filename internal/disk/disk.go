// Package disk implements the raw block device: a fixed number of
// fixed-size sectors stored in a backing image file. Sectors are the
// unit of transfer; callers read and write exactly one at a time.
package disk

import (
	"fmt"
	"os"

	"sectorfs/internal/logging"
)

const (
	// SectorSize is the number of bytes in one sector.
	SectorSize = 128

	// NumSectors is the total number of sectors on the device.
	NumSectors = 1024

	// DiskSize is the total size of the backing image in bytes.
	DiskSize = SectorSize * NumSectors
)

var diskLogger = logging.GetLogger().WithPrefix("disk")

// Disk is a block device backed by an image file.
type Disk struct {
	file *os.File
	path string
}

// Create creates a new zero-filled disk image at path, truncating any
// existing file there.
func Create(path string) (*Disk, error) {
	diskLogger.Info("Creating disk image: %s (%d sectors of %d bytes)",
		path, NumSectors, SectorSize)

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create disk image %s: %w", path, err)
	}
	if err := file.Truncate(DiskSize); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to size disk image %s: %w", path, err)
	}

	return &Disk{file: file, path: path}, nil
}

// Open opens an existing disk image and validates its geometry.
func Open(path string) (*Disk, error) {
	diskLogger.Debug("Opening disk image: %s", path)

	file, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open disk image %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat disk image %s: %w", path, err)
	}
	if info.Size() != DiskSize {
		file.Close()
		return nil, fmt.Errorf("disk image %s has size %d, want %d",
			path, info.Size(), DiskSize)
	}

	return &Disk{file: file, path: path}, nil
}

// ReadSector reads one sector into buf. buf must be exactly SectorSize
// bytes long.
func (d *Disk) ReadSector(sector int, buf []byte) error {
	if sector < 0 || sector >= NumSectors {
		return fmt.Errorf("read of sector %d out of range [0, %d)", sector, NumSectors)
	}
	if len(buf) != SectorSize {
		return fmt.Errorf("sector buffer has %d bytes, want %d", len(buf), SectorSize)
	}

	diskLogger.Trace("Reading sector %d", sector)
	if _, err := d.file.ReadAt(buf, int64(sector)*SectorSize); err != nil {
		return fmt.Errorf("failed to read sector %d: %w", sector, err)
	}
	return nil
}

// WriteSector writes one sector from buf. buf must be exactly
// SectorSize bytes long.
func (d *Disk) WriteSector(sector int, buf []byte) error {
	if sector < 0 || sector >= NumSectors {
		return fmt.Errorf("write of sector %d out of range [0, %d)", sector, NumSectors)
	}
	if len(buf) != SectorSize {
		return fmt.Errorf("sector buffer has %d bytes, want %d", len(buf), SectorSize)
	}

	diskLogger.Trace("Writing sector %d", sector)
	if _, err := d.file.WriteAt(buf, int64(sector)*SectorSize); err != nil {
		return fmt.Errorf("failed to write sector %d: %w", sector, err)
	}
	return nil
}

// Path returns the path of the backing image file.
func (d *Disk) Path() string {
	return d.path
}

// Sync flushes buffered writes to the backing image.
func (d *Disk) Sync() error {
	return d.file.Sync()
}

// Close syncs and closes the backing image file.
func (d *Disk) Close() error {
	diskLogger.Debug("Closing disk image: %s", d.path)
	if err := d.file.Sync(); err != nil {
		d.file.Close()
		return fmt.Errorf("failed to sync disk image %s: %w", d.path, err)
	}
	return d.file.Close()
}
