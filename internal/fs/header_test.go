package fs

import (
	"errors"
	"testing"

	"sectorfs/internal/disk"
)

func TestHeaderAllocate(t *testing.T) {
	freeMap := NewBitmap(disk.NumSectors)
	freeMap.Mark(FreeMapSector)
	freeMap.Mark(DirectorySector)

	hdr := new(FileHeader)
	if err := hdr.Allocate(freeMap, 300); err != nil {
		t.Fatalf("Failed to allocate: %v", err)
	}

	wantSectors := (300 + disk.SectorSize - 1) / disk.SectorSize
	if int(hdr.Sectors) != wantSectors {
		t.Errorf("Expected %d sectors, got %d", wantSectors, hdr.Sectors)
	}
	if hdr.Length != 300 {
		t.Errorf("Expected length 300, got %d", hdr.Length)
	}
	for i := int32(0); i < hdr.Sectors; i++ {
		if !freeMap.Test(int(hdr.Direct[i])) {
			t.Errorf("Data sector %d not marked in free map", hdr.Direct[i])
		}
	}
}

func TestHeaderAllocateOversize(t *testing.T) {
	freeMap := NewBitmap(disk.NumSectors)
	hdr := new(FileHeader)

	err := hdr.Allocate(freeMap, MaxFileSize+1)
	if !errors.Is(err, ErrOutOfSpace) {
		t.Errorf("Expected ErrOutOfSpace for oversize file, got %v", err)
	}
}

func TestHeaderAllocateNoSpace(t *testing.T) {
	freeMap := NewBitmap(2) // room for 2 sectors at most
	hdr := new(FileHeader)

	err := hdr.Allocate(freeMap, 3*disk.SectorSize)
	if !errors.Is(err, ErrOutOfSpace) {
		t.Errorf("Expected ErrOutOfSpace on a tiny map, got %v", err)
	}
}

func TestHeaderDeallocate(t *testing.T) {
	freeMap := NewBitmap(disk.NumSectors)
	hdr := new(FileHeader)
	if err := hdr.Allocate(freeMap, 500); err != nil {
		t.Fatalf("Failed to allocate: %v", err)
	}

	before := freeMap.NumClear()
	hdr.Deallocate(freeMap)
	if got := freeMap.NumClear(); got != before+int(hdr.Sectors) {
		t.Errorf("Expected %d clear bits after deallocate, got %d",
			before+int(hdr.Sectors), got)
	}
}

func TestHeaderByteToSector(t *testing.T) {
	freeMap := NewBitmap(disk.NumSectors)
	hdr := new(FileHeader)
	if err := hdr.Allocate(freeMap, 3*disk.SectorSize); err != nil {
		t.Fatalf("Failed to allocate: %v", err)
	}

	if got := hdr.ByteToSector(0); got != int(hdr.Direct[0]) {
		t.Errorf("Byte 0 should map to first data sector, got %d", got)
	}
	if got := hdr.ByteToSector(disk.SectorSize); got != int(hdr.Direct[1]) {
		t.Errorf("Byte %d should map to second data sector, got %d", disk.SectorSize, got)
	}
	if got := hdr.ByteToSector(3*disk.SectorSize - 1); got != int(hdr.Direct[2]) {
		t.Errorf("Last byte should map to third data sector, got %d", got)
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	d, err := disk.Create(tempImage(t))
	if err != nil {
		t.Fatalf("Failed to create disk: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	freeMap := NewBitmap(disk.NumSectors)
	freeMap.Mark(2)
	hdr := new(FileHeader)
	if err := hdr.Allocate(freeMap, 200); err != nil {
		t.Fatalf("Failed to allocate: %v", err)
	}
	if err := hdr.WriteBack(d, 2); err != nil {
		t.Fatalf("Failed to write back: %v", err)
	}

	got := new(FileHeader)
	if err := got.FetchFrom(d, 2); err != nil {
		t.Fatalf("Failed to fetch: %v", err)
	}
	if got.Length != hdr.Length || got.Sectors != hdr.Sectors || got.Direct != hdr.Direct {
		t.Error("Header changed across write/fetch")
	}
}
