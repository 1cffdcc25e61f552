package disk

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func newTestDisk(t *testing.T) *Disk {
	t.Helper()
	d, err := Create(filepath.Join(t.TempDir(), "test.img"))
	if err != nil {
		t.Fatalf("Failed to create disk: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestCreateAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.img")

	d, err := Create(path)
	if err != nil {
		t.Fatalf("Failed to create disk: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Failed to close disk: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat image: %v", err)
	}
	if info.Size() != DiskSize {
		t.Errorf("Expected image size %d, got %d", DiskSize, info.Size())
	}

	d2, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to reopen disk: %v", err)
	}
	d2.Close()
}

func TestOpenRejectsWrongSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.img")
	if err := os.WriteFile(path, make([]byte, DiskSize/2), 0644); err != nil {
		t.Fatalf("Failed to write image: %v", err)
	}

	if _, err := Open(path); err == nil {
		t.Error("Expected error opening undersized image")
	}
}

func TestSectorRoundTrip(t *testing.T) {
	d := newTestDisk(t)

	want := make([]byte, SectorSize)
	for i := range want {
		want[i] = byte(i % 251)
	}
	if err := d.WriteSector(42, want); err != nil {
		t.Fatalf("Failed to write sector: %v", err)
	}

	got := make([]byte, SectorSize)
	if err := d.ReadSector(42, got); err != nil {
		t.Fatalf("Failed to read sector: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("Sector contents changed across write/read")
	}
}

func TestSectorBounds(t *testing.T) {
	d := newTestDisk(t)
	buf := make([]byte, SectorSize)

	tests := []struct {
		name   string
		sector int
		buf    []byte
	}{
		{name: "negative sector", sector: -1, buf: buf},
		{name: "sector past end", sector: NumSectors, buf: buf},
		{name: "short buffer", sector: 0, buf: buf[:SectorSize-1]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := d.ReadSector(tt.sector, tt.buf); err == nil {
				t.Error("Expected read error")
			}
			if err := d.WriteSector(tt.sector, tt.buf); err == nil {
				t.Error("Expected write error")
			}
		})
	}
}
