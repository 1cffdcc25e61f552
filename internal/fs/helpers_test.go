package fs

import (
	"path/filepath"
	"testing"

	"sectorfs/internal/disk"
)

func tempImage(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.img")
}

// newTestFS formats a fresh volume on a temporary disk image.
func newTestFS(t *testing.T) *FileSystem {
	t.Helper()

	device, err := disk.Create(tempImage(t))
	if err != nil {
		t.Fatalf("Failed to create disk: %v", err)
	}
	t.Cleanup(func() { device.Close() })

	filesys, err := New(device, true)
	if err != nil {
		t.Fatalf("Failed to format volume: %v", err)
	}
	return filesys
}
