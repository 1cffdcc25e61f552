// Package fusefs exposes a mounted sectorfs volume as a read-only
// FUSE filesystem. Directory sectors become directory nodes and file
// header sectors become file nodes; the sector number doubles as the
// inode number. All access goes through the coordinator, whose coarse
// lock serializes the kernel's concurrent requests. Mutation stays on
// the coordinator API: fixed-size-at-create files do not map onto
// POSIX write flows.
package fusefs

import (
	"fmt"
	"os"
	"time"

	"sectorfs/internal/fs"
	"sectorfs/internal/logging"

	"bazil.org/fuse"
	bazilfs "bazil.org/fuse/fs"
)

var fuseLogger = logging.GetLogger().WithPrefix("fuse")

// Volume adapts a file system to the FUSE protocol.
type Volume struct {
	fs   *fs.FileSystem
	conn *fuse.Conn
	uid  uint32
	gid  uint32
}

// NewVolume creates a FUSE adapter over an already-mounted file
// system.
func NewVolume(filesys *fs.FileSystem) *Volume {
	return &Volume{
		fs:  filesys,
		uid: safeIntToUint32(os.Getuid()),
		gid: safeIntToUint32(os.Getgid()),
	}
}

// Root implements the bazilfs.FS interface, returning the root
// directory node.
func (v *Volume) Root() (bazilfs.Node, error) {
	fuseLogger.Trace("Getting root directory node")
	return &Dir{vol: v, sector: fs.DirectorySector}, nil
}

func waitForMount(mountPoint string) error {
	for i := 0; i < 30; i++ {
		info, err := os.Stat(mountPoint)
		if err == nil && info.IsDir() {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("mount point not available after 3 seconds")
}

// Mount mounts the volume at mountPoint and starts serving FUSE
// requests in the background.
func (v *Volume) Mount(mountPoint string) error {
	fuseLogger.Info("Mounting volume at %s", mountPoint)

	c, err := fuse.Mount(mountPoint,
		fuse.FSName("sectorfs"),
		fuse.Subtype("sectorfs"),
		fuse.ReadOnly(),
		fuse.DefaultPermissions(),
	)
	if err != nil {
		return fmt.Errorf("mount failed: %w", err)
	}
	v.conn = c

	go func() {
		if err := bazilfs.Serve(c, v); err != nil {
			fuseLogger.Error("FUSE server error: %v", err)
		}
	}()

	if err := waitForMount(mountPoint); err != nil {
		c.Close()
		return fmt.Errorf("mount point failed to initialize: %w", err)
	}

	fuseLogger.Info("Volume mounted")
	return nil
}

// Unmount cleanly unmounts the volume.
func (v *Volume) Unmount(mountPoint string) error {
	fuseLogger.Info("Unmounting volume from %s", mountPoint)
	if v.conn == nil {
		return nil
	}
	if err := fuse.Unmount(mountPoint); err != nil {
		fuseLogger.Error("Unmount failed: %v", err)
		return err
	}
	return v.conn.Close()
}
