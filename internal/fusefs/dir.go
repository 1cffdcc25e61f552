package fusefs

import (
	"context"
	"os"
	"syscall"

	"sectorfs/internal/fs"

	"bazil.org/fuse"
	bazilfs "bazil.org/fuse/fs"
)

// Dir is a directory node backed by a directory sector.
type Dir struct {
	vol    *Volume
	sector int
}

// Attr implements the Node interface, returning directory attributes.
func (d *Dir) Attr(_ context.Context, a *fuse.Attr) error {
	a.Inode = uint64(d.sector)
	a.Mode = os.ModeDir | 0555
	a.Uid = d.vol.uid
	a.Gid = d.vol.gid
	return nil
}

// Lookup implements the NodeStringLookuper interface, resolving one
// name in this directory.
func (d *Dir) Lookup(_ context.Context, name string) (bazilfs.Node, error) {
	fuseLogger.Debug("Looking up %q in directory sector %d", name, d.sector)

	entries, err := d.vol.fs.DirEntries(d.sector)
	if err != nil {
		return nil, fs.ToFuseError(err)
	}
	for _, e := range entries {
		if e.Name != name {
			continue
		}
		if e.Type == fs.EntryDirectory {
			return &Dir{vol: d.vol, sector: e.Sector}, nil
		}
		return &File{vol: d.vol, sector: e.Sector, name: e.Name}, nil
	}

	fuseLogger.Trace("Name %q not found in sector %d", name, d.sector)
	return nil, syscall.ENOENT
}

// ReadDirAll implements the HandleReadDirAller interface, listing the
// directory. The on-disk table already holds "." and "..", so the
// entries map across directly.
func (d *Dir) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	fuseLogger.Debug("Reading directory sector %d", d.sector)

	entries, err := d.vol.fs.DirEntries(d.sector)
	if err != nil {
		return nil, fs.ToFuseError(err)
	}

	dirents := make([]fuse.Dirent, 0, len(entries))
	for _, e := range entries {
		typ := fuse.DT_File
		if e.Type == fs.EntryDirectory {
			typ = fuse.DT_Dir
		}
		dirents = append(dirents, fuse.Dirent{
			Inode: uint64(e.Sector),
			Name:  e.Name,
			Type:  typ,
		})
	}
	return dirents, nil
}
