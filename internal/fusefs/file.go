package fusefs

import (
	"context"

	"sectorfs/internal/disk"
	"sectorfs/internal/fs"

	"bazil.org/fuse"
	bazilfs "bazil.org/fuse/fs"
)

// File is a file node backed by a file header sector.
type File struct {
	vol    *Volume
	sector int
	name   string
}

// Attr implements the Node interface, returning the file's attributes.
func (f *File) Attr(_ context.Context, a *fuse.Attr) error {
	fuseLogger.Trace("Getting attributes for %q (sector %d)", f.name, f.sector)

	length, err := f.vol.fs.FileLength(f.sector)
	if err != nil {
		return fs.ToFuseError(err)
	}

	a.Inode = uint64(f.sector)
	a.Mode = 0444
	a.Size = safeInt64ToUint64(int64(length))
	a.Uid = f.vol.uid
	a.Gid = f.vol.gid
	a.BlockSize = disk.SectorSize
	a.Blocks = safeInt64ToUint64(int64((length + 511) / 512))
	return nil
}

// Open implements the NodeOpener interface. The volume is read-only,
// so writes are rejected at mount level; all opens share the same
// handle state.
func (f *File) Open(_ context.Context, _ *fuse.OpenRequest, resp *fuse.OpenResponse) (bazilfs.Handle, error) {
	fuseLogger.Debug("Opening %q (sector %d)", f.name, f.sector)
	resp.Flags |= fuse.OpenDirectIO
	return &FileHandle{vol: f.vol, sector: f.sector, name: f.name}, nil
}

// FileHandle is an open file handle over a file header sector.
type FileHandle struct {
	vol    *Volume
	sector int
	name   string
}

// Read implements the HandleReader interface, reading data from the
// file's block extent.
func (fh *FileHandle) Read(_ context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	fuseLogger.Trace("Reading %d bytes from %q at offset %d", req.Size, fh.name, req.Offset)

	buf := make([]byte, req.Size)
	n, err := fh.vol.fs.ReadFileAt(fh.sector, buf, int(req.Offset))
	if err != nil {
		return fs.ToFuseError(err)
	}
	resp.Data = buf[:n]
	return nil
}

// Release implements the HandleReleaser interface. Block files hold no
// kernel resources, so there is nothing to tear down.
func (fh *FileHandle) Release(_ context.Context, _ *fuse.ReleaseRequest) error {
	fuseLogger.Trace("Releasing %q", fh.name)
	return nil
}
