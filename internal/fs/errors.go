// Package fs implements the file system core: the on-disk structures
// (free-space map, directories, file headers) and the coordinator that
// sequences operations across them.
//
// This file contains error types and error handling utilities.
package fs

import (
	"errors"
	"fmt"
	"syscall"
)

var (
	// ErrInvalidArgument indicates an empty name, negative size or nil buffer
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidHandle indicates an out-of-range, unused or closed handle
	ErrInvalidHandle = errors.New("invalid file handle")

	// ErrNotFound indicates the name is absent from the resolved directory
	ErrNotFound = errors.New("no such file or directory")

	// ErrAlreadyExists indicates the name is already present when creating
	ErrAlreadyExists = errors.New("file or directory already exists")

	// ErrNotADirectory indicates a navigation target that is not a directory
	ErrNotADirectory = errors.New("not a directory")

	// ErrOutOfSpace indicates the free-space map cannot satisfy a request
	ErrOutOfSpace = errors.New("out of disk space")

	// ErrDirectoryFull indicates the directory is at its entry capacity
	ErrDirectoryFull = errors.New("directory is full")

	// ErrTableFull indicates the open-file table has no free slot
	ErrTableFull = errors.New("open-file table is full")
)

// Error wraps a file system failure with the operation and name it
// concerned, for diagnostics.
type Error struct {
	Op   string // Operation that failed (e.g. "create", "open")
	Name string // Affected name, if any
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("operation %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("operation %s on %q failed: %v", e.Op, e.Name, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given operation, name and
// underlying error.
func NewError(op, name string, err error) *Error {
	return &Error{Op: op, Name: name, Err: err}
}

// ToFuseError converts a file system error to the syscall error the
// FUSE layer expects.
func ToFuseError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, ErrInvalidArgument):
		return syscall.EINVAL
	case errors.Is(err, ErrInvalidHandle):
		return syscall.EBADF
	case errors.Is(err, ErrAlreadyExists):
		return syscall.EEXIST
	case errors.Is(err, ErrNotADirectory):
		return syscall.ENOTDIR
	case errors.Is(err, ErrOutOfSpace), errors.Is(err, ErrDirectoryFull):
		return syscall.ENOSPC
	case errors.Is(err, ErrTableFull):
		return syscall.EMFILE
	default:
		return syscall.EIO
	}
}

// Common operation names for consistent logging and error reporting
const (
	OpFormat = "format" // Formatting the volume
	OpMount  = "mount"  // Mounting an existing volume
	OpCreate = "create" // Creating a new file
	OpOpen   = "open"   // Opening a file
	OpRead   = "read"   // Reading from a file
	OpWrite  = "write"  // Writing to a file
	OpClose  = "close"  // Closing a handle
	OpRemove = "remove" // Removing a file
	OpMkdir  = "mkdir"  // Creating a new directory
	OpChdir  = "chdir"  // Changing the current directory
	OpList   = "list"   // Listing directory contents
	OpLookup = "lookup" // Resolving a name in a directory
)
