// Package mmap provides a read-only memory-mapped view of a file.
//
// A File is the immutable "original" byte source of a piece table. The
// mapping lives until Close is called; the slice returned by Data must not be
// used after that.
package mmap

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ErrTooLarge indicates the file does not fit in the address space.
var ErrTooLarge = errors.New("file too large to map")

// File is a read-only memory-mapped file.
type File struct {
	path string
	f    *os.File
	data []byte
	size int64
}

// Open maps the file at path for read-only access.
// A zero-length file opens successfully with no mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("opening %s: is a directory", path)
	}

	size := info.Size()
	m := &File{path: path, f: f, size: size}
	if size == 0 {
		return m, nil
	}
	if int64(int(size)) != size {
		f.Close()
		return nil, fmt.Errorf("mapping %s: %w", path, ErrTooLarge)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mapping %s: %w", path, err)
	}
	m.data = data
	return m, nil
}

// Close releases the mapping and the underlying descriptor.
// It is safe to call Close more than once.
func (m *File) Close() error {
	if m == nil || m.f == nil {
		return nil
	}

	var errs []error
	if m.data != nil {
		if err := unix.Munmap(m.data); err != nil {
			errs = append(errs, fmt.Errorf("unmapping %s: %w", m.path, err))
		}
		m.data = nil
	}
	if err := m.f.Close(); err != nil {
		errs = append(errs, err)
	}
	m.f = nil
	m.size = 0
	return errors.Join(errs...)
}

// Data returns the mapped bytes. It is nil for an empty or closed file.
func (m *File) Data() []byte {
	if m == nil {
		return nil
	}
	return m.data
}

// Len returns the size of the mapped file in bytes.
func (m *File) Len() int64 {
	if m == nil {
		return 0
	}
	return m.size
}

// Valid reports whether the file is open. An empty file is valid even
// though it has no data.
func (m *File) Valid() bool {
	return m != nil && m.f != nil
}

// Path returns the path the file was opened with.
func (m *File) Path() string {
	if m == nil {
		return ""
	}
	return m.path
}
