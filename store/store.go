// Package store implements the byte-mapped file store the ART node layout
// is read from and written into: a file handle paired with a contiguous,
// remappable byte window over its contents, addressed by absolute offset.
//
// The mapping itself follows the mmap/munmap-via-golang.org/x/sys/unix shape
// used elsewhere in this project's reference pool for memory-mapped
// key-value stores, in place of the raw C mmap/munmap externs the system
// this package reimplements relies on.
package store

import (
	"os"

	"github.com/spellart/spellart/spellerr"
	"golang.org/x/sys/unix"
)

// Mode is the access mode a Store is opened with.
type Mode int

const (
	// ReadOnly maps the file for reading only; Append is unavailable.
	ReadOnly Mode = iota
	// ReadWrite maps the file for reading and appending.
	ReadWrite
)

// Store owns a file handle and a byte-slice view over its mapped contents.
// Offset 0 is reserved and never returned by Append; it is the sentinel
// "absent" value for child references into the store.
type Store struct {
	file *os.File
	mode Mode
	data []byte
}

// Open maps the current contents of path. A zero-length file succeeds with
// an empty, non-nil data slice and Len() == 0. ReadWrite creates the file if
// it does not exist.
func Open(path string, mode Mode) (*Store, error) {
	flags := os.O_RDONLY
	if mode == ReadWrite {
		flags = os.O_RDWR | os.O_CREATE
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, spellerr.IO("open store file", err)
	}

	s := &Store{file: f, mode: mode}
	if err := s.mapCurrent(); err != nil {
		_ = f.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) mapCurrent() error {
	info, err := s.file.Stat()
	if err != nil {
		return spellerr.IO("stat store file", err)
	}

	if info.Size() == 0 {
		s.data = []byte{}
		return nil
	}

	prot := unix.PROT_READ
	if s.mode == ReadWrite {
		prot |= unix.PROT_WRITE
	}

	data, err := unix.Mmap(int(s.file.Fd()), 0, int(info.Size()), prot, unix.MAP_SHARED)
	if err != nil {
		return spellerr.IO("mmap store file", err)
	}

	s.data = data
	return nil
}

func (s *Store) unmapCurrent() error {
	if len(s.data) == 0 {
		s.data = nil
		return nil
	}

	if err := unix.Munmap(s.data); err != nil {
		return spellerr.IO("munmap store file", err)
	}
	s.data = nil
	return nil
}

// Len returns the current mapped length in bytes.
func (s *Store) Len() int {
	return len(s.data)
}

// Base returns the current byte-slice view. Callers must not retain this
// slice across a call to Append: the view is invalidated by remapping.
func (s *Store) Base() []byte {
	return s.data
}

// Bytes returns the n bytes starting at absolute offset off, bounds-checked
// against the current mapping.
func (s *Store) Bytes(off, n uint64) ([]byte, error) {
	end := off + n
	if off == 0 || end > uint64(len(s.data)) || end < off {
		return nil, spellerr.IO("store read out of bounds", nil)
	}
	return s.data[off:end], nil
}

// RootBytes returns the n bytes at the fixed root offset (0). The root is
// the one node address that is never referenced as a child pointer, so
// unlike Bytes it does not reject offset 0.
func (s *Store) RootBytes(n uint64) ([]byte, error) {
	if n > uint64(len(s.data)) {
		return nil, spellerr.IO("store root read out of bounds", nil)
	}
	return s.data[:n], nil
}

// Append writes count copies of payload at the current end of file, remaps,
// and returns the absolute byte offset the first copy was written at.
// Requires ReadWrite mode.
func (s *Store) Append(payload []byte, count int) (uint64, error) {
	if s.mode != ReadWrite {
		return 0, spellerr.IO("append requires a read-write store", nil)
	}
	if count <= 0 {
		return 0, spellerr.IO("append count must be positive", nil)
	}

	offset, err := s.file.Seek(0, os.SEEK_END)
	if err != nil {
		return 0, spellerr.IO("seek store file", err)
	}
	if offset == 0 {
		// offset 0 is the "absent" sentinel and must never be handed out as
		// a real child reference; the compiler reserves the root slot
		// first specifically to push every subsequent append past it.
		return 0, spellerr.IO("append at offset zero is reserved", nil)
	}

	for i := 0; i < count; i++ {
		if _, err := s.file.Write(payload); err != nil {
			return 0, spellerr.IO("write store payload", err)
		}
	}

	if err := s.unmapCurrent(); err != nil {
		return 0, err
	}
	if err := s.mapCurrent(); err != nil {
		return 0, err
	}

	return uint64(offset), nil
}

// WriteAt overwrites len(payload) bytes at absolute offset off with payload,
// then remaps. The compiler uses it to overwrite the reserved root slot
// once the root node is finished; parent pointer slots are filled in
// before a parent is appended, not patched on disk.
func (s *Store) WriteAt(off uint64, payload []byte) error {
	if s.mode != ReadWrite {
		return spellerr.IO("write-at requires a read-write store", nil)
	}

	if _, err := s.file.WriteAt(payload, int64(off)); err != nil {
		return spellerr.IO("write-at store payload", err)
	}

	if err := s.unmapCurrent(); err != nil {
		return err
	}
	return s.mapCurrent()
}

// Reserve appends n zero bytes without interpreting them, used by the
// compiler to reserve the root node's slot before its final fan-out is
// known. Returns the offset the reservation starts at.
func (s *Store) Reserve(n int) (uint64, error) {
	start, err := s.file.Seek(0, os.SEEK_END)
	if err != nil {
		return 0, spellerr.IO("seek store file", err)
	}

	zero := make([]byte, n)
	if _, err := s.file.Write(zero); err != nil {
		return 0, spellerr.IO("reserve store slot", err)
	}

	if err := s.unmapCurrent(); err != nil {
		return 0, err
	}
	if err := s.mapCurrent(); err != nil {
		return 0, err
	}

	return uint64(start), nil
}

// Close releases the mapping and closes the underlying file handle. It is
// safe to call Close multiple times.
func (s *Store) Close() error {
	if err := s.unmapCurrent(); err != nil {
		return err
	}
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return spellerr.IO("close store file", err)
	}
	return nil
}
