// Package procmem installs the process-wide memory ceiling SPEC_FULL.md §6
// and §9 call for: a data-segment rlimit applied once at process startup,
// before any core object (store, compiler, searcher) is constructed.
package procmem

import (
	"fmt"

	"github.com/spellart/spellart/spellerr"
	"golang.org/x/sys/unix"
)

// DefaultLimitBytes is the 512 MiB ceiling SPEC_FULL.md's ambient
// "process memory cap" note specifies.
const DefaultLimitBytes = 512 * 1024 * 1024

// Apply sets RLIMIT_DATA to limitBytes for both the soft and hard limit.
// The mmap'd index contents themselves are not counted against RLIMIT_DATA
// on Linux (file-backed MAP_SHARED pages are not heap), so this bounds the
// process's own allocations — scratch compiler nodes, oracle buffers,
// result slices — not the size of the index file being searched.
func Apply(limitBytes uint64) error {
	limit := unix.Rlimit{Cur: limitBytes, Max: limitBytes}
	if err := unix.Setrlimit(unix.RLIMIT_DATA, &limit); err != nil {
		return spellerr.IO(fmt.Sprintf("set RLIMIT_DATA to %d bytes", limitBytes), err)
	}
	return nil
}

// ApplyDefault installs DefaultLimitBytes.
func ApplyDefault() error {
	return Apply(DefaultLimitBytes)
}
