//go:build linux

package secret

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// allocate maps size bytes of anonymous memory. mlock and MADV_DONTDUMP are
// applied when permitted; a failed mmap falls back to the heap.
func allocate(size int) (data []byte, mapped, locked bool) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return make([]byte, size), false, false
	}

	// RLIMIT_MEMLOCK is often small inside containers.
	locked = unix.Mlock(data) == nil
	_ = unix.Madvise(data, unix.MADV_DONTDUMP)

	return data, true, locked
}

func release(data []byte, mapped, locked bool) error {
	if !mapped {
		return nil
	}

	var firstErr error
	if locked {
		if err := unix.Munlock(data); err != nil {
			firstErr = fmt.Errorf("secret: munlock failed: %w", err)
		}
	}
	if err := unix.Munmap(data); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("secret: munmap failed: %w", err)
	}
	return firstErr
}
