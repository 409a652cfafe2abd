// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// lockedAlloc returns size bytes of anonymous memory outside the Go
// heap, locked into RAM (mlock) and excluded from core dumps
// (MADV_DONTDUMP). Any failure releases what was acquired and returns
// an error; the caller decides whether to fall back to heap memory.
func lockedAlloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: allocation size must be positive, got %d", size)
	}

	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap failed: %w", err)
	}

	if err := unix.Mlock(data); err != nil {
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: mlock failed: %w", err)
	}

	if err := unix.Madvise(data, unix.MADV_DONTDUMP); err != nil {
		unix.Munlock(data)
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: madvise(MADV_DONTDUMP) failed: %w", err)
	}

	return data, nil
}

// lockedFree zeroes, unlocks and unmaps memory from lockedAlloc. It
// only touches its argument so it can run as a runtime cleanup.
func lockedFree(data []byte) error {
	clear(data)

	var firstError error
	if err := unix.Munlock(data); err != nil {
		firstError = fmt.Errorf("secret: munlock failed: %w", err)
	}
	if err := unix.Munmap(data); err != nil && firstError == nil {
		firstError = fmt.Errorf("secret: munmap failed: %w", err)
	}
	return firstError
}
