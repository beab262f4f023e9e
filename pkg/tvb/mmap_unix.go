//go:build unix

package tvb

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// MapFile memory-maps path read-only and returns a Buffer over its
// contents plus a close function that must be called once the caller is
// done dissecting frames sourced from it. Intended for large capture blobs
// where copying the whole file into a []byte first would be wasteful.
func MapFile(path string) (*BytesBuffer, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	size := info.Size()
	if size == 0 {
		return New(nil), func() error { return nil }, nil
	}
	if size > int64(^uint(0)>>1) {
		return nil, nil, fmt.Errorf("tvb: file too large to map (%d bytes)", size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() error { return unix.Munmap(data) }
	return New(data), closeFn, nil
}
