//go:build !unix

package tvb

import "os"

// MapFile reads the entire file when mmap is not available on this
// platform.
func MapFile(path string) (*BytesBuffer, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return New(data), func() error { return nil }, nil
}
