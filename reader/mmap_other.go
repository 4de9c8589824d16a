//go:build !unix

package reader

import (
	"errors"
	"os"
)

var errMmapUnsupported = errors.New("mmap not supported on this platform")

func mmapFile(f *os.File, size int64) ([]byte, error) {
	return nil, errMmapUnsupported
}

func munmap(data []byte) error {
	return errMmapUnsupported
}
