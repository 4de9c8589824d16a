//go:build unix

package reader

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func mmapFile(f *os.File, size int64) ([]byte, error) {
	if size <= 0 {
		return nil, errors.New("cannot map an empty file")
	}
	if size > int64(int(^uint(0)>>1)) {
		return nil, errors.New("file too large to map")
	}
	return unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
}

func munmap(data []byte) error {
	return unix.Munmap(data)
}
