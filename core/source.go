package core

import (
	"errors"
	"io"
)

// Source is a finite, random-access byte sequence. *bytes.Reader and
// *strings.Reader satisfy it directly; reader.Reader provides file handle and
// memory-mapped implementations.
type Source interface {
	io.ReaderAt
	Size() int64
}

// NewSeekerSource adapts a seekable stream to a Source. The stream's size is
// taken by seeking to its end. Reads move the stream's cursor, so the stream
// must not be used by anyone else while the Source is in use.
func NewSeekerSource(rs io.ReadSeeker) (Source, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, newError("size", -1, ErrIO, err)
	}
	if ra, ok := rs.(io.ReaderAt); ok {
		return &readerAtSource{ra: ra, size: size}, nil
	}
	return &seekerSource{rs: rs, size: size}, nil
}

type readerAtSource struct {
	ra   io.ReaderAt
	size int64
}

func (s *readerAtSource) ReadAt(p []byte, off int64) (int, error) {
	return s.ra.ReadAt(p, off)
}

func (s *readerAtSource) Size() int64 { return s.size }

type seekerSource struct {
	rs   io.ReadSeeker
	size int64
}

func (s *seekerSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("negative offset")
	}
	if off >= s.size {
		return 0, io.EOF
	}
	if _, err := s.rs.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	n, err := io.ReadFull(s.rs, p)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return n, err
}

func (s *seekerSource) Size() int64 { return s.size }
