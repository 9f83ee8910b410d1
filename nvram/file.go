package nvram

import (
	"fmt"
	"os"
)

// File is a Device backed by a fixed-size file. It stands in for the
// EEPROM on hosted targets; each Put is written and synced
// individually to mimic the per-byte durability of the real part.
type File struct {
	f    *os.File
	size int
}

// OpenFile opens (or creates and zero-fills) a storage file of the
// given size.
func OpenFile(path string, size int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage file %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat storage file %s: %w", path, err)
	}
	if info.Size() < int64(size) {
		if err := f.Truncate(int64(size)); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to size storage file %s: %w", path, err)
		}
	}
	return &File{f: f, size: size}, nil
}

func (s *File) Get(offset int) (byte, error) {
	if offset < 0 || offset >= s.size {
		return 0, fmt.Errorf("storage read out of range: offset %d, size %d", offset, s.size)
	}
	buf := make([]byte, 1)
	if _, err := s.f.ReadAt(buf, int64(offset)); err != nil {
		return 0, fmt.Errorf("storage read at %d: %w", offset, err)
	}
	return buf[0], nil
}

func (s *File) Put(offset int, value byte) error {
	if offset < 0 || offset >= s.size {
		return fmt.Errorf("storage write out of range: offset %d, size %d", offset, s.size)
	}
	if _, err := s.f.WriteAt([]byte{value}, int64(offset)); err != nil {
		return fmt.Errorf("storage write at %d: %w", offset, err)
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("storage sync: %w", err)
	}
	return nil
}

func (s *File) Size() int {
	return s.size
}

func (s *File) Close() error {
	return s.f.Close()
}
