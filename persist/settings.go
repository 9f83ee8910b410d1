// Package persist serializes the preset store to non-volatile storage
// and validates it on load. The stored image is the preset values and
// the selection index, little-endian, followed by a CRC-32 over those
// bytes. The storage below has no multi-byte atomicity, so a torn
// write shows up as a checksum mismatch on the next load.
package persist

import (
	"encoding/binary"
	"fmt"

	"zeitschalt.net/powertimer/nvram"
	"zeitschalt.net/powertimer/store"
)

// Manager reads and writes the settings image at a fixed offset of a
// storage device.
type Manager struct {
	dev    nvram.Device
	offset int
}

func NewManager(dev nvram.Device) *Manager {
	return &Manager{dev: dev}
}

// ImageSize returns the number of storage bytes used for a store of n
// presets: n values, the index, and the trailing checksum.
func ImageSize(n int) int {
	return 4*n + 4 + 4
}

// Save serializes the store and writes image plus checksum.
func (m *Manager) Save(s *store.Indexed[int]) error {
	image := encode(s)
	sum := Checksum(image)
	image = binary.LittleEndian.AppendUint32(image, sum)

	for i, b := range image {
		if err := m.dev.Put(m.offset+i, b); err != nil {
			return fmt.Errorf("failed to persist settings: %w", err)
		}
	}
	return nil
}

// Load reads the image, verifies the checksum and populates the store.
// It returns false on a checksum mismatch, leaving the store untouched;
// the caller is expected to reset to factory defaults and surface the
// condition. An error is returned only for storage I/O failures.
func (m *Manager) Load(s *store.Indexed[int]) (bool, error) {
	size := ImageSize(s.Len())
	image := make([]byte, size)
	for i := range image {
		b, err := m.dev.Get(m.offset + i)
		if err != nil {
			return false, fmt.Errorf("failed to read settings: %w", err)
		}
		image[i] = b
	}

	payload := image[:size-4]
	stored := binary.LittleEndian.Uint32(image[size-4:])
	if Checksum(payload) != stored {
		return false, nil
	}

	vals := make([]int, s.Len())
	for i := range vals {
		vals[i] = int(binary.LittleEndian.Uint32(payload[4*i:]))
	}
	index := int(binary.LittleEndian.Uint32(payload[4*s.Len():]))
	if index < 0 || index >= s.Len() {
		// A matching checksum with an out-of-range index should not
		// happen; treat it like corruption rather than running with a
		// broken selection.
		return false, nil
	}
	s.SetValues(vals)
	s.SetIndex(index)
	return true, nil
}

func encode(s *store.Indexed[int]) []byte {
	image := make([]byte, 0, 4*s.Len()+4)
	for _, v := range s.Values() {
		image = binary.LittleEndian.AppendUint32(image, uint32(v))
	}
	image = binary.LittleEndian.AppendUint32(image, uint32(s.Index()))
	return image
}
