package nvram

import "fmt"

// Mem is an in-memory Device for tests and the simulator.
type Mem struct {
	data []byte
}

func NewMem(size int) *Mem {
	return &Mem{data: make([]byte, size)}
}

func (m *Mem) Get(offset int) (byte, error) {
	if offset < 0 || offset >= len(m.data) {
		return 0, fmt.Errorf("storage read out of range: offset %d, size %d", offset, len(m.data))
	}
	return m.data[offset], nil
}

func (m *Mem) Put(offset int, value byte) error {
	if offset < 0 || offset >= len(m.data) {
		return fmt.Errorf("storage write out of range: offset %d, size %d", offset, len(m.data))
	}
	m.data[offset] = value
	return nil
}

func (m *Mem) Size() int {
	return len(m.data)
}

// Corrupt flips a single bit, for exercising checksum detection.
func (m *Mem) Corrupt(offset int, bit uint) {
	m.data[offset] ^= 1 << (bit % 8)
}
