// Package nvram provides byte-addressable non-volatile storage in the
// style of a small EEPROM: single-byte reads and writes over a
// fixed-size region. Writes are power-loss-safe per byte only; callers
// that need multi-byte integrity must add their own checksum.
package nvram

// Device is the byte-addressable storage consumed by the persistence
// layer.
type Device interface {
	// Get reads the byte at offset.
	Get(offset int) (byte, error)
	// Put writes the byte at offset.
	Put(offset int, value byte) error
	// Size returns the capacity of the region in bytes.
	Size() int
}
