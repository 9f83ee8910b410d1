package persist

// Reflected CRC-32 (polynomial 0xEDB88320), computed nibble-wise with a
// 16-entry table. This is the same layout small EEPROM-backed firmware
// uses to keep the table in 64 bytes; the result is bit-identical to
// hash/crc32.ChecksumIEEE.

var crcTable [16]uint32

func init() {
	for i := range crcTable {
		crc := uint32(i)
		for b := 0; b < 4; b++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0xEDB88320
			} else {
				crc >>= 1
			}
		}
		crcTable[i] = crc
	}
}

// Checksum returns the CRC-32 of data, seeded with all-ones and
// finalized with a ones-complement.
func Checksum(data []byte) uint32 {
	crc := ^uint32(0)
	for _, b := range data {
		crc = crcTable[(crc^uint32(b))&0x0F] ^ (crc >> 4)
		crc = crcTable[(crc^uint32(b>>4))&0x0F] ^ (crc >> 4)
	}
	return ^crc
}
