package link

// Crc8 computes the frame checksum: CRC-8 with polynomial 0x07, initial
// register 0x00, MSB first. The bit-by-bit form below is the reference
// algorithm shared with the controller firmware; it must not be replaced
// by anything that diverges in result.
func Crc8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
