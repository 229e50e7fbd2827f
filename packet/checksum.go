package packet

// FinalizeChecksum folds length bytes from c into sum and returns the
// one's-complement of the result. A trailing odd byte is treated as the
// high half of a word whose low half is zero. c is taken by value so the
// caller's read position is left untouched.
func FinalizeChecksum(c Cursor, length int, sum uint32) (uint16, error) {
	b, err := c.ReadBytes(length)
	if err != nil {
		return 0, parseError(TruncatedBody, "checksum body too small: need %d bytes, have %d", length, c.Len())
	}
	return fold(sum + checksumAddition(b)), nil
}

// Checksum is FinalizeChecksum over all of b.
func Checksum(b []byte, sum uint32) uint16 {
	return fold(sum + checksumAddition(b))
}

func checksumAddition(b []byte) uint32 {
	var sum uint32
	for i := 0; i+1 < len(b); i += 2 {
		sum += uint32(b[i])<<8 | uint32(b[i+1])
	}
	if len(b)%2 == 1 {
		sum += uint32(b[len(b)-1]) << 8
	}
	return sum
}

func fold(sum uint32) uint16 {
	for sum>>16 > 0 {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum)
}
