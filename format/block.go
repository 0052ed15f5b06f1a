package format

// PaddedSize rounds n up to the next multiple of BlockSize.
func PaddedSize(n uint64) uint64 {
	if rem := n % BlockSize; rem != 0 {
		return n + (BlockSize - rem)
	}
	return n
}

// Padding is the number of zero bytes that follow n bytes of content.
func Padding(n uint64) uint64 {
	return PaddedSize(n) - n
}

// IsZeroBlock reports whether every byte of b is zero.
func IsZeroBlock(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
