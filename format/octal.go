package format

import (
	. "github.com/warpfork/go-errcat"

	"github.com/polydawn/ustar"
)

/*
	DecodeOctal reads a fixed-width ASCII-octal field.

	Leading spaces are skipped (some writers right-align with spaces);
	after that, digits are consumed left to right until the first byte that
	is not '0'-'7' -- normally the terminating space or NUL.
	A field with no digits decodes to zero.
	Digits past the point where the value would overflow 64 bits are ignored.
*/
func DecodeOctal(field []byte) uint64 {
	i := 0
	for i < len(field) && field[i] == ' ' {
		i++
	}
	var v uint64
	for ; i < len(field); i++ {
		c := field[i]
		if c < '0' || c > '7' {
			break
		}
		if v > (^uint64(0))>>3 {
			break
		}
		v = v<<3 | uint64(c-'0')
	}
	return v
}

/*
	EncodeOctal writes v in base 8 into dst, using all of dst:
	the digits are right-aligned and unused leading positions become '0'.

	If v needs more than len(dst) digits, an ErrFieldOverflow error is
	returned and dst is not modified.
	Callers that want a terminator pass a slice one byte shorter than the field.
*/
func EncodeOctal(dst []byte, v uint64) error {
	if !FitsOctal(v, len(dst)) {
		return Errorf(ustar.ErrFieldOverflow, "value %d does not fit in %d octal digits", v, len(dst))
	}
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = byte('0' + v&7)
		v >>= 3
	}
	return nil
}

// FitsOctal reports whether v can be written in at most `digits` octal digits.
func FitsOctal(v uint64, digits int) bool {
	if digits >= 22 { // 8^22 > 2^64
		return true
	}
	return v < uint64(1)<<(3*uint(digits))
}
