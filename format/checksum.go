package format

import (
	"strconv"

	. "github.com/warpfork/go-errcat"

	"github.com/polydawn/ustar"
)

/*
	Checksum computes the ustar header checksum: the unsigned sum of all
	512 header bytes, where the eight bytes of the checksum field itself
	count as ASCII spaces regardless of their actual content.
*/
func Checksum(hdr *[HeaderSize]byte) uint64 {
	var sum uint64
	for i, c := range hdr {
		if i >= fieldChecksum.off && i < fieldChecksum.off+fieldChecksum.width {
			sum += ' '
			continue
		}
		sum += uint64(c)
	}
	return sum
}

// StoredChecksum decodes the value written in the header's checksum field.
func StoredChecksum(hdr *[HeaderSize]byte) uint64 {
	return DecodeOctal(fieldChecksum.of(hdr))
}

// VerifyChecksum compares the stored checksum with the computed one.
// It returns the stored value, and an ErrChecksumMismatch error if they differ.
func VerifyChecksum(hdr *[HeaderSize]byte) (uint64, error) {
	stored := StoredChecksum(hdr)
	computed := Checksum(hdr)
	if stored != computed {
		return stored, ErrorDetailed(
			ustar.ErrChecksumMismatch,
			"checksum mismatch: header says "+strconv.FormatUint(stored, 8)+", content sums to "+strconv.FormatUint(computed, 8),
			map[string]string{
				"stored":   strconv.FormatUint(stored, 8),
				"computed": strconv.FormatUint(computed, 8),
			},
		)
	}
	return stored, nil
}

/*
	writeChecksum blanks the checksum field, sums the header, and writes the
	result as six octal digits followed by a NUL and a space.

	The largest possible sum (512 * 255) fits in six octal digits,
	so this cannot overflow.
*/
func writeChecksum(hdr *[HeaderSize]byte) uint64 {
	f := fieldChecksum.of(hdr)
	for i := range f {
		f[i] = ' '
	}
	sum := Checksum(hdr)
	if err := EncodeOctal(f[:6], sum); err != nil {
		panic(err)
	}
	f[6] = 0
	f[7] = ' '
	return sum
}
