/*
	Package format is the USTAR header codec.

	It converts between the fixed 512-byte on-disk header and the `Metadata`
	record, and provides the octal field codec, the header checksum, and
	block alignment math those conversions rest on.
	Nothing in this package knows about whole archives; see the `archive`
	package for that.
*/
package format

// BlockSize is the alignment unit for headers and content.
const BlockSize = 512

// HeaderSize is the size of one encoded header.  It's exactly one block.
const HeaderSize = BlockSize

// TerminatorSize is the size of the end-of-archive marker: two zero blocks.
const TerminatorSize = 2 * BlockSize

// Magic is the full 8-byte sentinel at offset 257: "ustar\x00" plus version "00".
const Magic = "ustar\x0000"

// Type flags we treat specially.  Anything else is classified as a directory.
const (
	TypeFlagFile    byte = '0'
	TypeFlagFileOld byte = 0
	TypeFlagSymlink byte = '2'
	TypeFlagDir     byte = '5'
)

// field is one fixed byte range of the header.
type field struct {
	off, width int
}

func (f field) of(hdr *[HeaderSize]byte) []byte {
	return hdr[f.off : f.off+f.width]
}

// Header layout, in on-disk order.
var (
	fieldName     = field{0, 100}
	fieldMode     = field{100, 8}
	fieldUID      = field{108, 8}
	fieldGID      = field{116, 8}
	fieldSize     = field{124, 12}
	fieldMtime    = field{136, 12}
	fieldChecksum = field{148, 8}
	fieldTypeFlag = field{156, 1}
	fieldLinkName = field{157, 100}
	fieldMagic    = field{257, 8}
	fieldUname    = field{265, 32}
	fieldGname    = field{297, 32}
	fieldDevMajor = field{329, 8}
	fieldDevMinor = field{337, 8}
	fieldPrefix   = field{345, 155}
	fieldReserved = field{500, 12}
)
