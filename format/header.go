package format

import (
	. "github.com/warpfork/go-errcat"

	"github.com/polydawn/ustar"
)

/*
	DecodeHeader maps one 512-byte header to a Metadata record.

	The checksum is checked first (ErrChecksumMismatch), since its field
	comes before the magic sentinel; then the magic (ErrFormatMismatch).
	On error the returned Metadata is the zero value.
	Fields are read in on-disk order; the reserved tail is ignored.
*/
func DecodeHeader(hdr *[HeaderSize]byte) (Metadata, error) {
	checksum, err := VerifyChecksum(hdr)
	if err != nil {
		return Metadata{}, err
	}
	if string(fieldMagic.of(hdr)) != Magic {
		return Metadata{}, Errorf(ustar.ErrFormatMismatch, "not a ustar header: magic is %q, expected %q", fieldMagic.of(hdr), Magic)
	}

	var m Metadata
	copy(m.Name[:], fieldName.of(hdr))
	m.Mode = DecodeOctal(fieldMode.of(hdr))
	m.UID = DecodeOctal(fieldUID.of(hdr))
	m.GID = DecodeOctal(fieldGID.of(hdr))
	m.Size = DecodeOctal(fieldSize.of(hdr))
	m.Mtime = DecodeOctal(fieldMtime.of(hdr))
	m.Checksum = checksum
	m.TypeFlag = hdr[fieldTypeFlag.off]
	copy(m.LinkName[:], fieldLinkName.of(hdr))
	copy(m.OwnerUserName[:], fieldUname.of(hdr))
	copy(m.OwnerGroupName[:], fieldGname.of(hdr))
	m.DeviceMajor = DecodeOctal(fieldDevMajor.of(hdr))
	m.DeviceMinor = DecodeOctal(fieldDevMinor.of(hdr))
	copy(m.PathPrefix[:], fieldPrefix.of(hdr))
	return m, nil
}

/*
	EncodeHeader writes m into hdr, overwriting all 512 bytes.

	Numeric fields are written as octal digits filling all but the last byte
	of the field, which is NUL.  The checksum is computed last over the
	finished header and written as six digits, NUL, space.
	Returns the checksum written, or an ErrFieldOverflow error if a numeric
	value doesn't fit its field (hdr contents are then unspecified).
*/
func EncodeHeader(m *Metadata, hdr *[HeaderSize]byte) (uint64, error) {
	*hdr = [HeaderSize]byte{}
	copy(fieldName.of(hdr), m.Name[:])
	for _, nf := range []struct {
		name string
		f    field
		v    uint64
	}{
		{"mode", fieldMode, m.Mode},
		{"uid", fieldUID, m.UID},
		{"gid", fieldGID, m.GID},
		{"size", fieldSize, m.Size},
		{"mtime", fieldMtime, m.Mtime},
		{"devmajor", fieldDevMajor, m.DeviceMajor},
		{"devminor", fieldDevMinor, m.DeviceMinor},
	} {
		if err := encodeNumeric(hdr, nf.f, nf.v); err != nil {
			return 0, Errorf(ustar.ErrFieldOverflow, "%s: %s", nf.name, err)
		}
	}
	hdr[fieldTypeFlag.off] = m.TypeFlag
	copy(fieldLinkName.of(hdr), m.LinkName[:])
	copy(fieldMagic.of(hdr), Magic)
	copy(fieldUname.of(hdr), m.OwnerUserName[:])
	copy(fieldGname.of(hdr), m.OwnerGroupName[:])
	copy(fieldPrefix.of(hdr), m.PathPrefix[:])
	// reserved tail stays zero.
	return writeChecksum(hdr), nil
}

func encodeNumeric(hdr *[HeaderSize]byte, f field, v uint64) error {
	dst := f.of(hdr)
	if err := EncodeOctal(dst[:len(dst)-1], v); err != nil {
		return err
	}
	dst[len(dst)-1] = 0
	return nil
}

// MaxSize is the largest content length a ustar header can describe (8 GiB - 1).
const MaxSize = uint64(1)<<33 - 1
