package format

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/warpfork/go-errcat"

	"github.com/polydawn/ustar"
)

func fixtureMetadata() Metadata {
	var m Metadata
	m.SetName("hello.txt")
	m.Mode = 0644
	m.UID = 1000
	m.GID = 1000
	m.Size = 3
	m.Mtime = 1262304000
	m.TypeFlag = TypeFlagFile
	m.SetOwnerUserName("user")
	m.SetOwnerGroupName("group")
	return m
}

func TestHeaderCodec(t *testing.T) {
	Convey("Header codec:", t, func() {
		m := fixtureMetadata()
		var hdr [HeaderSize]byte
		sum, err := EncodeHeader(&m, &hdr)
		So(err, ShouldBeNil)

		Convey("the encoded header has the fixed layout", func() {
			So(string(hdr[0:9]), ShouldEqual, "hello.txt")
			So(string(hdr[100:108]), ShouldEqual, "0000644\x00")
			So(string(hdr[108:116]), ShouldEqual, "0001750\x00")
			So(string(hdr[124:136]), ShouldEqual, "00000000003\x00")
			So(hdr[156], ShouldEqual, byte('0'))
			So(string(hdr[257:265]), ShouldEqual, Magic)
			So(string(hdr[265:269]), ShouldEqual, "user")
			So(IsZeroBlock(fieldReserved.of(&hdr)), ShouldBeTrue)
		})
		Convey("the checksum field is six digits, NUL, space", func() {
			f := hdr[148:156]
			for _, c := range f[:6] {
				So(c, ShouldBeBetweenOrEqual, byte('0'), byte('7'))
			}
			So(f[6], ShouldEqual, byte(0))
			So(f[7], ShouldEqual, byte(' '))
			So(DecodeOctal(f), ShouldEqual, sum)
			So(Checksum(&hdr), ShouldEqual, sum)
		})
		Convey("decoding gives back the same record", func() {
			m2, err := DecodeHeader(&hdr)
			So(err, ShouldBeNil)
			So(m2.Checksum, ShouldEqual, sum)
			m2.Checksum = 0
			So(m2, ShouldResemble, m)
			So(m2.NameString(), ShouldEqual, "hello.txt")
			So(m2.Type(), ShouldEqual, Type_File)
		})
		Convey("re-encoding a decoded header is byte-exact", func() {
			m2, _ := DecodeHeader(&hdr)
			var hdr2 [HeaderSize]byte
			_, err := EncodeHeader(&m2, &hdr2)
			So(err, ShouldBeNil)
			So(hdr2, ShouldResemble, hdr)
		})
		Convey("a wrong magic with a valid checksum is a format mismatch", func() {
			copy(hdr[257:], "ustar  \x00") // GNU style
			writeChecksum(&hdr)
			_, err := DecodeHeader(&hdr)
			So(errcat.Category(err), ShouldEqual, ustar.ErrFormatMismatch)
		})
		Convey("a zero block fails the checksum", func() {
			var zero [HeaderSize]byte
			_, err := DecodeHeader(&zero)
			So(errcat.Category(err), ShouldEqual, ustar.ErrChecksumMismatch)
		})
		Convey("flipping any byte outside the checksum field is a checksum mismatch", func() {
			for i := 0; i < HeaderSize; i++ {
				if i >= 148 && i < 156 {
					continue
				}
				h := hdr
				h[i] ^= 0x01
				_, err := DecodeHeader(&h)
				So(errcat.Category(err), ShouldEqual, ustar.ErrChecksumMismatch)
			}
		})
		Convey("overflowing numeric fields refuse to encode", func() {
			m.Size = MaxSize + 1
			_, err := EncodeHeader(&m, &hdr)
			So(errcat.Category(err), ShouldEqual, ustar.ErrFieldOverflow)
			So(err.Error(), ShouldContainSubstring, "size")
		})
	})
}

func TestChecksum(t *testing.T) {
	Convey("Checksum of an all-zero header counts the field as spaces", t, func() {
		var hdr [HeaderSize]byte
		So(Checksum(&hdr), ShouldEqual, uint64(8*' '))
		copy(hdr[148:156], "77777777")
		So(Checksum(&hdr), ShouldEqual, uint64(8*' '))
	})
}

func TestMetadataFields(t *testing.T) {
	Convey("Metadata string fields:", t, func() {
		var m Metadata
		Convey("are stored at full width with NUL padding", func() {
			So(m.SetName("a"), ShouldBeNil)
			So(m.Name[0], ShouldEqual, byte('a'))
			So(m.Name[1:], ShouldResemble, make([]byte, 99))
		})
		Convey("reject values longer than the field", func() {
			err := m.SetOwnerUserName(strings.Repeat("u", 33))
			So(errcat.Category(err), ShouldEqual, ustar.ErrFieldOverflow)
		})
		Convey("long paths spill into the prefix at a slash", func() {
			dir := strings.Repeat("d", 120)
			p := dir + "/file"
			So(m.SetPath(p), ShouldBeNil)
			So(m.PathPrefixString(), ShouldEqual, dir)
			So(m.NameString(), ShouldEqual, "file")
			So(m.Path(), ShouldEqual, p)
		})
		Convey("long paths without a usable slash are refused", func() {
			err := m.SetPath(strings.Repeat("x", 150))
			So(errcat.Category(err), ShouldEqual, ustar.ErrFieldOverflow)
		})
		Convey("type flags classify as file or directory", func() {
			So(TypeOfFlag('0'), ShouldEqual, Type_File)
			So(TypeOfFlag(0), ShouldEqual, Type_File)
			So(TypeOfFlag('5'), ShouldEqual, Type_Directory)
			So(TypeOfFlag('2'), ShouldEqual, Type_Directory)
		})
	})
}
