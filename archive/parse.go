package archive

import (
	"github.com/warpfork/go-errcat"

	"github.com/polydawn/ustar"
	"github.com/polydawn/ustar/format"
	"github.com/polydawn/ustar/log"
)

/*
	Parse reads a whole ustar stream from buf.

	The last two blocks of buf must be zero (the end marker); otherwise the
	result is an empty archive with ErrMalformedTerminator.  Everything
	before the marker is walked header by header: each header is decoded,
	its content copied out through the archive's allocator, and the entry
	appended.  The walk stops at the first bad header (format or checksum
	mismatch, or truncation), leaving the entries before it in place.
	A zero block whose remainder up to the marker is also zero ends the walk
	cleanly; tar writers pad to whole records that way.

	Directory entries with a non-empty payload are parsed recursively as
	nested archives.  A failure inside becomes the parent's failure.

	buf is not retained.
*/
func Parse(buf []byte, opts ...Option) *Archive {
	a := New(opts...)
	a.parse(buf)
	log.ArchiveParsed(a.log, len(buf), a.Len(), a.err)
	return a
}

func (a *Archive) parse(buf []byte) {
	n := uint64(len(buf))
	if n < format.TerminatorSize || !format.IsZeroBlock(buf[n-format.TerminatorSize:]) {
		a.fail(0, errcat.Errorf(ustar.ErrMalformedTerminator, "malformed terminator: the final %d bytes of a %d byte buffer are not two zero blocks", format.TerminatorSize, n))
		return
	}
	end := n - format.TerminatorSize

	for off := uint64(0); off < end; {
		if end-off < format.HeaderSize {
			a.fail(off, errcat.Errorf(ustar.ErrTruncated, "truncated header at offset %d: only %d bytes before the end marker", off, end-off))
			return
		}
		block := buf[off : off+format.HeaderSize]
		if format.IsZeroBlock(block) && format.IsZeroBlock(buf[off:end]) {
			return
		}
		m, err := format.DecodeHeader((*[format.HeaderSize]byte)(block))
		if err != nil {
			a.fail(off, errcat.Errorf(errcat.Category(err), "header at offset %d: %s", off, err))
			return
		}
		dataOff := off + format.HeaderSize
		if format.PaddedSize(m.Size) > end-dataOff {
			a.fail(off, errcat.Errorf(ustar.ErrTruncated, "truncated content at offset %d: %q declares %d bytes, only %d remain", off, m.Path(), m.Size, end-dataOff))
			return
		}
		content := buf[dataOff : dataOff+m.Size]

		e := &Entry{Metadata: m}
		var nested *Archive
		if m.TypeFlag == format.TypeFlagDir && m.Size > 0 {
			nested = Parse(content, a.Options()...)
			if nested.err != nil {
				nested.Close()
				a.fail(off, errcat.Errorf(errcat.Category(nested.err), "in nested directory %q: %s", m.Path(), nested.err))
				return
			}
		}
		if nested != nil && nested.Len() > 0 {
			e.dir = nested
		} else {
			// A payload of nothing but end marker stays as raw bytes.
			e.content = a.alloc.Allocate(len(content))
			copy(e.content, content)
			e.owned = true
			if e.Type() == format.Type_Directory {
				e.dir = New(a.Options()...)
			}
		}
		a.store.Add(e)
		log.EntryParsed(a.log, off, m.Path(), m.Size)

		off = dataOff + format.PaddedSize(m.Size)
	}
}
