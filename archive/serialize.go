package archive

import (
	"github.com/warpfork/go-errcat"

	"github.com/polydawn/ustar"
	"github.com/polydawn/ustar/format"
	"github.com/polydawn/ustar/log"
)

type serialPart struct {
	meta    format.Metadata
	payload []byte
	release func()
}

/*
	Serialize writes the archive as a ustar stream.

	The output is sized up front (a header plus padded content per entry,
	plus the two-block end marker), allocated once from the archive's
	allocator, and filled in store order.  The caller owns the result.

	Entries are not modified, but the iteration cursor is: it's reset,
	driven through one full lap, and left at the start.

	Directory entries whose nested archive has entries carry that archive's
	serialization as payload, with the header size set to match; those with
	an empty nested archive and no raw bytes are written with size zero.
	File entries whose Metadata.Size disagrees with their content are
	refused with ErrInconsistentEntry; values too large for their header
	fields are refused with ErrFieldOverflow.
*/
func (a *Archive) Serialize() (_ []byte, err error) {
	var parts []serialPart
	defer func() {
		if err != nil {
			a.store.Reset()
		}
		for _, p := range parts {
			if p.release != nil {
				p.release()
			}
		}
	}()

	total := uint64(format.TerminatorSize)
	a.store.Reset()
	for e := a.store.Iterate(); e != nil; e = a.store.Iterate() {
		p := serialPart{meta: e.Metadata}
		switch {
		case e.dir != nil && e.dir.Len() > 0:
			payload, err := e.dir.Serialize()
			if err != nil {
				return nil, errcat.Errorf(errcat.Category(err), "in nested directory %q: %s", e.Path(), err)
			}
			nestedAlloc := e.dir.alloc
			p.payload = payload
			p.release = func() { nestedAlloc.Release(payload) }
			p.meta.Size = uint64(len(payload))
		case e.dir != nil && len(e.content) == 0:
			// Nested archive emptied since parse; the header size read then is stale.
			p.meta.Size = 0
		default:
			if e.Metadata.Size != uint64(len(e.content)) {
				return nil, errcat.Errorf(ustar.ErrInconsistentEntry, "entry %q declares size %d but holds %d bytes", e.Path(), e.Metadata.Size, len(e.content))
			}
			p.payload = e.content
		}
		if p.meta.Size > format.MaxSize {
			return nil, errcat.Errorf(ustar.ErrFieldOverflow, "entry %q is %d bytes; ustar can't describe more than %d", e.Path(), p.meta.Size, format.MaxSize)
		}
		parts = append(parts, p)
		total += format.HeaderSize + format.PaddedSize(p.meta.Size)
	}

	out := a.alloc.Allocate(int(total))
	off := uint64(0)
	for i := range parts {
		hdr := (*[format.HeaderSize]byte)(out[off : off+format.HeaderSize])
		if _, err := format.EncodeHeader(&parts[i].meta, hdr); err != nil {
			a.alloc.Release(out)
			return nil, errcat.Errorf(errcat.Category(err), "entry %q: %s", parts[i].meta.Path(), err)
		}
		off += format.HeaderSize
		copy(out[off:], parts[i].payload)
		off += format.PaddedSize(parts[i].meta.Size)
	}
	// Padding and the end marker are already zero: Allocate zeroes.

	log.ArchiveSerialized(a.log, len(out), len(parts))
	return out, nil
}
