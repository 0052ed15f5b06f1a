package fingerprint

import (
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/warpfork/go-errcat"

	"github.com/polydawn/ustar"
	"github.com/polydawn/ustar/format"
)

/*
	Bucket keeps the metadata and content hash of every entry, keyed by
	full path, so an archive can be walked in store order and hashed later
	in sorted order.
*/
type Bucket struct {
	records *treemap.Map // path -> Record
}

type Record struct {
	// Path is the full path from the archive root, nested directories
	// joined in, with a trailing slash for directories.
	Path        string
	Metadata    format.Metadata
	ContentHash []byte
}

func NewBucket() *Bucket {
	return &Bucket{treemap.NewWithStringComparator()}
}

// AddRecord files one entry.  A path seen twice is an ErrInconsistentEntry:
// the fingerprint of an archive with shadowed entries would be ambiguous.
func (b *Bucket) AddRecord(path string, m format.Metadata, contentHash []byte) error {
	if _, exists := b.records.Get(path); exists {
		return errcat.Errorf(ustar.ErrInconsistentEntry, "repeated path %q", path)
	}
	b.records.Put(path, Record{path, m, contentHash})
	return nil
}

func (b *Bucket) Length() int { return b.records.Size() }

// Records returns every record in path order.
func (b *Bucket) Records() []Record {
	records := make([]Record, 0, b.records.Size())
	it := b.records.Iterator()
	for it.Next() {
		records = append(records, it.Value().(Record))
	}
	return records
}
