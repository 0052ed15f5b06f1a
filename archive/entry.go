package archive

import (
	"github.com/google/uuid"

	"github.com/polydawn/ustar/format"
	"github.com/polydawn/ustar/lib/alloc"
)

/*
	Handle is a stable, opaque identity for an entry within a store.
	It's assigned when the entry is added; the zero Handle means
	"not in any store".

	Removal and lookup go by handle, so two entries with identical
	metadata and content are never confused.
*/
type Handle struct {
	id uuid.UUID
}

func newHandle() Handle { return Handle{uuid.New()} }

func (h Handle) IsZero() bool   { return h.id == uuid.Nil }
func (h Handle) String() string { return h.id.String() }

/*
	Entry is one archive member: its header metadata plus its payload.

	The payload is a tagged variant decided by the metadata's type:
	file entries carry content bytes (see File), directory entries carry
	a nested archive (see Dir).  For file entries, len(content) must equal
	Metadata.Size; serialize refuses entries where it doesn't.

	An entry belongs to at most one store at a time.
*/
type Entry struct {
	Metadata format.Metadata

	handle  Handle
	content []byte
	owned   bool     // content was obtained from the holding archive's allocator.
	dir     *Archive // nested archive; non-nil for directory entries.
}

/*
	NewFile builds a regular file entry.
	The entry takes ownership of content; don't modify it afterwards.
	Mode defaults to 0644; the path is split into prefix and name if long.
*/
func NewFile(path string, content []byte) (*Entry, error) {
	e := &Entry{content: content}
	if err := e.Metadata.SetPath(path); err != nil {
		return nil, err
	}
	e.Metadata.TypeFlag = format.TypeFlagFile
	e.Metadata.Mode = 0644
	e.Metadata.Size = uint64(len(content))
	return e, nil
}

/*
	NewDirectory builds a directory entry with an empty nested archive.
	A trailing slash is added to the path if missing, as tar readers expect.
	Mode defaults to 0755.
*/
func NewDirectory(path string, opts ...Option) (*Entry, error) {
	if !format.IsDirName(path) {
		path += "/"
	}
	e := &Entry{dir: New(opts...)}
	if err := e.Metadata.SetPath(path); err != nil {
		return nil, err
	}
	e.Metadata.TypeFlag = format.TypeFlagDir
	e.Metadata.Mode = 0755
	return e, nil
}

// NewSymlink builds a '2' entry pointing at target.  Like every
// non-file type it's classified as a directory, with an empty nested archive.
func NewSymlink(path, target string, opts ...Option) (*Entry, error) {
	e := &Entry{dir: New(opts...)}
	if err := e.Metadata.SetPath(path); err != nil {
		return nil, err
	}
	if err := e.Metadata.SetLinkName(target); err != nil {
		return nil, err
	}
	e.Metadata.TypeFlag = format.TypeFlagSymlink
	e.Metadata.Mode = 0777
	return e, nil
}

func (e *Entry) Handle() Handle         { return e.handle }
func (e *Entry) Type() format.EntryType { return e.Metadata.Type() }
func (e *Entry) Path() string           { return e.Metadata.Path() }

// File returns the content of a file entry.
// The second return is false for directory entries.
func (e *Entry) File() ([]byte, bool) {
	if e.Type() != format.Type_File {
		return nil, false
	}
	return e.content, true
}

/*
	Dir returns the nested archive of a directory entry.
	It's never nil for directories: a directory with no payload has an
	empty nested archive.
	The second return is false for file entries.

	Entries built as files and retyped by hand have no nested archive of
	their own; they get a fresh empty one each call, and anything added
	to it is not kept.  Build such entries with NewSymlink, or parse them.
*/
func (e *Entry) Dir() (*Archive, bool) {
	if e.Type() != format.Type_Directory {
		return nil, false
	}
	if e.dir == nil {
		return New(), true
	}
	return e.dir, true
}

/*
	Raw returns the stored payload bytes regardless of type.
	For directory-classified entries that aren't real directories
	(symlinks, devices, and the like), this is where any payload lives.
*/
func (e *Entry) Raw() []byte { return e.content }

// SetContent replaces a file entry's content and updates its size.
func (e *Entry) SetContent(content []byte) {
	e.content = content
	e.owned = false
	e.Metadata.Size = uint64(len(content))
}

// release hands owned blobs back and tears down any nested archive.
func (e *Entry) release(a alloc.Allocator) {
	if e.owned && e.content != nil {
		a.Release(e.content)
	}
	e.content = nil
	e.owned = false
	if e.dir != nil {
		e.dir.Close()
	}
}
