/*
	Package archive holds whole USTAR archives in memory.

	`Parse` turns a buffer into an Archive of entries; `(*Archive).Serialize`
	turns one back into a byte-exact stream.  In between, entries can be
	added, removed, and iterated.

	Parsing never panics on bad input.  Failure is reported through the
	archive's Status and Err, and entries decoded before the failure stay
	in the store; check Status before trusting them.

	An Archive is not safe for concurrent use.
*/
package archive

import (
	"github.com/rs/zerolog"

	"github.com/polydawn/ustar/lib/alloc"
	"github.com/polydawn/ustar/log"
)

type Status uint8

const (
	StatusOk Status = iota
	StatusError
)

func (s Status) String() string {
	if s == StatusOk {
		return "ok"
	}
	return "error"
}

type Archive struct {
	store  *Store
	status Status
	err    error

	alloc alloc.Allocator
	log   *zerolog.Logger
}

type Option func(*Archive)

// WithAllocator sets where the archive's blobs come from and go back to.
// The default is alloc.Heap.
func WithAllocator(a alloc.Allocator) Option {
	return func(ar *Archive) { ar.alloc = a }
}

// WithLogger attaches a logger for parse and serialize lifecycle events.
// The default discards everything.
func WithLogger(l *zerolog.Logger) Option {
	return func(ar *Archive) { ar.log = l }
}

// New returns an empty archive with status ok.
func New(opts ...Option) *Archive {
	a := &Archive{
		store: NewStore(),
		alloc: alloc.Heap,
		log:   log.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Options reproduces this archive's allocator and logger, for building nested archives.
func (a *Archive) Options() []Option {
	return []Option{WithAllocator(a.alloc), WithLogger(a.log)}
}

func (a *Archive) Status() Status { return a.status }
func (a *Archive) Err() error     { return a.err }

// ErrorDetail is the human-readable description of the failure, or "".
func (a *Archive) ErrorDetail() string {
	if a.err == nil {
		return ""
	}
	return a.err.Error()
}

func (a *Archive) fail(offset uint64, err error) {
	a.status = StatusError
	a.err = err
	log.HeaderRejected(a.log, offset, err)
}

// Add appends e at the end of the archive and returns its new handle.
func (a *Archive) Add(e *Entry) Handle { return a.store.Add(e) }

// Prepend inserts e at the front of the archive and returns its new handle.
func (a *Archive) Prepend(e *Entry) Handle { return a.store.Prepend(e) }

/*
	AddFile copies content into a buffer from the archive's allocator and
	appends a new file entry for it.  The archive owns the copy and
	releases it on Close.
*/
func (a *Archive) AddFile(path string, content []byte) (*Entry, error) {
	e, err := NewFile(path, nil)
	if err != nil {
		return nil, err
	}
	e.content = a.alloc.Allocate(len(content))
	copy(e.content, content)
	e.owned = true
	e.Metadata.Size = uint64(len(content))
	a.Add(e)
	return e, nil
}

// AddDirectory appends a new directory entry whose nested archive shares
// this archive's allocator and logger.
func (a *Archive) AddDirectory(path string) (*Entry, error) {
	e, err := NewDirectory(path, a.Options()...)
	if err != nil {
		return nil, err
	}
	a.Add(e)
	return e, nil
}

/*
	Remove takes the entry with handle h out of the archive.
	The caller now owns the returned entry; its blobs are not released.
	The iteration cursor keeps its index.
*/
func (a *Archive) Remove(h Handle) (*Entry, bool) { return a.store.Remove(h) }

/*
	Release hands the blobs of an entry taken out with Remove back to a's
	allocator, nested archive included.  e must have come from a (or from
	an archive sharing its allocator).  Entries still held by a store are
	left alone; Close releases those.
*/
func (a *Archive) Release(e *Entry) {
	if e == nil || !e.handle.IsZero() {
		return
	}
	e.release(a.alloc)
}

func (a *Archive) Get(h Handle) *Entry { return a.store.Get(h) }

// Find returns the first entry whose path is p, or nil.
// A trailing slash on either side is ignored, so "dir" finds "dir/".
func (a *Archive) Find(p string) *Entry {
	p = trimSlash(p)
	return a.store.Search(func(e *Entry) bool {
		return trimSlash(e.Path()) == p
	})
}

// Iterate yields the next entry, or nil once at the end of each lap.
// See Store for the exact contract.
func (a *Archive) Iterate() *Entry { return a.store.Iterate() }

// Reset puts the iteration cursor back at the first entry.
func (a *Archive) Reset() { a.store.Reset() }

func (a *Archive) Entries() []*Entry { return a.store.Entries() }
func (a *Archive) Len() int          { return a.store.Len() }

/*
	Close releases every blob the archive owns back to its allocator,
	recursing through nested directory archives, and empties the store.
	The archive stays usable (as an empty archive) afterwards.
*/
func (a *Archive) Close() {
	for _, e := range a.store.Entries() {
		e.release(a.alloc)
		e.handle = Handle{}
	}
	a.store.clear()
}

func trimSlash(p string) string {
	for len(p) > 1 && p[len(p)-1] == '/' {
		p = p[:len(p)-1]
	}
	return p
}
