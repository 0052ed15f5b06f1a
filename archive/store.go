package archive

import (
	"github.com/polydawn/ustar/lib/seq"
)

/*
	Store is an ordered collection of entries with a restartable cursor.

	Iterate yields entries in insertion order, then yields nil exactly once
	when the lap is over and resets itself: the call after that starts from
	the first entry again.  Exhaustion is signaled once per lap, never
	persistently.

	Not safe for concurrent use; the cursor is shared mutable state.
*/
type Store struct {
	entries *seq.List[*Entry]
	cursor  int
}

func NewStore() *Store {
	return &Store{entries: seq.New[*Entry]()}
}

// Add appends e at the tail and gives it a fresh handle.
// The cursor's index doesn't move.
func (s *Store) Add(e *Entry) Handle {
	e.handle = newHandle()
	s.entries.AppendTail(e)
	return e.handle
}

// Prepend inserts e at the head and gives it a fresh handle.
// The cursor's index doesn't move, so it now refers one entry earlier.
func (s *Store) Prepend(e *Entry) Handle {
	e.handle = newHandle()
	s.entries.AppendHead(e)
	return e.handle
}

func (s *Store) Iterate() *Entry {
	e, ok := s.entries.Get(s.cursor)
	if !ok {
		s.cursor = 0
		return nil
	}
	s.cursor++
	return e
}

// Reset puts the cursor back at the first entry.
func (s *Store) Reset() {
	s.cursor = 0
}

/*
	Remove takes the entry with handle h out of the store and returns it.
	The cursor's index is left as is, which may shift which entry it
	refers to.  The removed entry's handle is cleared.
*/
func (s *Store) Remove(h Handle) (*Entry, bool) {
	if h.IsZero() {
		return nil, false
	}
	i, e, ok := s.entries.Search(func(e *Entry) bool { return e.handle == h })
	if !ok {
		return nil, false
	}
	s.entries.Remove(i)
	e.handle = Handle{}
	return e, true
}

func (s *Store) Get(h Handle) *Entry {
	if h.IsZero() {
		return nil
	}
	_, e, _ := s.entries.Search(func(e *Entry) bool { return e.handle == h })
	return e
}

// Search returns the first entry matching pred, or nil.
func (s *Store) Search(pred func(*Entry) bool) *Entry {
	_, e, _ := s.entries.Search(pred)
	return e
}

func (s *Store) Len() int { return s.entries.Len() }

// Entries returns a snapshot of the store's entries in order.
// It doesn't touch the cursor.
func (s *Store) Entries() []*Entry { return s.entries.Values() }

func (s *Store) clear() {
	s.entries.Clear()
	s.cursor = 0
}
