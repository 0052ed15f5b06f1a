/*
	Package seq is a typed ordered sequence: append at either end,
	get and remove by index, and linear search by predicate.

	It's a thin layer over the gods doubly-linked list, which keeps
	head and tail appends O(1); indexed operations walk from the nearer end.
*/
package seq

import (
	"github.com/emirpasic/gods/lists/doublylinkedlist"
)

type List[T any] struct {
	l *doublylinkedlist.List
}

func New[T any]() *List[T] {
	return &List[T]{doublylinkedlist.New()}
}

func (s *List[T]) AppendHead(v T) { s.l.Insert(0, v) }
func (s *List[T]) AppendTail(v T) { s.l.Add(v) }
func (s *List[T]) Len() int       { return s.l.Size() }
func (s *List[T]) Clear()         { s.l.Clear() }

// Get returns the value at index i, or false if i is out of range.
func (s *List[T]) Get(i int) (v T, ok bool) {
	x, ok := s.l.Get(i)
	if !ok {
		return v, false
	}
	return x.(T), true
}

// Remove drops the value at index i.  Out of range indexes are ignored.
func (s *List[T]) Remove(i int) {
	s.l.Remove(i)
}

// Search returns the index and value of the first element matching pred,
// or -1 and false if nothing matches.
func (s *List[T]) Search(pred func(T) bool) (int, T, bool) {
	i, x := s.l.Find(func(_ int, x interface{}) bool {
		return pred(x.(T))
	})
	if i < 0 {
		var zero T
		return -1, zero, false
	}
	return i, x.(T), true
}

// Values returns a snapshot of the sequence in order.
func (s *List[T]) Values() []T {
	xs := s.l.Values()
	vs := make([]T, len(xs))
	for i, x := range xs {
		vs[i] = x.(T)
	}
	return vs
}
