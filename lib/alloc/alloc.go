/*
	Package alloc defines the allocation capability the codec draws its
	buffers from.

	Every blob an archive owns (entry content, serialized output) is
	obtained via Allocate and handed back via Release when the archive is
	closed.  There's no process-wide allocator: whoever constructs an
	archive picks one and it travels with that archive.
*/
package alloc

import (
	"sync"
	"sync/atomic"
)

type Allocator interface {
	// Allocate returns a zeroed slice of exactly n bytes.
	Allocate(n int) []byte

	// Release hands a slice obtained from Allocate back.
	// The caller must not touch it afterwards.
	Release(b []byte)
}

// Heap allocates with make and leaves release to the garbage collector.
var Heap Allocator = heap{}

type heap struct{}

func (heap) Allocate(n int) []byte { return make([]byte, n) }
func (heap) Release([]byte)        {}

/*
	Pool recycles buffers in power-of-two size classes from one block
	(512 bytes) up to MaxPooled; larger requests fall through to the heap.

	Safe for concurrent use.
*/
type Pool struct {
	classes [poolClasses]sync.Pool
}

const (
	minPooledShift = 9  // 512
	maxPooledShift = 24 // 16 MiB
	poolClasses    = maxPooledShift - minPooledShift + 1

	MaxPooled = 1 << maxPooledShift
)

func NewPool() *Pool {
	return &Pool{}
}

func (p *Pool) Allocate(n int) []byte {
	c, ok := sizeClass(n)
	if !ok {
		return make([]byte, n)
	}
	if x := p.classes[c].Get(); x != nil {
		b := (*x.(*[]byte))[:n]
		for i := range b {
			b[i] = 0
		}
		return b
	}
	return make([]byte, n, 1<<(c+minPooledShift))
}

func (p *Pool) Release(b []byte) {
	c, ok := sizeClass(cap(b))
	if !ok || cap(b) != 1<<(c+minPooledShift) {
		return // not one of ours.
	}
	b = b[:0]
	p.classes[c].Put(&b)
}

func sizeClass(n int) (int, bool) {
	if n > MaxPooled {
		return 0, false
	}
	c := 0
	for (1 << (c + minPooledShift)) < n {
		c++
	}
	return c, true
}

/*
	Counting wraps another Allocator and tracks outstanding bytes.
	Useful for checking that teardown released everything.
*/
type Counting struct {
	Allocator
	outstanding int64
}

func NewCounting(a Allocator) *Counting {
	return &Counting{Allocator: a}
}

func (c *Counting) Allocate(n int) []byte {
	atomic.AddInt64(&c.outstanding, int64(n))
	return c.Allocator.Allocate(n)
}

func (c *Counting) Release(b []byte) {
	atomic.AddInt64(&c.outstanding, -int64(len(b)))
	c.Allocator.Release(b)
}

// Outstanding is the number of bytes allocated and not yet released.
func (c *Counting) Outstanding() int64 {
	return atomic.LoadInt64(&c.outstanding)
}
