package archive

import (
	"strings"
)

/*
	Lookup finds the entry at path p, descending into nested directory
	archives.  Entries of a nested archive are named relative to their
	directory, so "d/x" is either a top-level entry named "d/x" or an entry
	"x" inside the nested archive of directory "d".  Top-level names win.

	Returns the archive holding the entry (so it can be removed from there)
	and the entry, or nils.
*/
func (a *Archive) Lookup(p string) (*Archive, *Entry) {
	p = strings.TrimPrefix(p, "./")
	if e := a.Find(p); e != nil {
		return a, e
	}
	for i := strings.IndexByte(p, '/'); i >= 0; {
		if d := a.Find(p[:i]); d != nil {
			if nested, ok := d.Dir(); ok && nested.Len() > 0 {
				if holder, e := nested.Lookup(p[i+1:]); e != nil {
					return holder, e
				}
			}
		}
		next := strings.IndexByte(p[i+1:], '/')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return nil, nil
}

// Walk calls fn for every entry, depth first, with the entry's path from
// the root of a.  Nested entries follow their directory.
func (a *Archive) Walk(fn func(path string, e *Entry) error) error {
	return a.walk("", fn)
}

func (a *Archive) walk(prefix string, fn func(path string, e *Entry) error) error {
	for _, e := range a.Entries() {
		path := prefix + e.Path()
		if err := fn(path, e); err != nil {
			return err
		}
		if e.dir != nil && e.dir.Len() > 0 {
			if !strings.HasSuffix(path, "/") {
				path += "/"
			}
			if err := e.dir.walk(path, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
