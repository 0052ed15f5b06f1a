package fs

import (
	"path"
	"path/filepath"
	"strings"

	. "github.com/warpfork/go-errcat"

	"github.com/polydawn/ustar"
)

// RelPath and AbsolutePath are not interchangeable.
// Archive member names become RelPath as soon as they leave the codec;
// the only way to get something on the host is AbsolutePath.Join.

/*
	RelPath is a cleaned path below some root.  It never starts with "/"
	and never climbs out with "..".  The zero value is the root itself.
*/
type RelPath struct {
	path string
}

/*
	ParseRelPath cleans an archive member name into a RelPath.
	A leading "./" and trailing "/" are dropped.  Absolute names, and names
	that climb above the root once cleaned, are ErrBreakout errors.
*/
func ParseRelPath(p string) (RelPath, error) {
	if strings.HasPrefix(p, "/") {
		return RelPath{}, Errorf(ustar.ErrBreakout, "refusing absolute path %q", p)
	}
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return RelPath{}, Errorf(ustar.ErrBreakout, "refusing path %q: it climbs out of the destination", p)
	}
	if clean == "." {
		return RelPath{}, nil
	}
	return RelPath{clean}, nil
}

// MustRelPath is ParseRelPath for literals; it panics on error.
func MustRelPath(p string) RelPath {
	rp, err := ParseRelPath(p)
	if err != nil {
		panic(err)
	}
	return rp
}

func (p RelPath) String() string {
	if p.path == "" {
		return "."
	}
	return "./" + p.path
}

func (p RelPath) IsRoot() bool { return p.path == "" }

func (p RelPath) Dir() RelPath {
	if i := strings.LastIndexByte(p.path, '/'); i >= 0 {
		return RelPath{p.path[:i]}
	}
	return RelPath{}
}

func (p RelPath) Last() string {
	if p.path == "" {
		return "."
	}
	return p.path[strings.LastIndexByte(p.path, '/')+1:]
}

func (p RelPath) Join(p2 RelPath) RelPath {
	switch {
	case p2.path == "":
		return p
	case p.path == "":
		return p2
	default:
		return RelPath{p.path + "/" + p2.path}
	}
}

// Segments splits the path into its names, root first.  The root has none.
func (p RelPath) Segments() []string {
	if p.path == "" {
		return nil
	}
	return strings.Split(p.path, "/")
}

// AbsolutePath is a cleaned, absolute host path.
type AbsolutePath struct {
	path string
}

// ParseAbsolutePath resolves p against the working directory.
func ParseAbsolutePath(p string) (AbsolutePath, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return AbsolutePath{}, Errorf(ustar.ErrIO, "cannot resolve %q: %s", p, err)
	}
	return AbsolutePath{abs}, nil
}

func (p AbsolutePath) String() string { return p.path }

func (p AbsolutePath) Join(p2 RelPath) AbsolutePath {
	if p2.path == "" {
		return p
	}
	return AbsolutePath{filepath.Join(p.path, filepath.FromSlash(p2.path))}
}
