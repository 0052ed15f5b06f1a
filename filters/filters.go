/*
	Filters normalize entry metadata as files are added to an archive, so
	that the same content produces the same archive on any host.
*/
package filters

import (
	"strconv"
	"strings"
	"time"

	. "github.com/warpfork/go-errcat"

	"github.com/polydawn/ustar"
	"github.com/polydawn/ustar/format"
)

// Keep means "leave the value scanned from the host alone".
const Keep = -1

var (
	DefaultUid   int = 1000
	DefaultGid   int = 1000
	DefaultMtime     = time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// Spec is filters as an operator writes them: "keep", a number, or for
// mtime "@" plus a unix timestamp or an RFC3339 date.  Empty means default.
type Spec struct {
	Uid    string
	Gid    string
	Mtime  string
	Sticky bool
}

type Filters struct {
	Uid    int        // Keep, or the uid to set
	Gid    int        // Keep, or the gid to set
	Mtime  *time.Time // nil for keep
	Sticky bool       // if false, setuid/setgid/sticky bits are cleared
}

// Defaults is the filter set used for any field a Spec leaves empty.
func Defaults() Filters {
	mtime := DefaultMtime
	return Filters{Uid: DefaultUid, Gid: DefaultGid, Mtime: &mtime}
}

/*
	Parse validates a Spec, filling empty fields from defaults.
	Errors are ErrUsage.
*/
func Parse(spec Spec, defaults Filters) (f Filters, err error) {
	if f.Uid, err = parseID("uid", spec.Uid, defaults.Uid); err != nil {
		return
	}
	if f.Gid, err = parseID("gid", spec.Gid, defaults.Gid); err != nil {
		return
	}
	switch spec.Mtime {
	case "":
		f.Mtime = defaults.Mtime
	case "keep":
		f.Mtime = nil
	default:
		t, err := ParseMtime(spec.Mtime)
		if err != nil {
			return f, err
		}
		f.Mtime = &t
	}
	f.Sticky = spec.Sticky
	return f, nil
}

func parseID(name, s string, dflt int) (int, error) {
	switch s {
	case "":
		return dflt, nil
	case "keep":
		return Keep, nil
	}
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, Errorf(ustar.ErrUsage, "filter %s must be 'keep' or a non-negative int, not %q", name, s)
	}
	return id, nil
}

// ParseMtime reads "@<unix seconds>" or an RFC3339 date.
func ParseMtime(s string) (time.Time, error) {
	if strings.HasPrefix(s, "@") {
		ut, err := strconv.ParseInt(s[1:], 10, 64)
		if err != nil || ut < 0 {
			return time.Time{}, Errorf(ustar.ErrUsage, "mtime starting with '@' must be a non-negative unix timestamp, not %q", s)
		}
		return time.Unix(ut, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, Errorf(ustar.ErrUsage, "mtime must be 'keep', '@' and a unix timestamp, or an RFC3339 date, not %q", s)
	}
	if t.Unix() < 0 {
		return time.Time{}, Errorf(ustar.ErrUsage, "mtime %q is before the unix epoch", s)
	}
	return t, nil
}

// Apply mutates m according to the filters.
func Apply(f Filters, m *format.Metadata) {
	if f.Uid != Keep {
		m.UID = uint64(f.Uid)
	}
	if f.Gid != Keep {
		m.GID = uint64(f.Gid)
	}
	if f.Mtime != nil {
		m.Mtime = uint64(f.Mtime.Unix())
	}
	if !f.Sticky {
		m.Mode &= 0777
	}
}
