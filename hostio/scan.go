package hostio

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	. "github.com/warpfork/go-errcat"

	"github.com/polydawn/ustar"
	"github.com/polydawn/ustar/archive"
	"github.com/polydawn/ustar/filters"
	"github.com/polydawn/ustar/format"
	"github.com/polydawn/ustar/log"
)

type ScanOptions struct {
	Filters filters.Filters
	Log     *zerolog.Logger
}

/*
	Scan adds the host file at hostPath to a, named name.

	Regular files become file entries and symlinks become '2' entries
	carrying their target.  Directories become directory entries whose
	nested archive holds their children, scanned the same way, in name
	order; children are named relative to their directory.
	Anything else (devices, pipes, sockets) is skipped and logged.

	Metadata comes from lstat, then the filters are applied.
	Symlinks are never followed.
*/
func Scan(a *archive.Archive, hostPath string, name string, opts ScanOptions) (err error) {
	defer RequireErrorHasCategory(&err, ustar.ErrorCategory(""))
	fi, err := os.Lstat(hostPath)
	if err != nil {
		return Errorf(ustar.ErrIO, "cannot scan: %s", err)
	}

	var e *archive.Entry
	switch mode := fi.Mode(); {
	case mode.IsRegular():
		content, err := os.ReadFile(hostPath)
		if err != nil {
			return Errorf(ustar.ErrIO, "cannot scan: %s", err)
		}
		if e, err = archive.NewFile(name, nil); err != nil {
			return err
		}
		e.SetContent(content)
	case mode.IsDir():
		if e, err = archive.NewDirectory(name, a.Options()...); err != nil {
			return err
		}
	case mode&os.ModeSymlink != 0:
		target, err := os.Readlink(hostPath)
		if err != nil {
			return Errorf(ustar.ErrIO, "cannot scan: %s", err)
		}
		if e, err = archive.NewSymlink(name, target, a.Options()...); err != nil {
			return err
		}
	default:
		log.EntrySkipped(opts.Log, name, "unsupported file type "+mode.Type().String())
		return nil
	}

	if err := fillMetadata(&e.Metadata, hostPath, fi); err != nil {
		return err
	}
	filters.Apply(opts.Filters, &e.Metadata)
	a.Add(e)
	log.EntryScanned(opts.Log, hostPath, e.Path(), e.Metadata.Size)

	if fi.IsDir() {
		children, err := os.ReadDir(hostPath)
		if err != nil {
			return Errorf(ustar.ErrIO, "cannot scan: %s", err)
		}
		nested, _ := e.Dir()
		for _, child := range children {
			if err := Scan(nested, filepath.Join(hostPath, child.Name()), child.Name(), opts); err != nil {
				return err
			}
		}
	}
	return nil
}

func fillMetadata(m *format.Metadata, hostPath string, fi os.FileInfo) error {
	m.Mode = modeBits(fi.Mode())
	if mtime := fi.ModTime().Unix(); mtime > 0 {
		m.Mtime = uint64(mtime)
	} else {
		m.Mtime = 0
	}
	uid, gid, err := hostOwner(hostPath)
	if err != nil {
		return Errorf(ustar.ErrIO, "cannot scan: %s", err)
	}
	m.UID, m.GID = uid, gid
	return nil
}

// modeBits maps os.FileMode permissions to the header's unix mode bits.
func modeBits(mode os.FileMode) uint64 {
	bits := uint64(mode.Perm())
	if mode&os.ModeSetuid != 0 {
		bits |= 04000
	}
	if mode&os.ModeSetgid != 0 {
		bits |= 02000
	}
	if mode&os.ModeSticky != 0 {
		bits |= 01000
	}
	return bits
}

// fileMode is the inverse of modeBits.
func fileMode(bits uint64) os.FileMode {
	mode := os.FileMode(bits & 0777)
	if bits&04000 != 0 {
		mode |= os.ModeSetuid
	}
	if bits&02000 != 0 {
		mode |= os.ModeSetgid
	}
	if bits&01000 != 0 {
		mode |= os.ModeSticky
	}
	return mode
}
