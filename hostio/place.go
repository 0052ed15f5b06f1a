package hostio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	. "github.com/warpfork/go-errcat"

	"github.com/polydawn/ustar"
	"github.com/polydawn/ustar/archive"
	"github.com/polydawn/ustar/format"
	"github.com/polydawn/ustar/fs"
	"github.com/polydawn/ustar/log"
)

type PlaceOptions struct {
	// KeepOwner chowns placed files to the uid and gid in their headers.
	// Needs the capabilities checked by caps.CanManageOwnership.
	KeepOwner bool
	// KeepSetid keeps setuid, setgid, and sticky bits from the headers.
	// Otherwise they're masked off.  With KeepOwner this also needs
	// caps.CanKeepSetid, since the kernel drops them on chown.
	KeepSetid bool
	Log       *zerolog.Logger
}

/*
	Extract places every file and directory entry of a under dest,
	recursing into nested directory archives.

	Directory modes and mtimes are applied last, deepest first, so that
	placing children neither fails on read-only dirs nor bumps their mtime.
	Other entry types (symlinks, devices, and so on) are skipped and logged.

	Entry names that are absolute or climb out of dest, and placements that
	would pass through a symlink, are ErrBreakout errors.
*/
func Extract(a *archive.Archive, dest fs.AbsolutePath, opts PlaceOptions) (err error) {
	defer RequireErrorHasCategory(&err, ustar.ErrorCategory(""))
	if err := os.MkdirAll(dest.String(), 0755); err != nil {
		return Errorf(ustar.ErrIO, "cannot create destination: %s", err)
	}
	var dirs []placedDir
	if err := extract(a, fs.RelPath{}, dest, opts, &dirs); err != nil {
		return err
	}
	for i := len(dirs) - 1; i >= 0; i-- {
		if err := finishAttribs(dirs[i].path, dirs[i].meta, opts.KeepSetid); err != nil {
			return err
		}
	}
	return nil
}

type placedDir struct {
	path string
	meta format.Metadata
}

func extract(a *archive.Archive, prefix fs.RelPath, dest fs.AbsolutePath, opts PlaceOptions, dirs *[]placedDir) error {
	for _, e := range a.Entries() {
		rel, err := fs.ParseRelPath(e.Path())
		if err != nil {
			return err
		}
		rel = prefix.Join(rel)
		placed, err := PlaceEntry(dest, rel, e, opts)
		if err != nil {
			return err
		}
		if !placed || e.Metadata.TypeFlag != format.TypeFlagDir {
			continue
		}
		*dirs = append(*dirs, placedDir{dest.Join(rel).String(), e.Metadata})
		if nested, _ := e.Dir(); nested.Len() > 0 {
			if err := extract(nested, rel, dest, opts, dirs); err != nil {
				return err
			}
		}
	}
	return nil
}

/*
	PlaceEntry puts one entry at dest/rel.  Missing parent dirs are made.

	Files get their content, mode (see KeepSetid), and mtime.  Directories are only made
	(or found existing); their mode and mtime are left for the caller,
	as Extract does.  Other types aren't placed: the bool return is false
	and the skip is logged.
*/
func PlaceEntry(dest fs.AbsolutePath, rel fs.RelPath, e *archive.Entry, opts PlaceOptions) (bool, error) {
	if err := checkBreakout(dest, rel); err != nil {
		return false, err
	}
	path := dest.Join(rel).String()

	switch e.Metadata.TypeFlag {
	case format.TypeFlagFile, format.TypeFlagFileOld:
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return false, Errorf(ustar.ErrIO, "cannot place %s: %s", rel, err)
		}
		content, _ := e.File()
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return false, Errorf(ustar.ErrIO, "cannot place %s: %s", rel, err)
		}
		if _, err := f.Write(content); err != nil {
			f.Close()
			return false, Errorf(ustar.ErrIO, "cannot place %s: %s", rel, err)
		}
		if err := f.Close(); err != nil {
			return false, Errorf(ustar.ErrIO, "cannot place %s: %s", rel, err)
		}
	case format.TypeFlagDir:
		if err := os.MkdirAll(path, 0755); err != nil {
			return false, Errorf(ustar.ErrIO, "cannot place %s: %s", rel, err)
		}
	default:
		log.EntrySkipped(opts.Log, rel.String(), fmt.Sprintf("type flag %q is not extracted", e.Metadata.TypeFlag))
		return false, nil
	}

	if opts.KeepOwner {
		if err := lchown(path, int(e.Metadata.UID), int(e.Metadata.GID)); err != nil {
			return false, Errorf(ustar.ErrIO, "cannot chown %s: %s", rel, err)
		}
	}
	if e.Metadata.TypeFlag != format.TypeFlagDir {
		if err := finishAttribs(path, e.Metadata, opts.KeepSetid); err != nil {
			return false, err
		}
	}
	log.EntryPlaced(opts.Log, rel.String(), path)
	return true, nil
}

func finishAttribs(path string, m format.Metadata, keepSetid bool) error {
	bits := m.Mode
	if !keepSetid {
		bits &= 0777
	}
	if err := os.Chmod(path, fileMode(bits)); err != nil {
		return Errorf(ustar.ErrIO, "cannot chmod %s: %s", path, err)
	}
	if err := setMtime(path, time.Unix(int64(m.Mtime), 0)); err != nil {
		return Errorf(ustar.ErrIO, "cannot set mtime on %s: %s", path, err)
	}
	return nil
}

// checkBreakout refuses rel if it or any dir above it (short of dest) is a symlink.
func checkBreakout(dest fs.AbsolutePath, rel fs.RelPath) error {
	for p := rel; !p.IsRoot(); p = p.Dir() {
		hostPath := dest.Join(p).String()
		fi, err := os.Lstat(hostPath)
		switch {
		case os.IsNotExist(err):
			continue
		case err != nil:
			return Errorf(ustar.ErrIO, "cannot check %s: %s", p, err)
		case fi.Mode()&os.ModeSymlink != 0:
			target, _ := os.Readlink(hostPath)
			return fs.ErrorBreakout(rel, dest, p, target)
		}
	}
	return nil
}
