/*
	Package hostio moves archives and their entries between memory and the
	host filesystem: loading and writing archive files, scanning host files
	into entries, and placing entries back onto disk.
*/
package hostio

import (
	"os"
	"path/filepath"

	. "github.com/warpfork/go-errcat"

	"github.com/polydawn/ustar"
)

// Load reads a whole file into memory.
func Load(path string) (_ []byte, err error) {
	defer RequireErrorHasCategory(&err, ustar.ErrorCategory(""))
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, Errorf(ustar.ErrIO, "cannot load archive: %s", err)
	}
	return buf, nil
}

/*
	Write replaces the file at path with buf.

	The content goes to a temp file next to path first and is renamed into
	place, so readers never see a half-written archive.
*/
func Write(path string, buf []byte) (err error) {
	defer RequireErrorHasCategory(&err, ustar.ErrorCategory(""))
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ustar-*")
	if err != nil {
		return Errorf(ustar.ErrIO, "cannot write archive: %s", err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed.
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return Errorf(ustar.ErrIO, "cannot write archive: %s", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return Errorf(ustar.ErrIO, "cannot write archive: %s", err)
	}
	if err := tmp.Close(); err != nil {
		return Errorf(ustar.ErrIO, "cannot write archive: %s", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return Errorf(ustar.ErrIO, "cannot write archive: %s", err)
	}
	return nil
}
