/*
	Checks whether the process holds the capabilities that extraction with
	preserved ownership needs.
*/
package caps

import (
	"os"
	"runtime"

	"github.com/syndtr/gocapability/capability"
	. "github.com/warpfork/go-errcat"

	"github.com/polydawn/ustar"
)

/*
	Scan reads the current process's capability sets.
	On anything but linux there are no capability sets to read, and the
	answers fall back to "are we root".
*/
func Scan() (*Fulcrum, error) {
	f := &Fulcrum{
		onLinux: runtime.GOOS == "linux",
		ourUID:  os.Getuid(),
	}
	if f.onLinux {
		c, err := capability.NewPid(0) // zero means self
		if err != nil {
			return nil, Errorf(ustar.ErrIO, "cannot read process capabilities: %s", err)
		}
		f.ourCaps = c
	}
	return f, nil
}

type Fulcrum struct {
	onLinux bool
	ourUID  int
	ourCaps capability.Capabilities // nil off linux.
}

/*
	Whether extracted files can be given the uid and gid from their headers.
	This takes CAP_CHOWN, and also CAP_FOWNER, since mtimes and modes are set
	after the chown has made the file someone else's.
	Off linux, uid 0.
*/
func (f *Fulcrum) CanManageOwnership() bool {
	if !f.onLinux {
		return f.ourUID == 0
	}
	return f.ourCaps.Get(capability.EFFECTIVE, capability.CAP_CHOWN) &&
		f.ourCaps.Get(capability.EFFECTIVE, capability.CAP_FOWNER)
}

/*
	Whether setuid and setgid bits survive extraction of files we chown.
	The kernel clears them on chown without CAP_FSETID.
*/
func (f *Fulcrum) CanKeepSetid() bool {
	if !f.onLinux {
		return f.ourUID == 0
	}
	return f.ourCaps.Get(capability.EFFECTIVE, capability.CAP_FSETID)
}
