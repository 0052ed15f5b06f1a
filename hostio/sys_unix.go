//go:build linux || darwin
// +build linux darwin

package hostio

import (
	"time"

	"golang.org/x/sys/unix"
)

func hostOwner(path string) (uid, gid uint64, err error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return 0, 0, err
	}
	return uint64(st.Uid), uint64(st.Gid), nil
}

func lchown(path string, uid, gid int) error {
	return unix.Lchown(path, uid, gid)
}

// setMtime sets both atime and mtime, at full precision.
func setMtime(path string, mtime time.Time) error {
	ts := unix.NsecToTimespec(mtime.UnixNano())
	return unix.UtimesNano(path, []unix.Timespec{ts, ts})
}
