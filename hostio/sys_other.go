//go:build !linux && !darwin
// +build !linux,!darwin

package hostio

import (
	"os"
	"time"
)

// No portable ownership; scanned entries get the filters' ids anyway.
func hostOwner(path string) (uid, gid uint64, err error) {
	return 0, 0, nil
}

func lchown(path string, uid, gid int) error {
	return os.Lchown(path, uid, gid)
}

func setMtime(path string, mtime time.Time) error {
	return os.Chtimes(path, mtime, mtime)
}
