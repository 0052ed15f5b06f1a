package testutil

import (
	"os"
	"path/filepath"

	"github.com/smartystreets/goconvey/convey"

	"github.com/polydawn/ustar/fs"
)

/*
	Runs fn with a fresh temp dir, removed afterwards.
	The dir is resolved through any symlinks (macOS tmp is one),
	so breakout checks inside it behave.
*/
func WithTmpdir(fn func(tmpDir fs.AbsolutePath)) {
	dir, err := os.MkdirTemp("", "ustar-test-")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)
	dir, err = filepath.EvalSymlinks(dir)
	if err != nil {
		panic(err)
	}
	tmpDir, err := fs.ParseAbsolutePath(dir)
	if err != nil {
		panic(err)
	}
	fn(tmpDir)
}

// ShouldWriteFile creates a host file below base with the given content,
// making parent dirs as needed.
func ShouldWriteFile(base fs.AbsolutePath, rel string, content string, perm os.FileMode) string {
	p := base.Join(fs.MustRelPath(rel)).String()
	convey.So(os.MkdirAll(filepath.Dir(p), 0755), convey.ShouldBeNil)
	convey.So(os.WriteFile(p, []byte(content), perm), convey.ShouldBeNil)
	return p
}

// ShouldReadFile returns the content of a host file below base.
func ShouldReadFile(base fs.AbsolutePath, rel string) string {
	bs, err := os.ReadFile(base.Join(fs.MustRelPath(rel)).String())
	convey.So(err, convey.ShouldBeNil)
	return string(bs)
}
