package hostio

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/warpfork/go-errcat"

	"github.com/polydawn/ustar"
	"github.com/polydawn/ustar/archive"
	"github.com/polydawn/ustar/filters"
	"github.com/polydawn/ustar/format"
	"github.com/polydawn/ustar/fs"
	"github.com/polydawn/ustar/testutil"
)

func TestLoadWrite(t *testing.T) {
	Convey("Loading and writing archive files:", t, func() {
		testutil.WithTmpdir(func(tmpDir fs.AbsolutePath) {
			p := filepath.Join(tmpDir.String(), "a.tar")
			Convey("what's written loads back", func() {
				So(Write(p, []byte("abc")), ShouldBeNil)
				So(Write(p, []byte("replaced")), ShouldBeNil)
				buf, err := Load(p)
				So(err, ShouldBeNil)
				So(string(buf), ShouldEqual, "replaced")
				entries, _ := os.ReadDir(tmpDir.String())
				So(len(entries), ShouldEqual, 1) // no temp files left over
			})
			Convey("missing files are io errors", func() {
				_, err := Load(p)
				So(errcat.Category(err), ShouldEqual, ustar.ErrIO)
				err = Write(filepath.Join(tmpDir.String(), "nope", "a.tar"), nil)
				So(errcat.Category(err), ShouldEqual, ustar.ErrIO)
			})
		})
	})
}

func TestScan(t *testing.T) {
	Convey("Scanning host files:", t, func() {
		testutil.WithTmpdir(func(tmpDir fs.AbsolutePath) {
			testutil.ShouldWriteFile(tmpDir, "tree/a.txt", "alpha", 0640)
			testutil.ShouldWriteFile(tmpDir, "tree/sub/b.txt", "beta", 0644)
			So(os.Chmod(tmpDir.Join(fs.MustRelPath("tree/a.txt")).String(), 0640), ShouldBeNil)
			So(os.Symlink("a.txt", tmpDir.Join(fs.MustRelPath("tree/link")).String()), ShouldBeNil)
			opts := ScanOptions{Filters: filters.Defaults()}

			Convey("a tree becomes nested directory entries", func() {
				a := archive.New()
				So(Scan(a, tmpDir.Join(fs.MustRelPath("tree")).String(), "tree", opts), ShouldBeNil)
				So(a.Len(), ShouldEqual, 1)
				root := a.Find("tree")
				So(root.Path(), ShouldEqual, "tree/")
				So(root.Metadata.TypeFlag, ShouldEqual, format.TypeFlagDir)
				nested, ok := root.Dir()
				So(ok, ShouldBeTrue)

				var names []string
				for _, e := range nested.Entries() {
					names = append(names, e.Path())
				}
				So(names, ShouldResemble, []string{"a.txt", "link", "sub/"})

				f := nested.Find("a.txt")
				content, _ := f.File()
				So(string(content), ShouldEqual, "alpha")
				So(f.Metadata.Size, ShouldEqual, 5)
				So(f.Metadata.Mode, ShouldEqual, 0640)
				So(f.Metadata.UID, ShouldEqual, 1000)
				So(f.Metadata.GID, ShouldEqual, 1000)
				So(f.Metadata.Mtime, ShouldEqual, 1262304000)

				l := nested.Find("link")
				So(l.Metadata.TypeFlag, ShouldEqual, format.TypeFlagSymlink)
				So(l.Metadata.LinkNameString(), ShouldEqual, "a.txt")

				sub, _ := nested.Find("sub").Dir()
				So(sub.Len(), ShouldEqual, 1)
			})
			Convey("a single file becomes one entry", func() {
				a := archive.New()
				So(Scan(a, tmpDir.Join(fs.MustRelPath("tree/a.txt")).String(), "renamed.txt", opts), ShouldBeNil)
				So(a.Len(), ShouldEqual, 1)
				So(a.Entries()[0].Path(), ShouldEqual, "renamed.txt")
			})
			Convey("keep filters leave host values", func() {
				a := archive.New()
				opts.Filters = filters.Filters{Uid: filters.Keep, Gid: filters.Keep}
				So(Scan(a, tmpDir.Join(fs.MustRelPath("tree/a.txt")).String(), "a.txt", opts), ShouldBeNil)
				So(a.Entries()[0].Metadata.UID, ShouldEqual, os.Getuid())
			})
			Convey("missing paths are io errors", func() {
				err := Scan(archive.New(), tmpDir.Join(fs.MustRelPath("nope")).String(), "nope", opts)
				So(errcat.Category(err), ShouldEqual, ustar.ErrIO)
			})
		})
	})
}

func extractFixture() *archive.Archive {
	a := archive.New()
	x, _ := a.AddFile("x.txt", []byte("ex"))
	x.Metadata.Mode = 0600
	x.Metadata.Mtime = 1262304000
	d, _ := a.AddDirectory("d")
	d.Metadata.Mode = 0555
	d.Metadata.Mtime = 1262304000
	nested, _ := d.Dir()
	nested.AddFile("y.txt", []byte("why"))
	link, _ := archive.NewSymlink("link", "x.txt", a.Options()...)
	a.Add(link)
	return a
}

func TestExtract(t *testing.T) {
	Convey("Extracting archives:", t, func() {
		testutil.WithTmpdir(func(tmpDir fs.AbsolutePath) {
			dest := tmpDir.Join(fs.MustRelPath("out"))

			Convey("files and directories are placed", func() {
				So(Extract(extractFixture(), dest, PlaceOptions{}), ShouldBeNil)
				So(testutil.ShouldReadFile(dest, "x.txt"), ShouldEqual, "ex")
				So(testutil.ShouldReadFile(dest, "d/y.txt"), ShouldEqual, "why")

				fi, err := os.Stat(dest.Join(fs.MustRelPath("x.txt")).String())
				So(err, ShouldBeNil)
				So(fi.Mode().Perm(), ShouldEqual, os.FileMode(0600))
				So(fi.ModTime().Unix(), ShouldEqual, 1262304000)

				fi, err = os.Stat(dest.Join(fs.MustRelPath("d")).String())
				So(err, ShouldBeNil)
				So(fi.IsDir(), ShouldBeTrue)
				So(fi.Mode().Perm(), ShouldEqual, os.FileMode(0555))
				So(fi.ModTime().Unix(), ShouldEqual, 1262304000)
				os.Chmod(dest.Join(fs.MustRelPath("d")).String(), 0755) // so the tmpdir can be cleaned up

				Convey("and symlink entries are skipped", func() {
					_, err := os.Lstat(dest.Join(fs.MustRelPath("link")).String())
					So(os.IsNotExist(err), ShouldBeTrue)
				})
			})
			Convey("setid bits are masked unless kept", func() {
				a := archive.New()
				e, _ := a.AddFile("tool", []byte("#!"))
				e.Metadata.Mode = 04755
				path := dest.Join(fs.MustRelPath("tool")).String()

				So(Extract(a, dest, PlaceOptions{}), ShouldBeNil)
				fi, err := os.Stat(path)
				So(err, ShouldBeNil)
				So(fi.Mode()&os.ModeSetuid, ShouldEqual, os.FileMode(0))
				So(fi.Mode().Perm(), ShouldEqual, os.FileMode(0755))

				So(Extract(a, dest, PlaceOptions{KeepSetid: true}), ShouldBeNil)
				fi, err = os.Stat(path)
				So(err, ShouldBeNil)
				So(fi.Mode()&os.ModeSetuid, ShouldEqual, os.ModeSetuid)
			})
			Convey("names climbing out of the destination are refused", func() {
				for _, name := range []string{"../evil", "/abs"} {
					a := archive.New()
					e, _ := archive.NewFile(name, nil)
					a.Add(e)
					err := Extract(a, dest, PlaceOptions{})
					So(errcat.Category(err), ShouldEqual, ustar.ErrBreakout)
				}
			})
			Convey("placements through symlinks are refused", func() {
				So(os.MkdirAll(dest.String(), 0755), ShouldBeNil)
				So(os.Symlink(tmpDir.String(), dest.Join(fs.MustRelPath("lnk")).String()), ShouldBeNil)
				a := archive.New()
				a.AddFile("lnk/f", []byte("x"))
				err := Extract(a, dest, PlaceOptions{})
				So(errcat.Category(err), ShouldEqual, ustar.ErrBreakout)
				So(err.Error(), ShouldContainSubstring, "./lnk")
				_, statErr := os.Stat(tmpDir.Join(fs.MustRelPath("f")).String())
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
			Convey("scan, serialize, parse, and extract round trip", func() {
				testutil.ShouldWriteFile(tmpDir, "src/one.txt", "1", 0644)
				testutil.ShouldWriteFile(tmpDir, "src/deep/two.txt", "22", 0644)
				a := archive.New()
				So(Scan(a, tmpDir.Join(fs.MustRelPath("src")).String(), "src", ScanOptions{Filters: filters.Defaults()}), ShouldBeNil)
				buf, err := a.Serialize()
				So(err, ShouldBeNil)
				b := archive.Parse(buf)
				So(b.Err(), ShouldBeNil)
				So(Extract(b, dest, PlaceOptions{}), ShouldBeNil)
				So(testutil.ShouldReadFile(dest, "src/one.txt"), ShouldEqual, "1")
				So(testutil.ShouldReadFile(dest, "src/deep/two.txt"), ShouldEqual, "22")
			})
		})
	})
}

func TestExtractOwnership(t *testing.T) {
	Convey("Extracting with ownership", t,
		testutil.Requires(testutil.RequiresCanManageOwnership, func() {
			testutil.WithTmpdir(func(tmpDir fs.AbsolutePath) {
				a := archive.New()
				e, _ := a.AddFile("owned", []byte("x"))
				e.Metadata.UID = 4000
				e.Metadata.GID = 4001
				So(Extract(a, tmpDir, PlaceOptions{KeepOwner: true}), ShouldBeNil)
				uid, gid, err := hostOwner(tmpDir.Join(fs.MustRelPath("owned")).String())
				So(err, ShouldBeNil)
				So(uid, ShouldEqual, 4000)
				So(gid, ShouldEqual, 4001)
			})
		}),
	)
}
