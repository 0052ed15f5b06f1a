package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/polydawn/ustar"
	"github.com/polydawn/ustar/fs"
	"github.com/polydawn/ustar/testutil"
)

func run(args ...string) (ustar.ExitCode, string, string) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	stdin := &bytes.Buffer{}
	exitCode := Main(context.Background(), append([]string{"ustar"}, args...), stdin, stdout, stderr)
	return exitCode, stdout.String(), stderr.String()
}

func TestWithoutArgs(t *testing.T) {
	Convey("ustar: usage printed to stderr", t, func() {
		exitCode, stdout, stderr := run()
		So(stdout, ShouldBeBlank)
		So(stderr, ShouldNotBeBlank)
		So(exitCode, ShouldEqual, ustar.ExitUsage)
	})
}

func TestWorkflow(t *testing.T) {
	Convey("ustar: editing an archive on disk", t, func() {
		testutil.WithTmpdir(func(tmpDir fs.AbsolutePath) {
			testutil.ShouldWriteFile(tmpDir, "src/a.txt", "alpha", 0644)
			testutil.ShouldWriteFile(tmpDir, "src/b.txt", "beta", 0644)
			tarPath := tmpDir.Join(fs.MustRelPath("out.tar")).String()
			srcPath := tmpDir.Join(fs.MustRelPath("src")).String()

			exitCode, stdout, stderr := run("--format=dumb", "add", "--create", tarPath, srcPath)
			So(stderr, ShouldBeBlank)
			So(exitCode, ShouldEqual, ustar.ExitSuccess)
			So(stdout, ShouldStartWith, "sha384:")
			added := strings.TrimSpace(stdout)

			Convey("list shows every entry", func() {
				exitCode, stdout, _ := run("--format=dumb", "list", tarPath)
				So(exitCode, ShouldEqual, ustar.ExitSuccess)
				So(stdout, ShouldEqual, "src/\nsrc/a.txt\nsrc/b.txt\n")
			})
			Convey("list can emit json", func() {
				exitCode, stdout, _ := run("--format=json", "list", tarPath)
				So(exitCode, ShouldEqual, ustar.ExitSuccess)
				So(stdout, ShouldContainSubstring, `"src/a.txt"`)
				So(stdout, ShouldContainSubstring, `"entries"`)
			})
			Convey("fingerprint matches what add reported", func() {
				exitCode, stdout, _ := run("--format=dumb", "fingerprint", tarPath)
				So(exitCode, ShouldEqual, ustar.ExitSuccess)
				So(strings.TrimSpace(stdout), ShouldEqual, added)
			})
			Convey("rewrite reproduces the archive exactly", func() {
				outPath := tmpDir.Join(fs.MustRelPath("copy.tar")).String()
				exitCode, _, _ := run("--format=dumb", "rewrite", tarPath, outPath)
				So(exitCode, ShouldEqual, ustar.ExitSuccess)
				orig, _ := os.ReadFile(tarPath)
				copied, _ := os.ReadFile(outPath)
				So(copied, ShouldResemble, orig)
			})
			Convey("remove drops nested entries", func() {
				exitCode, stdout, _ := run("--format=dumb", "remove", tarPath, "src/a.txt")
				So(exitCode, ShouldEqual, ustar.ExitSuccess)
				So(strings.TrimSpace(stdout), ShouldNotEqual, added)
				_, stdout, _ = run("--format=dumb", "list", tarPath)
				So(stdout, ShouldEqual, "src/\nsrc/b.txt\n")

				exitCode, _, stderr := run("--format=dumb", "remove", tarPath, "src/a.txt")
				So(exitCode, ShouldEqual, ustar.ExitUsage)
				So(stderr, ShouldContainSubstring, "no entry named")
			})
			Convey("remove can empty a directory", func() {
				exitCode, _, stderr := run("--format=dumb", "remove", tarPath, "src/a.txt", "src/b.txt")
				So(stderr, ShouldBeBlank)
				So(exitCode, ShouldEqual, ustar.ExitSuccess)
				exitCode, stdout, _ := run("--format=dumb", "list", tarPath)
				So(exitCode, ShouldEqual, ustar.ExitSuccess)
				So(stdout, ShouldEqual, "src/\n")

				dest := tmpDir.Join(fs.MustRelPath("dest"))
				exitCode, _, _ = run("--format=dumb", "extract", tarPath, dest.String())
				So(exitCode, ShouldEqual, ustar.ExitSuccess)
				entries, err := os.ReadDir(dest.Join(fs.MustRelPath("src")).String())
				So(err, ShouldBeNil)
				So(entries, ShouldBeEmpty)
			})
			Convey("extract places the files", func() {
				dest := tmpDir.Join(fs.MustRelPath("dest"))
				exitCode, stdout, _ := run("--format=dumb", "extract", tarPath, dest.String())
				So(exitCode, ShouldEqual, ustar.ExitSuccess)
				So(strings.TrimSpace(stdout), ShouldEqual, added)
				So(testutil.ShouldReadFile(dest, "src/a.txt"), ShouldEqual, "alpha")
				So(testutil.ShouldReadFile(dest, "src/b.txt"), ShouldEqual, "beta")
			})
		})
	})
}

func TestFailures(t *testing.T) {
	Convey("ustar: failures map to exit codes", t, func() {
		testutil.WithTmpdir(func(tmpDir fs.AbsolutePath) {
			Convey("corrupt archives", func() {
				p := testutil.ShouldWriteFile(tmpDir, "bad.tar", strings.Repeat("x", 2048), 0644)
				exitCode, stdout, stderr := run("--format=dumb", "list", p)
				So(exitCode, ShouldEqual, ustar.ExitCorrupt)
				So(stdout, ShouldBeBlank)
				So(stderr, ShouldContainSubstring, "is not a readable ustar archive")
				So(stderr, ShouldContainSubstring, "malformed terminator")
			})
			Convey("corrupt archives, in json", func() {
				p := testutil.ShouldWriteFile(tmpDir, "bad.tar", strings.Repeat("x", 2048), 0644)
				exitCode, stdout, _ := run("--format=json", "list", p)
				So(exitCode, ShouldEqual, ustar.ExitCorrupt)
				So(stdout, ShouldContainSubstring, string(ustar.ErrMalformedTerminator))
			})
			Convey("missing archives", func() {
				exitCode, _, _ := run("--format=dumb", "list", tmpDir.Join(fs.MustRelPath("nope.tar")).String())
				So(exitCode, ShouldEqual, ustar.ExitIO)
			})
			Convey("missing archives without --create", func() {
				exitCode, _, _ := run("--format=dumb", "add", tmpDir.Join(fs.MustRelPath("nope.tar")).String(), tmpDir.String())
				So(exitCode, ShouldEqual, ustar.ExitIO)
			})
			Convey("bad filters", func() {
				exitCode, _, _ := run("--format=dumb", "add", "--create", "--uid=someone", tmpDir.Join(fs.MustRelPath("x.tar")).String(), tmpDir.String())
				So(exitCode, ShouldEqual, ustar.ExitUsage)
			})
		})
	})
}
