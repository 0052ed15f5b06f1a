package caps

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestScan(t *testing.T) {
	Convey("Scanning our own capabilities works", t, func() {
		f, err := Scan()
		So(err, ShouldBeNil)
		So(f, ShouldNotBeNil)
		if os.Getuid() != 0 {
			// unprivileged processes don't get these in their effective set.
			So(f.CanManageOwnership(), ShouldBeFalse)
			So(f.CanKeepSetid(), ShouldBeFalse)
		}
	})
}
