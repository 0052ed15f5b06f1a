package config

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/warpfork/go-errcat"

	"github.com/polydawn/ustar"
)

func withEnv(key, value string, fn func()) func() {
	return func() {
		old, had := os.LookupEnv(key)
		os.Setenv(key, value)
		defer func() {
			if had {
				os.Setenv(key, old)
			} else {
				os.Unsetenv(key)
			}
		}()
		fn()
	}
}

func TestConfig(t *testing.T) {
	Convey("Config getters:", t, func() {
		Convey("fall back to defaults", withEnv("USTAR_LOG_LEVEL", "", func() {
			So(GetLogLevel(), ShouldEqual, "warn")
		}))
		Convey("read the log level", withEnv("USTAR_LOG_LEVEL", "debug", func() {
			So(GetLogLevel(), ShouldEqual, "debug")
		}))
		Convey("read the output format", withEnv("USTAR_FORMAT", "json", func() {
			So(GetFormat(), ShouldEqual, "json")
		}))
		Convey("read default ownership", withEnv("USTAR_DEFAULT_UID", "0", func() {
			f, err := GetDefaultFilters()
			So(err, ShouldBeNil)
			So(f.Uid, ShouldEqual, 0)
			So(f.Gid, ShouldEqual, 1000)
		}))
		Convey("read the default mtime", withEnv("USTAR_DEFAULT_MTIME", "@86400", func() {
			f, err := GetDefaultFilters()
			So(err, ShouldBeNil)
			So(f.Mtime.Unix(), ShouldEqual, 86400)
		}))
		Convey("reject malformed values", withEnv("USTAR_DEFAULT_GID", "wheel", func() {
			_, err := GetDefaultFilters()
			So(errcat.Category(err), ShouldEqual, ustar.ErrUsage)
		}))
	})
}
