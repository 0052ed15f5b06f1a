/*
	Helpers for loading contextual config.

	Config here means "things that are the host machine operator's concerns":
	how chatty the logs are, how output is formatted, and what ownership and
	timestamps newly added files are normalized to.  These come from the
	environment rather than from call parameters, so the same script gives
	the same archives wherever the operator has pinned them.
*/
package config

import (
	"os"
	"strconv"

	. "github.com/warpfork/go-errcat"

	"github.com/polydawn/ustar"
	"github.com/polydawn/ustar/filters"
)

/*
	Return the minimum level of log events to emit.

	The default value is `"warn"`;
	this can be overriden by the `USTAR_LOG_LEVEL` environment variable.
*/
func GetLogLevel() string {
	if lvl := os.Getenv("USTAR_LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "warn"
}

/*
	Return the output format for command results: "json" or "dumb".

	The default value is `"dumb"`;
	this can be overriden by the `USTAR_FORMAT` environment variable.
*/
func GetFormat() string {
	if f := os.Getenv("USTAR_FORMAT"); f != "" {
		return f
	}
	return "dumb"
}

/*
	Return the filters applied to files added to an archive when the caller
	doesn't say otherwise.

	The defaults are uid and gid 1000 and an mtime of 2010-01-01T00:00:00Z;
	these can be overriden by the `USTAR_DEFAULT_UID`, `USTAR_DEFAULT_GID`,
	and `USTAR_DEFAULT_MTIME` environment variables.  The mtime is either
	"@" and a unix timestamp, or an RFC3339 date.

	Malformed values are an ErrUsage error.
*/
func GetDefaultFilters() (filters.Filters, error) {
	f := filters.Defaults()
	if s := os.Getenv("USTAR_DEFAULT_UID"); s != "" {
		id, err := strconv.Atoi(s)
		if err != nil || id < 0 {
			return f, Errorf(ustar.ErrUsage, "USTAR_DEFAULT_UID must be a non-negative int, not %q", s)
		}
		f.Uid = id
	}
	if s := os.Getenv("USTAR_DEFAULT_GID"); s != "" {
		id, err := strconv.Atoi(s)
		if err != nil || id < 0 {
			return f, Errorf(ustar.ErrUsage, "USTAR_DEFAULT_GID must be a non-negative int, not %q", s)
		}
		f.Gid = id
	}
	if s := os.Getenv("USTAR_DEFAULT_MTIME"); s != "" {
		t, err := filters.ParseMtime(s)
		if err != nil {
			return f, Errorf(ustar.ErrUsage, "USTAR_DEFAULT_MTIME: %s", err)
		}
		f.Mtime = &t
	}
	return f, nil
}
