package fs

import (
	. "github.com/warpfork/go-errcat"

	"github.com/polydawn/ustar"
)

/*
	ErrorBreakout is returned when placing a path under some destination
	would go through a symlink.

	Symlinks are refused even if following them would stay inside the
	destination.  The check is best-effort: concurrent changes to the
	destination by other processes can always race it.
*/
func ErrorBreakout(opPath RelPath, opArea AbsolutePath, linkPath RelPath, linkTarget string) error {
	return ErrorDetailed(ustar.ErrBreakout,
		"breakout error: refusing to traverse symlink at "+linkPath.String()+"->"+linkTarget+" while placing "+opPath.String()+" in "+opArea.String(),
		map[string]string{
			"path":   opPath.String(),
			"area":   opArea.String(),
			"link":   linkPath.String(),
			"target": linkTarget,
		})
}
