package ustar

import (
	"github.com/warpfork/go-errcat"
)

/*
	ErrorCategory is the category value attached (via go-errcat) to every
	error raised by ustar packages.

	Use `errcat.Category(err)` to switch on it.
	Errors without a category escaping a public function are a bug.
*/
type ErrorCategory string

func (e ErrorCategory) String() string { return string(e) }

const (
	// Raised when a header's stored checksum disagrees with the sum of its bytes.
	ErrChecksumMismatch = ErrorCategory("ustar-checksum-mismatch")

	// Raised when a header lacks the exact ustar magic sentinel.
	ErrFormatMismatch = ErrorCategory("ustar-format-mismatch")

	// Raised when the final two blocks of a buffer are not all zero.
	ErrMalformedTerminator = ErrorCategory("ustar-malformed-terminator")

	// Raised when a header or its content runs past the end of the entry region.
	ErrTruncated = ErrorCategory("ustar-truncated")

	// Raised when a value does not fit in its fixed-width on-disk field.
	ErrFieldOverflow = ErrorCategory("ustar-field-overflow")

	// Raised by serialize when an entry's declared size disagrees with its content.
	ErrInconsistentEntry = ErrorCategory("ustar-inconsistent-entry")

	// Raised for invalid arguments or invalid combinations of options.
	ErrUsage = ErrorCategory("ustar-usage")

	// Raised for any host filesystem problem (missing files, permissions, etc).
	ErrIO = ErrorCategory("ustar-io")

	// Raised when extracting an entry would place files outside the destination.
	ErrBreakout = ErrorCategory("ustar-breakout")
)

// IsParseFailure reports whether the category is one produced by parsing
// a corrupt or non-ustar buffer.
func IsParseFailure(err error) bool {
	switch errcat.Category(err) {
	case ErrChecksumMismatch, ErrFormatMismatch, ErrMalformedTerminator, ErrTruncated:
		return true
	default:
		return false
	}
}

/*
	Exit codes for the ustar command.

	Each error category maps to exactly one exit code, so scripts can tell
	corrupt inputs apart from usage and host problems without parsing stderr.
*/
type ExitCode int

const (
	ExitSuccess      ExitCode = 0
	ExitUsage        ExitCode = 1
	ExitCorrupt      ExitCode = 2
	ExitIO           ExitCode = 3
	ExitBreakout     ExitCode = 4
	ExitInconsistent ExitCode = 5
	ExitUnknown      ExitCode = 99
)

// ExitCodeForError maps an error's category to a process exit code.
func ExitCodeForError(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	if IsParseFailure(err) {
		return ExitCorrupt
	}
	switch errcat.Category(err) {
	case ErrUsage:
		return ExitUsage
	case ErrIO:
		return ExitIO
	case ErrBreakout:
		return ExitBreakout
	case ErrFieldOverflow, ErrInconsistentEntry:
		return ExitInconsistent
	default:
		return ExitUnknown
	}
}
