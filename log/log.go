/*
	Helper functions for emitting structured lifecycle logs.

	These cover the common events in parsing, serializing, scanning and
	placing entries, so that every caller formats them the same way.
	Callers can of course log their own events on the same logger.

	All helpers take a *zerolog.Logger; a nil logger is a no-op.
*/
package log

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// New builds a logger writing to w at the named level.
// Unknown level names fall back to warn.
func New(w io.Writer, level string, human bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	if human {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Nop returns a logger that discards everything.
func Nop() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func EntryParsed(l *zerolog.Logger, offset uint64, path string, size uint64) {
	if l == nil {
		return
	}
	l.Debug().
		Uint64("offset", offset).
		Str("path", path).
		Uint64("size", size).
		Msg("entry parsed")
}

// Typically called with an error in one of the parse failure categories.
func HeaderRejected(l *zerolog.Logger, offset uint64, err error) {
	if l == nil {
		return
	}
	l.Warn().
		Uint64("offset", offset).
		Err(err).
		Msg("header rejected")
}

func ArchiveParsed(l *zerolog.Logger, length int, entries int, err error) {
	if l == nil {
		return
	}
	ev := l.Info()
	if err != nil {
		ev = l.Warn().Err(err)
	}
	ev.Int("bytes", length).
		Int("entries", entries).
		Msg("archive parsed")
}

func ArchiveSerialized(l *zerolog.Logger, length int, entries int) {
	if l == nil {
		return
	}
	l.Info().
		Int("bytes", length).
		Int("entries", entries).
		Msg("archive serialized")
}

func EntryScanned(l *zerolog.Logger, hostPath string, path string, size uint64) {
	if l == nil {
		return
	}
	l.Debug().
		Str("host", hostPath).
		Str("path", path).
		Uint64("size", size).
		Msg("entry scanned")
}

func EntryPlaced(l *zerolog.Logger, path string, dest string) {
	if l == nil {
		return
	}
	l.Debug().
		Str("path", path).
		Str("dest", dest).
		Msg("entry placed")
}

// Typically for entry types extraction doesn't materialize (links, devices).
func EntrySkipped(l *zerolog.Logger, path string, reason string) {
	if l == nil {
		return
	}
	l.Info().
		Str("path", path).
		Str("reason", reason).
		Msg("entry skipped")
}
