package main

import (
	"fmt"
	"io"

	"github.com/polydawn/refmt"
	"github.com/polydawn/refmt/json"
	"github.com/polydawn/refmt/obj/atlas"
	. "github.com/warpfork/go-errcat"

	"github.com/polydawn/ustar/archive"
)

// Result is what every command reports, on stdout.
type Result struct {
	Entries     []ListedEntry `refmt:"entries,omitempty"`
	Fingerprint string        `refmt:"fingerprint,omitempty"`
	Error       *ResultError  `refmt:"error"`
}

type ListedEntry struct {
	Path  string `refmt:"path"`
	Type  string `refmt:"type"`
	Mode  uint64 `refmt:"mode"`
	UID   uint64 `refmt:"uid"`
	GID   uint64 `refmt:"gid"`
	Size  uint64 `refmt:"size"`
	Mtime uint64 `refmt:"mtime"`
	Link  string `refmt:"link,omitempty"`
}

type ResultError struct {
	Category string `refmt:"category"`
	Message  string `refmt:"message"`
}

var Atlas = atlas.MustBuild(
	atlas.BuildEntry(Result{}).StructMap().Autogenerate().Complete(),
	atlas.BuildEntry(ListedEntry{}).StructMap().Autogenerate().Complete(),
	atlas.BuildEntry(ResultError{}).StructMap().Autogenerate().Complete(),
)

func listEntry(path string, e *archive.Entry) ListedEntry {
	return ListedEntry{
		Path:  path,
		Type:  e.Type().String(),
		Mode:  e.Metadata.Mode,
		UID:   e.Metadata.UID,
		GID:   e.Metadata.GID,
		Size:  e.Metadata.Size,
		Mtime: e.Metadata.Mtime,
		Link:  e.Metadata.LinkNameString(),
	}
}

func SerializeResult(format string, result Result, resultErr error, stdout io.Writer, stderr io.Writer) {
	if resultErr != nil {
		result = Result{Error: &ResultError{
			Category: fmt.Sprint(Category(resultErr)),
			Message:  resultErr.Error(),
		}}
	}
	switch format {
	case FmtJson:
		marshaller := refmt.NewMarshallerAtlased(json.EncodeOptions{}, stdout, Atlas)
		if err := marshaller.Marshal(&result); err != nil {
			panic(err)
		}
		fmt.Fprintln(stdout)
	case FmtDumb:
		if resultErr != nil {
			fmt.Fprintln(stderr, resultErr)
			return
		}
		for _, e := range result.Entries {
			fmt.Fprintln(stdout, e.Path)
		}
		if result.Fingerprint != "" {
			fmt.Fprintln(stdout, result.Fingerprint)
		}
	default:
		panic(fmt.Errorf("ustar: invalid format %s", format))
	}
}
