package format

import (
	"bytes"
	"fmt"
	"strings"

	. "github.com/warpfork/go-errcat"

	"github.com/polydawn/ustar"
)

// EntryType classifies an entry by its header type flag.
type EntryType uint8

const (
	Type_File EntryType = iota
	Type_Directory
)

func (t EntryType) String() string {
	switch t {
	case Type_File:
		return "file"
	case Type_Directory:
		return "dir"
	default:
		return fmt.Sprintf("EntryType(%d)", uint8(t))
	}
}

// TypeOfFlag maps an on-disk type flag to an EntryType.
// '0' and NUL are files; every other flag counts as a directory.
func TypeOfFlag(flag byte) EntryType {
	switch flag {
	case TypeFlagFile, TypeFlagFileOld:
		return Type_File
	default:
		return Type_Directory
	}
}

/*
	Metadata is the in-memory form of one ustar header.

	String-like fields are kept at their full on-disk width, padding and all,
	so a parsed header re-encodes to the same bytes.  Use the accessor
	methods to see them as trimmed strings, and the setters to assign them
	with a width check.

	Checksum holds the value read from disk during parse; it is ignored
	(and recomputed) during encode.
*/
type Metadata struct {
	Name           [100]byte
	Mode           uint64
	UID            uint64
	GID            uint64
	Size           uint64 // content length, before padding
	Mtime          uint64 // unix seconds
	Checksum       uint64
	TypeFlag       byte
	LinkName       [100]byte
	OwnerUserName  [32]byte
	OwnerGroupName [32]byte
	DeviceMajor    uint64
	DeviceMinor    uint64
	PathPrefix     [155]byte
}

func (m *Metadata) Type() EntryType { return TypeOfFlag(m.TypeFlag) }

func (m *Metadata) NameString() string           { return cstring(m.Name[:]) }
func (m *Metadata) LinkNameString() string       { return cstring(m.LinkName[:]) }
func (m *Metadata) OwnerUserNameString() string  { return cstring(m.OwnerUserName[:]) }
func (m *Metadata) OwnerGroupNameString() string { return cstring(m.OwnerGroupName[:]) }
func (m *Metadata) PathPrefixString() string     { return cstring(m.PathPrefix[:]) }

// Path joins the prefix and name fields the way ustar readers do.
func (m *Metadata) Path() string {
	prefix := m.PathPrefixString()
	if prefix == "" {
		return m.NameString()
	}
	return prefix + "/" + m.NameString()
}

func (m *Metadata) SetName(s string) error           { return setField(m.Name[:], "name", s) }
func (m *Metadata) SetLinkName(s string) error       { return setField(m.LinkName[:], "linkname", s) }
func (m *Metadata) SetOwnerUserName(s string) error  { return setField(m.OwnerUserName[:], "uname", s) }
func (m *Metadata) SetOwnerGroupName(s string) error { return setField(m.OwnerGroupName[:], "gname", s) }
func (m *Metadata) SetPathPrefix(s string) error     { return setField(m.PathPrefix[:], "prefix", s) }

/*
	SetPath stores p in the name field, spilling into the prefix field if it
	is longer than 100 bytes.  The split happens at a '/' so that Path()
	gives p back.  Fails with ErrFieldOverflow if no such split exists.
*/
func (m *Metadata) SetPath(p string) error {
	if len(p) <= len(m.Name) {
		m.PathPrefix = [155]byte{}
		return m.SetName(p)
	}
	// Find the leftmost slash that leaves a name short enough.
	for i := len(p) - len(m.Name) - 1; i < len(p); i++ {
		if i < 0 || p[i] != '/' {
			continue
		}
		if i > len(m.PathPrefix) {
			break
		}
		if i+1 == len(p) {
			break
		}
		if err := m.SetPathPrefix(p[:i]); err != nil {
			return err
		}
		return m.SetName(p[i+1:])
	}
	return Errorf(ustar.ErrFieldOverflow, "path %q cannot be split into ustar prefix and name fields", p)
}

func setField(dst []byte, fieldName string, s string) error {
	if len(s) > len(dst) {
		return Errorf(ustar.ErrFieldOverflow, "%s %q is %d bytes; field holds %d", fieldName, s, len(s), len(dst))
	}
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	return nil
}

// cstring trims at the first NUL.
func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// IsDirName reports whether a path looks like a directory name (trailing slash).
func IsDirName(p string) bool {
	return strings.HasSuffix(p, "/")
}
