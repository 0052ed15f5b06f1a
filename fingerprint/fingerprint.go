/*
	Package fingerprint computes a content digest over an archive's entries.

	The digest covers paths, the metadata that matters for a filesystem
	(type, mode, ownership, mtime, link target, device numbers), and content.
	It does not cover byte layout: record padding, the order of entries,
	and the prefix/name split of long paths don't change it.
*/
package fingerprint

import (
	_ "crypto/sha512"

	"github.com/opencontainers/go-digest"
	"github.com/polydawn/refmt/cbor"
	"github.com/polydawn/refmt/tok"

	"github.com/polydawn/ustar/archive"
	"github.com/polydawn/ustar/format"
)

// Algorithm is the digest used for content, records, and the total.
const Algorithm = digest.SHA384

/*
	Archive fingerprints a whole archive, recursing into nested directory
	archives.  Entries of a nested archive are taken as relative to the
	directory that holds them.

	Only ErrInconsistentEntry is possible, for repeated paths.
*/
func Archive(a *archive.Archive) (digest.Digest, error) {
	bucket := NewBucket()
	err := a.Walk(func(path string, e *archive.Entry) error {
		var contentHash []byte
		if content, ok := e.File(); ok {
			contentHash = hashBytes(content)
		} else if raw := e.Raw(); len(raw) > 0 {
			contentHash = hashBytes(raw)
		}
		if e.Metadata.TypeFlag == format.TypeFlagDir && !format.IsDirName(path) {
			path += "/"
		}
		return bucket.AddRecord(path, e.Metadata, contentHash)
	})
	if err != nil {
		return "", err
	}
	return HashBucket(bucket), nil
}

func hashBytes(b []byte) []byte {
	h := Algorithm.Hash()
	h.Write(b)
	return h.Sum(nil)
}

/*
	HashBucket hashes each record, then hashes the list of record hashes
	in path order.

	Each record is serialized as cbor (rfc7049), a fixed-length map of
	"m" (metadata) and, for entries with content, "h" (content hash).
	The total is a cbor fixed-length array of the record hashes.
*/
func HashBucket(bucket *Bucket) digest.Digest {
	digester := Algorithm.Digester()
	enc := cbor.NewEncoder(digester.Hash())
	enc.Step(&tok.Token{Type: tok.TArrOpen, Length: bucket.Length()})
	for _, record := range bucket.Records() {
		enc.Step(&tok.Token{Type: tok.TBytes, Bytes: hashRecord(record)})
	}
	enc.Step(&tok.Token{Type: tok.TArrClose})
	return digester.Digest()
}

func hashRecord(record Record) []byte {
	hasher := Algorithm.Hash()
	enc := cbor.NewEncoder(hasher)
	if record.ContentHash != nil {
		enc.Step(&tok.Token{Type: tok.TMapOpen, Length: 2})
	} else {
		enc.Step(&tok.Token{Type: tok.TMapOpen, Length: 1})
	}
	enc.Step(&tok.Token{Type: tok.TString, Str: "m"})
	marshalMetadata(enc, record.Path, record.Metadata)
	if record.ContentHash != nil {
		enc.Step(&tok.Token{Type: tok.TString, Str: "h"})
		enc.Step(&tok.Token{Type: tok.TBytes, Bytes: record.ContentHash})
	}
	enc.Step(&tok.Token{Type: tok.TMapClose})
	return hasher.Sum(nil)
}

// marshalMetadata writes metadata in a fixed field order.
// Fingerprints stay comparable over time only as long as this order does.
func marshalMetadata(enc *cbor.Encoder, path string, m format.Metadata) {
	fieldCount := 6
	if m.LinkNameString() != "" {
		fieldCount++
	}
	if m.OwnerUserNameString() != "" {
		fieldCount++
	}
	if m.OwnerGroupNameString() != "" {
		fieldCount++
	}
	device := isDevice(m.TypeFlag)
	if device {
		fieldCount += 2
	}
	enc.Step(&tok.Token{Type: tok.TMapOpen, Length: fieldCount})
	enc.Step(&tok.Token{Type: tok.TString, Str: "n"})
	enc.Step(&tok.Token{Type: tok.TString, Str: path})
	enc.Step(&tok.Token{Type: tok.TString, Str: "t"})
	enc.Step(&tok.Token{Type: tok.TString, Str: typeName(m.TypeFlag)})
	enc.Step(&tok.Token{Type: tok.TString, Str: "p"})
	enc.Step(&tok.Token{Type: tok.TInt, Int: int64(m.Mode & 07777)})
	enc.Step(&tok.Token{Type: tok.TString, Str: "u"})
	enc.Step(&tok.Token{Type: tok.TInt, Int: int64(m.UID)})
	enc.Step(&tok.Token{Type: tok.TString, Str: "g"})
	enc.Step(&tok.Token{Type: tok.TInt, Int: int64(m.GID)})
	// Size is skipped: the content hash covers it.
	if s := m.LinkNameString(); s != "" {
		enc.Step(&tok.Token{Type: tok.TString, Str: "l"})
		enc.Step(&tok.Token{Type: tok.TString, Str: s})
	}
	if s := m.OwnerUserNameString(); s != "" {
		enc.Step(&tok.Token{Type: tok.TString, Str: "un"})
		enc.Step(&tok.Token{Type: tok.TString, Str: s})
	}
	if s := m.OwnerGroupNameString(); s != "" {
		enc.Step(&tok.Token{Type: tok.TString, Str: "gn"})
		enc.Step(&tok.Token{Type: tok.TString, Str: s})
	}
	if device {
		enc.Step(&tok.Token{Type: tok.TString, Str: "dM"})
		enc.Step(&tok.Token{Type: tok.TInt, Int: int64(m.DeviceMajor)})
		enc.Step(&tok.Token{Type: tok.TString, Str: "dm"})
		enc.Step(&tok.Token{Type: tok.TInt, Int: int64(m.DeviceMinor)})
	}
	enc.Step(&tok.Token{Type: tok.TString, Str: "m"})
	enc.Step(&tok.Token{Type: tok.TInt, Int: int64(m.Mtime)})
	enc.Step(&tok.Token{Type: tok.TMapClose})
}

func isDevice(flag byte) bool { return flag == '3' || flag == '4' }

func typeName(flag byte) string {
	switch flag {
	case format.TypeFlagFile, format.TypeFlagFileOld:
		return "F"
	case format.TypeFlagDir:
		return "D"
	case '1':
		return "H"
	case format.TypeFlagSymlink:
		return "L"
	case '3':
		return "C"
	case '4':
		return "B"
	case '6':
		return "P"
	default:
		return string(rune(flag))
	}
}
