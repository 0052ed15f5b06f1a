/*
	Package ustar is the root of an in-memory USTAR archive toolkit.

	The codec itself lives in subpackages:
	`format` maps single 512-byte headers to and from metadata records,
	and `archive` parses whole buffers into ordered entry stores and
	serializes them back into byte-exact streams.

	This package holds only the shared vocabulary: error categories
	and process exit codes.
*/
package ustar
