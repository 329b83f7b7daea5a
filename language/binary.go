package language

import "bytes"

const sniffLength = 512

// IsBinaryContent reports whether data looks binary: a NUL byte within the
// first 512 bytes. Script sources and manifests never contain one.
func IsBinaryContent(data []byte) bool {
	return bytes.IndexByte(data[:min(len(data), sniffLength)], 0) >= 0
}
