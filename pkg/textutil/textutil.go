// Package textutil provides byte-level text utilities shared by the
// pipeline's content-classification stages.
package textutil

import "bytes"

// BinarySniffLength is the maximum number of bytes scanned for null-byte
// detection. Matches the heuristic used by Git and most editors.
const BinarySniffLength = 8000

// IsBinary returns true if data contains a null byte within the first
// BinarySniffLength bytes. Empty data is not binary.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	sniff := data
	if len(sniff) > BinarySniffLength {
		sniff = sniff[:BinarySniffLength]
	}

	return bytes.IndexByte(sniff, 0) >= 0
}
