package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// SheetHash fingerprints a design sheet so repeated submissions can be detected.
type SheetHash Hash

func (h SheetHash) String() string { return Hash(h).String() }

// ComputeSheetHash hashes column headers followed by every cell in row order.
// Cells are rendered with %v so numeric and label columns hash uniformly.
func ComputeSheetHash(columns []string, rows [][]interface{}) SheetHash {
	var data strings.Builder
	data.WriteString(strings.Join(columns, "\x1f"))
	for _, row := range rows {
		data.WriteByte('\n')
		for i, cell := range row {
			if i > 0 {
				data.WriteByte('\x1f')
			}
			data.WriteString(fmt.Sprintf("%v", cell))
		}
	}
	return SheetHash(NewHash([]byte(data.String())))
}
