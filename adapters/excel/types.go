package excel

// RawTable is a header row plus string cells, as read from a file.
type RawTable struct {
	Headers []string   // Column headers
	Rows    [][]string // Data rows, padded to len(Headers)
}

// Column returns the index of a header, or -1.
func (t *RawTable) Column(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}
