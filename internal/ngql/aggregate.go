package ngql

import "strings"

// Aggregate joins items with sep in chunks of at most size items. The result
// has ceil(len(items)/size) entries. A size of zero or less yields one chunk.
func Aggregate(items []string, size int, sep string) []string {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size > len(items) {
		size = len(items)
	}
	out := make([]string, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, strings.Join(items[start:end], sep))
	}
	return out
}

// Script joins statements into one submission separated by the nGQL statement
// separator.
func Script(statements []string) string {
	return strings.Join(statements, StatementSeparator)
}
