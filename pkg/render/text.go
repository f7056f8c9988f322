package render

import (
	"strconv"
	"strings"
	"unicode"
)

// Printable returns name with control characters replaced by their Go
// escape sequences, so a file named "a\tb" shows as `a\tb` instead of
// breaking a terminal row or a status line.
func Printable(name string) string {
	if strings.IndexFunc(name, unicode.IsControl) < 0 {
		return name
	}
	var b strings.Builder
	for _, r := range name {
		if !unicode.IsControl(r) {
			b.WriteRune(r)
			continue
		}
		q := strconv.QuoteRune(r)
		b.WriteString(q[1 : len(q)-1])
	}
	return b.String()
}
