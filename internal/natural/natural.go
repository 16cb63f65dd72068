// Package natural implements alphanumeric ("natural") string ordering:
// runs of digits compare by numeric value, everything else compares
// case-insensitively.
package natural

import (
	"strings"

	"golang.org/x/text/cases"
)

// Compare returns -1, 0 or +1 depending on whether a sorts before, equal
// to, or after b. "file2" sorts before "file10".
func Compare(a, b string) int {
	fold := cases.Fold()
	for a != "" && b != "" {
		var ca, cb string
		aDigit, bDigit := isDigit(a[0]), isDigit(b[0])

		switch {
		case aDigit && bDigit:
			ca, a = chunk(a, true)
			cb, b = chunk(b, true)
			if c := compareNumeric(ca, cb); c != 0 {
				return c
			}
		case aDigit != bDigit:
			// Numbers sort ahead of text.
			if aDigit {
				return -1
			}
			return 1
		default:
			ca, a = chunk(a, false)
			cb, b = chunk(b, false)
			if c := strings.Compare(fold.String(ca), fold.String(cb)); c != 0 {
				return c
			}
		}
	}

	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

// Less reports whether a sorts strictly before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// chunk splits off the leading run of digits (or non-digits) of s.
func chunk(s string, digits bool) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) == digits {
		i++
	}
	return s[:i], s[i:]
}

// compareNumeric compares two digit runs of arbitrary length by value.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
