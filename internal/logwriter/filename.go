package logwriter

import (
	"strconv"
	"strings"
)

// maxSuffixDigits bounds the numeric suffix length of a valid log file name.
const maxSuffixDigits = 5

// NextName picks the name for the next log file: among names matching
// prefix+digits+ext exactly, with a 1 to 5 digit decimal suffix, take the
// maximum suffix plus one. Malformed entries are ignored. With no valid
// entries the sequence starts at 1.
func NextName(names []string, prefix, ext string) string {
	max := 0
	for _, name := range names {
		if n, ok := parseSuffix(name, prefix, ext); ok && n > max {
			max = n
		}
	}
	return prefix + strconv.Itoa(max+1) + ext
}

func parseSuffix(name, prefix, ext string) (int, bool) {
	// The prefix and extension checks can both pass on overlapping ranges of
	// one short name; the length check keeps the suffix slice well-formed.
	if len(name) < len(prefix)+len(ext) {
		return 0, false
	}
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
		return 0, false
	}
	mid := name[len(prefix) : len(name)-len(ext)]
	if len(mid) < 1 || len(mid) > maxSuffixDigits {
		return 0, false
	}
	for i := 0; i < len(mid); i++ {
		if mid[i] < '0' || mid[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(mid)
	if err != nil {
		return 0, false
	}
	return n, true
}
