package logwriter

import "testing"

func TestNextNameSkipsMalformedEntries(t *testing.T) {
	names := []string{"log_1.ext", "log_7.ext", "log_abc.ext"}
	if got := NextName(names, "log_", ".ext"); got != "log_8.ext" {
		t.Fatalf("got %q, want log_8.ext", got)
	}
}

func TestNextNameStartsAtOne(t *testing.T) {
	if got := NextName(nil, "log_", ".dat"); got != "log_1.dat" {
		t.Fatalf("got %q, want log_1.dat", got)
	}
}

func TestNextNameAcceptsLeadingZeros(t *testing.T) {
	// No forced leading zeros, but suffixes that carry them are still valid.
	names := []string{"log_007.dat"}
	if got := NextName(names, "log_", ".dat"); got != "log_8.dat" {
		t.Fatalf("got %q, want log_8.dat", got)
	}
}

func TestNextNameIgnoresForeignEntries(t *testing.T) {
	names := []string{
		"trip_9.dat",      // wrong prefix
		"log_5.bin",       // wrong extension
		"log_123456.dat",  // six digits
		"log_.dat",        // no digits
		"log_12x3.dat",    // non-digit in suffix
		"log_00042.dat",   // valid, five digits
	}
	if got := NextName(names, "log_", ".dat"); got != "log_43.dat" {
		t.Fatalf("got %q, want log_43.dat", got)
	}
}

func TestNextNameOverlappingPrefixAndExt(t *testing.T) {
	// One short entry can satisfy both the prefix and the extension check on
	// overlapping ranges; it must parse as malformed, not blow up the scan.
	names := []string{"log_7.dat"}
	if got := NextName(names, "log_", "_7.dat"); got != "log_1_7.dat" {
		t.Fatalf("got %q, want log_1_7.dat", got)
	}
}
