package geolite

import (
	"net/netip"
	"testing"
)

func TestZeroEnricherReportsNoData(t *testing.T) {
	var e Enricher

	owner, locale, ok := e.OwnerFor(netip.MustParseAddr("10.0.0.1"))
	if ok || owner != "" || locale != "" {
		t.Fatalf("zero enricher returned %q/%q/%v, want empty", owner, locale, ok)
	}
}

func TestNilEnricherIsSafe(t *testing.T) {
	var e *Enricher

	if _, _, ok := e.OwnerFor(netip.MustParseAddr("2001:db8::1")); ok {
		t.Fatal("nil enricher reported data")
	}
	e.Close()
}

func TestOpenWithoutPathsYieldsEmptyEnricher(t *testing.T) {
	t.Setenv("ASN_MMDB_PATH", "")
	t.Setenv("COUNTRY_MMDB_PATH", "")

	e := Open()
	defer e.Close()

	if _, _, ok := e.OwnerFor(netip.MustParseAddr("192.0.2.1")); ok {
		t.Fatal("enricher without databases reported data")
	}
}
