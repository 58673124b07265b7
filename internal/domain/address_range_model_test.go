package domain

import (
	"bytes"
	"errors"
	"net/netip"
	"testing"

	"shrike/internal/ipcodec"
)

func TestAddressRangeBeforeSaveDerivesKeys(t *testing.T) {
	r := AddressRange{Number: 64500, RangeStart: "10.0.0.0", RangeEnd: "10.0.0.255"}

	if err := r.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave returned error: %v", err)
	}

	if r.Version != IPv4 {
		t.Fatalf("Version is %v, want IPv4", r.Version)
	}
	wantStart, _ := ipcodec.EncodeText("10.0.0.0")
	wantEnd, _ := ipcodec.EncodeText("10.0.0.255")
	if !bytes.Equal(r.RangeStartKey, wantStart) || !bytes.Equal(r.RangeEndKey, wantEnd) {
		t.Fatalf("derived keys %x/%x, want %x/%x", r.RangeStartKey, r.RangeEndKey, wantStart, wantEnd)
	}
}

func TestAddressRangeBeforeSaveRefreshesStaleKeys(t *testing.T) {
	r := AddressRange{Number: 64500, RangeStart: "10.0.0.0", RangeEnd: "10.0.0.255"}
	if err := r.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave returned error: %v", err)
	}
	oldKey := append([]byte(nil), r.RangeStartKey...)

	r.RangeStart = "10.0.1.0"
	r.RangeEnd = "10.0.1.255"
	if err := r.BeforeSave(nil); err != nil {
		t.Fatalf("second BeforeSave returned error: %v", err)
	}

	if bytes.Equal(r.RangeStartKey, oldKey) {
		t.Fatal("RangeStartKey still holds the key of the previous bounds")
	}
	want, _ := ipcodec.EncodeText("10.0.1.0")
	if !bytes.Equal(r.RangeStartKey, want) {
		t.Fatalf("RangeStartKey is %x, want %x", r.RangeStartKey, want)
	}
}

func TestAddressRangeBeforeSaveRejectsBadBounds(t *testing.T) {
	r := AddressRange{Number: 64500, RangeStart: "bad", RangeEnd: "10.0.0.255"}
	if err := r.BeforeSave(nil); !errors.Is(err, ipcodec.ErrInvalidAddressFormat) {
		t.Fatalf("BeforeSave returned %v, want ErrInvalidAddressFormat", err)
	}

	inverted := AddressRange{Number: 64500, RangeStart: "10.0.0.255", RangeEnd: "10.0.0.0"}
	if err := inverted.BeforeSave(nil); !errors.Is(err, ErrMalformedRange) {
		t.Fatalf("BeforeSave on inverted bounds returned %v, want ErrMalformedRange", err)
	}

	mixed := AddressRange{Number: 64500, RangeStart: "10.0.0.0", RangeEnd: "2001:db8::1"}
	if err := mixed.BeforeSave(nil); !errors.Is(err, ErrMalformedRange) {
		t.Fatalf("BeforeSave on mixed families returned %v, want ErrMalformedRange", err)
	}
}

func TestAddressRangeContains(t *testing.T) {
	r := AddressRange{Number: 64500, RangeStart: "10.0.0.0", RangeEnd: "10.0.0.255"}

	inside := netip.MustParseAddr("10.0.0.5")
	outside := netip.MustParseAddr("10.0.1.1")
	otherFamily := netip.MustParseAddr("::a00:5")

	if !r.Contains(inside) {
		t.Fatal("Contains returned false for an address inside the bounds")
	}
	if r.Contains(outside) {
		t.Fatal("Contains returned true for an address outside the bounds")
	}
	if r.Contains(otherFamily) {
		t.Fatal("Contains returned true across address families")
	}
}

func TestAddressRangeValidateCollectsAllViolations(t *testing.T) {
	errs := (&AddressRange{}).Validate()

	for _, field := range []string{"number", "range_start", "range_end"} {
		if !errs.HasField(field) {
			t.Fatalf("Validate dropped the %s violation: %v", field, errs)
		}
	}
}

func TestAddressRangeValidateBounds(t *testing.T) {
	t.Run("unparsable start", func(t *testing.T) {
		r := AddressRange{Number: 1, RangeStart: "bad", RangeEnd: "10.0.0.255"}
		if errs := r.Validate(); !errs.HasField("range_start") {
			t.Fatalf("expected range_start violation, got %v", errs)
		}
	})

	t.Run("inverted bounds", func(t *testing.T) {
		r := AddressRange{Number: 1, RangeStart: "10.0.0.255", RangeEnd: "10.0.0.0"}
		if errs := r.Validate(); !errs.HasField("range_end") {
			t.Fatalf("expected range_end violation, got %v", errs)
		}
	})

	t.Run("mixed families", func(t *testing.T) {
		r := AddressRange{Number: 1, RangeStart: "10.0.0.0", RangeEnd: "2001:db8::1"}
		if errs := r.Validate(); !errs.HasField("range_end") {
			t.Fatalf("expected range_end violation, got %v", errs)
		}
	})

	t.Run("version mismatch", func(t *testing.T) {
		r := AddressRange{Number: 1, Version: IPv6, RangeStart: "10.0.0.0", RangeEnd: "10.0.0.255"}
		if errs := r.Validate(); !errs.HasField("version") {
			t.Fatalf("expected version violation, got %v", errs)
		}
	})

	t.Run("valid record", func(t *testing.T) {
		r := AddressRange{Number: 1, Version: IPv4, RangeStart: "10.0.0.0", RangeEnd: "10.0.0.255"}
		if errs := r.Validate(); len(errs) != 0 {
			t.Fatalf("expected no violations, got %v", errs)
		}
	})
}

func TestParseIPVersion(t *testing.T) {
	if v, err := ParseIPVersion("4"); err != nil || v != IPv4 {
		t.Fatalf("ParseIPVersion(4) returned %v, %v", v, err)
	}
	if v, err := ParseIPVersion("6"); err != nil || v != IPv6 {
		t.Fatalf("ParseIPVersion(6) returned %v, %v", v, err)
	}
	if _, err := ParseIPVersion("5"); err == nil {
		t.Fatal("ParseIPVersion accepted an unknown version")
	}

	if IPv4.String() != "4" || IPv6.String() != "6" {
		t.Fatal("IPVersion string forms changed")
	}
}
