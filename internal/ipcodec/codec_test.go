package ipcodec

import (
	"bytes"
	"errors"
	"testing"
)

func TestParseRejectsMalformedInput(t *testing.T) {
	inputs := []string{
		"",
		"not-an-ip",
		"10.0.0",
		"10.0.0.256",
		"1.2.3.4.5",
		"fe80::1%eth0",
		"10.0.0.1/24",
	}

	for _, input := range inputs {
		if _, err := Parse(input); !errors.Is(err, ErrInvalidAddressFormat) {
			t.Fatalf("Parse(%q) returned %v, want ErrInvalidAddressFormat", input, err)
		}
	}
}

func TestEncodeWidthPerFamily(t *testing.T) {
	v4, err := Parse("192.0.2.1")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	key, err := Encode(v4)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if len(key) != KeyLenV4 {
		t.Fatalf("IPv4 key has %d bytes, want %d", len(key), KeyLenV4)
	}

	v6, err := Parse("2001:db8::1")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	key, err = Encode(v6)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if len(key) != KeyLenV6 {
		t.Fatalf("IPv6 key has %d bytes, want %d", len(key), KeyLenV6)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, text := range []string{
		"0.0.0.0",
		"10.0.0.5",
		"255.255.255.255",
		"::",
		"::1",
		"2001:db8::dead:beef",
		"ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff",
	} {
		addr, err := Parse(text)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", text, err)
		}
		key, err := Encode(addr)
		if err != nil {
			t.Fatalf("Encode(%q) returned error: %v", text, err)
		}
		back, err := Decode(key)
		if err != nil {
			t.Fatalf("Decode(%q) returned error: %v", text, err)
		}
		if back != addr {
			t.Fatalf("round trip of %q produced %s", text, back)
		}
	}
}

func TestMappedV4ParsesToSameKey(t *testing.T) {
	plain, err := EncodeText("10.0.0.1")
	if err != nil {
		t.Fatalf("EncodeText returned error: %v", err)
	}
	mapped, err := EncodeText("::ffff:10.0.0.1")
	if err != nil {
		t.Fatalf("EncodeText returned error: %v", err)
	}
	if !bytes.Equal(plain, mapped) {
		t.Fatalf("mapped key %x differs from plain key %x", mapped, plain)
	}
}

func TestEncodePreservesNumericOrder(t *testing.T) {
	ordered := [][2]string{
		{"0.0.0.0", "0.0.0.1"},
		{"9.255.255.255", "10.0.0.0"},
		{"10.0.0.5", "10.0.1.1"},
		{"127.255.255.255", "128.0.0.0"},
		{"::", "::1"},
		{"2001:db8::", "2001:db8::1"},
		{"2001:db8::ffff", "2001:db9::"},
		{"::ffff", "1::"},
	}

	for _, pair := range ordered {
		low, err := EncodeText(pair[0])
		if err != nil {
			t.Fatalf("EncodeText(%q) returned error: %v", pair[0], err)
		}
		high, err := EncodeText(pair[1])
		if err != nil {
			t.Fatalf("EncodeText(%q) returned error: %v", pair[1], err)
		}
		if bytes.Compare(low, high) >= 0 {
			t.Fatalf("key of %s should order below key of %s", pair[0], pair[1])
		}
	}
}

func TestDecodeRejectsUnknownWidths(t *testing.T) {
	for _, width := range []int{0, 1, 3, 5, 8, 15, 17, 32} {
		if _, err := Decode(make([]byte, width)); !errors.Is(err, ErrInvalidEncodingLength) {
			t.Fatalf("Decode of %d bytes returned %v, want ErrInvalidEncodingLength", width, err)
		}
	}
}
